package statsservice

import (
	"context"
	"time"

	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// RiotIdentity is a verified Riot account with canonical casing.
type RiotIdentity struct {
	PUUID    sharedtypes.PUUID
	GameName string
	TagLine  string
}

// RankedStanding is one ranked queue entry in a profile.
type RankedStanding struct {
	Queue        string
	Tier         string
	Division     string
	LeaguePoints int
	Wins         int
	Losses       int
}

// MasteryStanding is one champion mastery line in a profile.
type MasteryStanding struct {
	Champion string
	Level    int
	Points   int
}

// ProfileView is the out-of-game profile of a player. Rating is zero when
// the account has no ranked entries.
type ProfileView struct {
	GameName      string
	TagLine       string
	SummonerLevel int
	Rating        int
	Entries       []RankedStanding
	Masteries     []MasteryStanding
}

// MatchSummary is one match from the target player's point of view.
// GameCreation is Unix milliseconds as the match API reports it.
type MatchSummary struct {
	MatchID      string
	Champion     string
	Win          bool
	Kills        int
	Deaths       int
	Assists      int
	CS           int
	DurationSec  int
	QueueID      int
	GameCreation int64
}

// MatchHistory is a player's recent matches, newest first.
type MatchHistory struct {
	PUUID    sharedtypes.PUUID
	GameName string
	Matches  []MatchSummary
}

// ActiveGamePlayer is one player in a live game.
type ActiveGamePlayer struct {
	RiotID   string
	Champion string
	TeamID   int64
}

// ActiveGameView is a live game snapshot.
type ActiveGameView struct {
	GameMode  string
	QueueID   int64
	LengthSec int64
	Players   []ActiveGamePlayer
}

// Service handles stats operations against the Riot API and the local
// match cache.
type Service interface {
	// ResolveRiotID verifies a GameName#TagLine pair and returns the
	// canonical identity. Unknown pairs fail with ErrAccountNotFound.
	ResolveRiotID(ctx context.Context, gameName, tagLine string) (*RiotIdentity, error)

	// RatingByPUUID converts the account's ranked standing to the internal
	// rating scale. Unranked accounts fail with ErrNoRankedEntries.
	RatingByPUUID(ctx context.Context, puuid sharedtypes.PUUID) (int, error)

	// Profile assembles summoner, ranked, and mastery data. When gameName is
	// empty the target is the user's primary linked account.
	Profile(ctx context.Context, userID sharedtypes.DiscordID, gameName, tagLine string) (*ProfileView, error)

	// RecentMatches returns the user's newest matches, reading the local
	// cache before fetching match detail upstream.
	RecentMatches(ctx context.Context, userID sharedtypes.DiscordID, count int) (*MatchHistory, error)

	// SyncMatches pulls a player's recent matches into the cache and
	// returns how many were newly stored.
	SyncMatches(ctx context.Context, puuid sharedtypes.PUUID, count int) (int, error)

	// PerformanceChart renders a PNG of recent match performance.
	PerformanceChart(ctx context.Context, userID sharedtypes.DiscordID, count int) ([]byte, string, error)

	// ExportMatches renders the user's match history as a spreadsheet.
	ExportMatches(ctx context.Context, userID sharedtypes.DiscordID, count int) ([]byte, string, error)

	// ActiveGame returns the user's live game, failing with ErrNoActiveGame
	// when the player is not in one.
	ActiveGame(ctx context.Context, userID sharedtypes.DiscordID) (*ActiveGameView, error)

	// PruneRequestLogs removes API request log rows older than the given age.
	PruneRequestLogs(ctx context.Context, olderThan time.Duration) (int64, error)
}
