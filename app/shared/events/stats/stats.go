// Package statsevents defines the stats module's NATS subjects and payloads.
package statsevents

import (
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// StreamName is the JetStream stream carrying stats events.
const StreamName = "stats"

const (
	ProfileRequestedV1   = "stats.profile.requested"
	ProfileResultV1      = "stats.profile.result"
	MatchesRequestedV1   = "stats.matches.requested"
	MatchesResultV1      = "stats.matches.result"
	ChartRequestedV1     = "stats.chart.requested"
	ChartReadyV1         = "stats.chart.ready"
	ExportRequestedV1    = "stats.export.requested"
	ExportReadyV1        = "stats.export.ready"
	MatchSyncRequestedV1 = "stats.match.sync.requested"
)

// ProfileRequestedPayloadV1 asks for a summoner profile. When GameName is
// empty the target is resolved through the requesting user's primary link.
type ProfileRequestedPayloadV1 struct {
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	UserID    sharedtypes.DiscordID `json:"user_id"`
	GameName  string                `json:"game_name,omitempty"`
	TagLine   string                `json:"tag_line,omitempty"`
}

// RankedEntryV1 is one ranked queue standing.
type RankedEntryV1 struct {
	QueueType    string `json:"queue_type"`
	Tier         string `json:"tier"`
	Division     string `json:"division"`
	LeaguePoints int    `json:"league_points"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// MasteryV1 is one champion mastery line.
type MasteryV1 struct {
	Champion string `json:"champion"`
	Level    int    `json:"level"`
	Points   int    `json:"points"`
}

// ProfileResultPayloadV1 answers a profile request. Error is set and the
// rest zeroed when the lookup failed.
type ProfileResultPayloadV1 struct {
	ChannelID     sharedtypes.ChannelID `json:"channel_id"`
	UserID        sharedtypes.DiscordID `json:"user_id"`
	GameName      string                `json:"game_name"`
	TagLine       string                `json:"tag_line"`
	SummonerLevel int                   `json:"summoner_level"`
	Rating        int                   `json:"rating"`
	Entries       []RankedEntryV1       `json:"entries"`
	Masteries     []MasteryV1           `json:"masteries"`
	Error         string                `json:"error,omitempty"`
}

// MatchesRequestedPayloadV1 asks for recent match summaries.
type MatchesRequestedPayloadV1 struct {
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	UserID    sharedtypes.DiscordID `json:"user_id"`
	Count     int                   `json:"count"`
}

// MatchSummaryV1 is one match line from the player's point of view.
type MatchSummaryV1 struct {
	MatchID      string `json:"match_id"`
	Champion     string `json:"champion"`
	Win          bool   `json:"win"`
	Kills        int    `json:"kills"`
	Deaths       int    `json:"deaths"`
	Assists      int    `json:"assists"`
	CS           int    `json:"cs"`
	DurationSec  int    `json:"duration_sec"`
	QueueID      int    `json:"queue_id"`
	GameCreation int64  `json:"game_creation"`
}

// MatchesResultPayloadV1 answers a matches request.
type MatchesResultPayloadV1 struct {
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	UserID    sharedtypes.DiscordID `json:"user_id"`
	GameName  string                `json:"game_name"`
	Matches   []MatchSummaryV1      `json:"matches"`
	Error     string                `json:"error,omitempty"`
}

// ChartRequestedPayloadV1 asks for a performance chart over recent matches.
type ChartRequestedPayloadV1 struct {
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	UserID    sharedtypes.DiscordID `json:"user_id"`
	Count     int                   `json:"count"`
}

// ChartReadyPayloadV1 carries the rendered PNG for the gateway to attach.
type ChartReadyPayloadV1 struct {
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	UserID    sharedtypes.DiscordID `json:"user_id"`
	Filename  string                `json:"filename"`
	PNG       []byte                `json:"png,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// ExportRequestedPayloadV1 asks for a match history spreadsheet.
type ExportRequestedPayloadV1 struct {
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	UserID    sharedtypes.DiscordID `json:"user_id"`
	Count     int                   `json:"count"`
}

// ExportReadyPayloadV1 carries the rendered XLSX for the gateway to attach.
type ExportReadyPayloadV1 struct {
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	UserID    sharedtypes.DiscordID `json:"user_id"`
	Filename  string                `json:"filename"`
	File      []byte                `json:"file,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// MatchSyncRequestedPayloadV1 asks the stats module to pull a player's
// recent matches into the local store.
type MatchSyncRequestedPayloadV1 struct {
	PUUID  sharedtypes.PUUID `json:"puuid"`
	Region string            `json:"region"`
	Count  int               `json:"count"`
}
