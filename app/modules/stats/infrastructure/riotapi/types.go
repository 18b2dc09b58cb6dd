package riotapi

// Ranked queue identifiers as the league endpoint reports them.
const (
	QueueSolo = "RANKED_SOLO_5x5"
	QueueFlex = "RANKED_FLEX_SR"
)

// Account is a Riot account resolved through the account-v1 endpoints.
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// Summoner is the platform-scoped summoner record behind a PUUID.
type Summoner struct {
	ID            string `json:"id"`
	AccountID     string `json:"accountId"`
	PUUID         string `json:"puuid"`
	ProfileIconID int    `json:"profileIconId"`
	SummonerLevel int    `json:"summonerLevel"`
	RevisionDate  int64  `json:"revisionDate"`
}

// LeagueEntry is one ranked queue standing for a summoner.
type LeagueEntry struct {
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// Match is a finished game from the match-v5 endpoints.
type Match struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

// MatchMetadata carries the match ID and participant PUUIDs.
type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"`
}

// MatchInfo is the game-level detail of a match.
type MatchInfo struct {
	GameCreation int64         `json:"gameCreation"`
	GameDuration int64         `json:"gameDuration"`
	GameMode     string        `json:"gameMode"`
	GameVersion  string        `json:"gameVersion"`
	QueueID      int           `json:"queueId"`
	Participants []Participant `json:"participants"`
	Teams        []Team        `json:"teams"`
}

// Participant is one player's line in a match.
type Participant struct {
	PUUID                       string `json:"puuid"`
	RiotIDGameName              string `json:"riotIdGameName"`
	SummonerName                string `json:"summonerName"`
	ChampionID                  int    `json:"championId"`
	ChampionName                string `json:"championName"`
	TeamID                      int    `json:"teamId"`
	Win                         bool   `json:"win"`
	Kills                       int    `json:"kills"`
	Deaths                      int    `json:"deaths"`
	Assists                     int    `json:"assists"`
	ChampLevel                  int    `json:"champLevel"`
	TotalMinionsKilled          int    `json:"totalMinionsKilled"`
	NeutralMinionsKilled        int    `json:"neutralMinionsKilled"`
	TotalDamageDealtToChampions int    `json:"totalDamageDealtToChampions"`
	VisionScore                 int    `json:"visionScore"`
	GoldEarned                  int    `json:"goldEarned"`
}

// Team is one side's outcome in a match.
type Team struct {
	TeamID int  `json:"teamId"`
	Win    bool `json:"win"`
}

// Name returns the participant's display name, falling back through the
// fields the API has renamed across versions.
func (p Participant) Name() string {
	if p.RiotIDGameName != "" {
		return p.RiotIDGameName
	}
	if p.SummonerName != "" {
		return p.SummonerName
	}
	return p.PUUID
}

// CS is total creep score including jungle camps.
func (p Participant) CS() int {
	return p.TotalMinionsKilled + p.NeutralMinionsKilled
}

// ActiveGame is a live game from the spectator endpoint.
type ActiveGame struct {
	GameID            int64                   `json:"gameId"`
	GameMode          string                  `json:"gameMode"`
	GameLength        int64                   `json:"gameLength"`
	GameQueueConfigID int64                   `json:"gameQueueConfigId"`
	Participants      []ActiveGameParticipant `json:"participants"`
}

// ActiveGameParticipant is one player in a live game.
type ActiveGameParticipant struct {
	PUUID      string `json:"puuid"`
	SummonerID string `json:"summonerId"`
	RiotID     string `json:"riotId"`
	ChampionID int64  `json:"championId"`
	TeamID     int64  `json:"teamId"`
}

// ChampionMastery is one champion's mastery standing for a player.
type ChampionMastery struct {
	PUUID          string `json:"puuid"`
	ChampionID     int64  `json:"championId"`
	ChampionLevel  int    `json:"championLevel"`
	ChampionPoints int    `json:"championPoints"`
}

// championCatalog mirrors the Data Dragon champion.json layout.
type championCatalog struct {
	Data map[string]struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	} `json:"data"`
}
