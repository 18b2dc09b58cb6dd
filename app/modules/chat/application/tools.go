package chatservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	accountsservice "github.com/Five-Stack-Club/rift-bot/app/modules/accounts/application"
	statsservice "github.com/Five-Stack-Club/rift-bot/app/modules/stats/application"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// Caller identifies the user a tool call acts for. Tools never take the
// caller from model-produced arguments.
type Caller struct {
	UserID   sharedtypes.DiscordID
	Username string
}

// Tool is one callable function advertised to the model. Parameters is a
// JSON schema object; Run returns the tool result content.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
	Run         func(ctx context.Context, caller Caller, args json.RawMessage) (string, error)
}

// toolSentinels are the domain conditions a tool relays to the model as
// plain text. Anything else fails the response.
var toolSentinels = []error{
	statsservice.ErrNoLink,
	statsservice.ErrAccountNotFound,
	statsservice.ErrNoRankedEntries,
	statsservice.ErrNoActiveGame,
	accountsservice.ErrNotLinked,
	accountsservice.ErrAlreadyLinked,
	accountsservice.ErrAccountNotFound,
}

func toolFacing(err error) (string, bool) {
	for _, sentinel := range toolSentinels {
		if errors.Is(err, sentinel) {
			return sentinel.Error(), true
		}
	}
	return "", false
}

func toolJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode tool result: %w", err)
	}
	return string(b), nil
}

// parseArgs unmarshals model-produced arguments, tolerating the empty
// argument string some models send for no-parameter tools.
func parseArgs(name string, args json.RawMessage, into any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, into); err != nil {
		return fmt.Errorf("failed to parse %s arguments: %w", name, err)
	}
	return nil
}

// newToolset builds the tools backed by the stats and accounts services.
func newToolset(stats StatsReader, accounts AccountsReader) []Tool {
	return []Tool{
		profileTool(stats),
		recentMatchesTool(stats),
		activeGameTool(stats),
		listAccountsTool(accounts),
		linkAccountTool(accounts),
	}
}

func profileTool(stats StatsReader) Tool {
	return Tool{
		Name:        "get_profile",
		Description: "Get a League of Legends profile: summoner level, ranked standings, internal rating, and top champion masteries. Without arguments it targets the asking user's primary linked account.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"game_name": {"type": "string", "description": "Riot ID game name, e.g. Faker"},
				"tag_line": {"type": "string", "description": "Riot ID tag line, e.g. KR1"}
			}
		}`),
		Run: func(ctx context.Context, caller Caller, args json.RawMessage) (string, error) {
			var in struct {
				GameName string `json:"game_name"`
				TagLine  string `json:"tag_line"`
			}
			if err := parseArgs("get_profile", args, &in); err != nil {
				return "", err
			}

			profile, err := stats.Profile(ctx, caller.UserID, in.GameName, in.TagLine)
			if err != nil {
				if text, ok := toolFacing(err); ok {
					return text, nil
				}
				return "", err
			}

			type rankedOut struct {
				Queue        string `json:"queue"`
				Tier         string `json:"tier"`
				Division     string `json:"division"`
				LeaguePoints int    `json:"league_points"`
				Wins         int    `json:"wins"`
				Losses       int    `json:"losses"`
			}
			type masteryOut struct {
				Champion string `json:"champion"`
				Level    int    `json:"level"`
				Points   int    `json:"points"`
			}
			out := struct {
				GameName  string       `json:"game_name"`
				TagLine   string       `json:"tag_line"`
				Level     int          `json:"summoner_level"`
				Rating    int          `json:"rating"`
				Ranked    []rankedOut  `json:"ranked"`
				Masteries []masteryOut `json:"masteries"`
			}{
				GameName: profile.GameName,
				TagLine:  profile.TagLine,
				Level:    profile.SummonerLevel,
				Rating:   profile.Rating,
			}
			for _, e := range profile.Entries {
				out.Ranked = append(out.Ranked, rankedOut{
					Queue:        e.Queue,
					Tier:         e.Tier,
					Division:     e.Division,
					LeaguePoints: e.LeaguePoints,
					Wins:         e.Wins,
					Losses:       e.Losses,
				})
			}
			for _, m := range profile.Masteries {
				out.Masteries = append(out.Masteries, masteryOut{Champion: m.Champion, Level: m.Level, Points: m.Points})
			}
			return toolJSON(out)
		},
	}
}

func recentMatchesTool(stats StatsReader) Tool {
	return Tool{
		Name:        "get_recent_matches",
		Description: "Get the asking user's recent League of Legends matches from their primary linked account.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"count": {"type": "integer", "description": "How many matches, up to 20. Defaults to 10."}
			}
		}`),
		Run: func(ctx context.Context, caller Caller, args json.RawMessage) (string, error) {
			var in struct {
				Count int `json:"count"`
			}
			if err := parseArgs("get_recent_matches", args, &in); err != nil {
				return "", err
			}

			history, err := stats.RecentMatches(ctx, caller.UserID, in.Count)
			if err != nil {
				if text, ok := toolFacing(err); ok {
					return text, nil
				}
				return "", err
			}

			type matchOut struct {
				Champion string `json:"champion"`
				Win      bool   `json:"win"`
				Kills    int    `json:"kills"`
				Deaths   int    `json:"deaths"`
				Assists  int    `json:"assists"`
				CS       int    `json:"cs"`
			}
			out := struct {
				GameName string     `json:"game_name"`
				Matches  []matchOut `json:"matches"`
			}{GameName: history.GameName}
			for _, m := range history.Matches {
				out.Matches = append(out.Matches, matchOut{
					Champion: m.Champion,
					Win:      m.Win,
					Kills:    m.Kills,
					Deaths:   m.Deaths,
					Assists:  m.Assists,
					CS:       m.CS,
				})
			}
			return toolJSON(out)
		},
	}
}

func activeGameTool(stats StatsReader) Tool {
	return Tool{
		Name:        "get_active_game",
		Description: "Check whether the asking user is in a League of Legends game right now, and who is in it.",
		Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
		Run: func(ctx context.Context, caller Caller, args json.RawMessage) (string, error) {
			game, err := stats.ActiveGame(ctx, caller.UserID)
			if err != nil {
				if text, ok := toolFacing(err); ok {
					return text, nil
				}
				return "", err
			}

			type playerOut struct {
				RiotID   string `json:"riot_id"`
				Champion string `json:"champion"`
				Team     int64  `json:"team"`
			}
			out := struct {
				GameMode  string      `json:"game_mode"`
				LengthSec int64       `json:"length_seconds"`
				Players   []playerOut `json:"players"`
			}{GameMode: game.GameMode, LengthSec: game.LengthSec}
			for _, p := range game.Players {
				out.Players = append(out.Players, playerOut{RiotID: p.RiotID, Champion: p.Champion, Team: p.TeamID})
			}
			return toolJSON(out)
		},
	}
}

func listAccountsTool(accounts AccountsReader) Tool {
	return Tool{
		Name:        "list_accounts",
		Description: "List the Riot accounts linked to the asking user.",
		Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
		Run: func(ctx context.Context, caller Caller, args json.RawMessage) (string, error) {
			links, err := accounts.ListLinks(ctx, caller.UserID)
			if err != nil {
				if text, ok := toolFacing(err); ok {
					return text, nil
				}
				return "", err
			}

			type linkOut struct {
				GameName string `json:"game_name"`
				TagLine  string `json:"tag_line"`
				Region   string `json:"region"`
				Primary  bool   `json:"primary"`
			}
			out := make([]linkOut, 0, len(links))
			for _, l := range links {
				out = append(out, linkOut{GameName: l.GameName, TagLine: l.TagLine, Region: l.Region, Primary: l.Primary})
			}
			return toolJSON(out)
		},
	}
}

func linkAccountTool(accounts AccountsReader) Tool {
	return Tool{
		Name:        "link_account",
		Description: "Link a Riot account to the asking user after verifying the Riot ID exists.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"game_name": {"type": "string", "description": "Riot ID game name"},
				"tag_line": {"type": "string", "description": "Riot ID tag line"},
				"region": {"type": "string", "description": "Platform region such as na1 or euw1. Optional."}
			},
			"required": ["game_name", "tag_line"]
		}`),
		Run: func(ctx context.Context, caller Caller, args json.RawMessage) (string, error) {
			var in struct {
				GameName string `json:"game_name"`
				TagLine  string `json:"tag_line"`
				Region   string `json:"region"`
			}
			if err := parseArgs("link_account", args, &in); err != nil {
				return "", err
			}

			link, err := accounts.LinkAccount(ctx, caller.UserID, caller.Username, in.GameName, in.TagLine, in.Region)
			if err != nil {
				if text, ok := toolFacing(err); ok {
					return text, nil
				}
				return "", err
			}

			out := struct {
				GameName string `json:"game_name"`
				TagLine  string `json:"tag_line"`
				Region   string `json:"region"`
				Primary  bool   `json:"primary"`
			}{GameName: link.GameName, TagLine: link.TagLine, Region: link.Region, Primary: link.Primary}
			return toolJSON(out)
		},
	}
}
