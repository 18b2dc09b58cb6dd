package chatservice

import (
	"context"
	"encoding/json"

	accountsservice "github.com/Five-Stack-Club/rift-bot/app/modules/accounts/application"
	statsservice "github.com/Five-Stack-Club/rift-bot/app/modules/stats/application"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// Chat completion roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is one function invocation the model asked for. Arguments is the
// raw JSON object the model produced.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ChatMessage is one turn in a completion conversation. ToolCallID and Name
// are set only on RoleTool messages answering a ToolCall.
type ChatMessage struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	Name       string
}

// ToolDefinition advertises one callable function to the model. Parameters
// is a JSON schema object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// CompletionRequest is one chat completion call. Tools may be empty, which
// forces a plain text answer.
type CompletionRequest struct {
	Messages []ChatMessage
	Tools    []ToolDefinition
}

// Completion is the model's answer. ToolCalls is non-empty when the model
// wants a tool round instead of answering directly.
type Completion struct {
	Content   string
	ToolCalls []ToolCall
}

// CompletionClient calls a chat completion API.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// StatsReader is the slice of the stats service the chat tools read. The
// stats service satisfies it directly.
type StatsReader interface {
	Profile(ctx context.Context, userID sharedtypes.DiscordID, gameName, tagLine string) (*statsservice.ProfileView, error)
	RecentMatches(ctx context.Context, userID sharedtypes.DiscordID, count int) (*statsservice.MatchHistory, error)
	ActiveGame(ctx context.Context, userID sharedtypes.DiscordID) (*statsservice.ActiveGameView, error)
}

// AccountsReader is the slice of the accounts service the chat tools read.
// The accounts service satisfies it directly.
type AccountsReader interface {
	LinkAccount(ctx context.Context, userID sharedtypes.DiscordID, username, gameName, tagLine, region string) (*accountsservice.LinkedAccount, error)
	ListLinks(ctx context.Context, userID sharedtypes.DiscordID) ([]accountsservice.LinkedAccount, error)
}
