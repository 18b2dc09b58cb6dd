package chatservice

import (
	"context"
	"errors"
	"fmt"

	chatdb "github.com/Five-Stack-Club/rift-bot/app/modules/chat/infrastructure/repositories"
	"github.com/Five-Stack-Club/rift-bot/app/shared/observability/attr"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/results"
)

// ArchiveMessage stores a gateway message in the channel archive.
func (s *ChatService) ArchiveMessage(ctx context.Context, msg *IncomingMessage) error {
	result, err := withTelemetry(s, ctx, "ArchiveMessage", string(msg.MessageID), func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		record := &chatdb.Message{
			GuildID:    msg.GuildID,
			ChannelID:  msg.ChannelID,
			MessageID:  msg.MessageID,
			AuthorID:   msg.AuthorID,
			AuthorName: msg.AuthorName,
			Content:    msg.Content,
			FromBot:    msg.FromBot,
			CreatedAt:  msg.Timestamp,
		}
		if err := s.repo.InsertMessage(ctx, s.db, record); err != nil {
			return results.OperationResult[struct{}, error]{}, err
		}
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	})
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return *result.Failure
	}
	return nil
}

// Respond generates a model reply to msg. The first completion advertises
// the toolset; when the model asks for a tool the first requested call runs
// locally and a follow-up completion produces the reply. The follow-up
// carries no tool definitions, which caps the exchange at one round.
func (s *ChatService) Respond(ctx context.Context, msg *IncomingMessage) (string, error) {
	result, err := withTelemetry(s, ctx, "Respond", string(msg.ChannelID), func(ctx context.Context) (results.OperationResult[string, error], error) {
		if s.client == nil {
			return results.OperationResult[string, error]{}, errors.New("no completion client configured")
		}

		msgs, err := s.promptMessages(ctx, msg.ChannelID)
		if err != nil {
			return results.OperationResult[string, error]{}, err
		}

		first, err := s.complete(ctx, CompletionRequest{Messages: msgs, Tools: s.toolDefinitions()})
		if err != nil {
			return results.OperationResult[string, error]{}, err
		}
		if len(first.ToolCalls) == 0 {
			return results.SuccessResult[string, error](first.Content), nil
		}

		// The model may request several calls; only the first is honored.
		call := first.ToolCalls[0]
		tool := s.findTool(call.Name)
		if tool == nil {
			return results.SuccessResult[string, error](fmt.Sprintf("Tool '%s' not found.", call.Name)), nil
		}

		caller := Caller{UserID: msg.AuthorID, Username: msg.AuthorName}
		output, err := tool.Run(ctx, caller, call.Arguments)
		if s.metrics != nil {
			s.metrics.RecordToolInvocation(ctx, call.Name, err == nil)
		}
		if err != nil {
			return results.OperationResult[string, error]{}, err
		}

		s.logger.InfoContext(ctx, "Tool executed",
			attr.ExtractCorrelationID(ctx),
			attr.String("tool", call.Name),
		)

		msgs = append(msgs,
			ChatMessage{Role: RoleAssistant, Content: first.Content, ToolCalls: []ToolCall{call}},
			ChatMessage{Role: RoleTool, Content: output, ToolCallID: call.ID, Name: call.Name},
		)

		followup, err := s.complete(ctx, CompletionRequest{Messages: msgs})
		if err != nil {
			return results.OperationResult[string, error]{}, err
		}
		return results.SuccessResult[string, error](followup.Content), nil
	})
	if err != nil {
		return "", err
	}
	if result.IsFailure() {
		return "", *result.Failure
	}
	return *result.Success, nil
}

// promptMessages builds the conversation for a channel: the system prompt,
// then the archived window oldest first with authors named inline.
func (s *ChatService) promptMessages(ctx context.Context, channelID sharedtypes.ChannelID) ([]ChatMessage, error) {
	history, err := s.repo.ListRecent(ctx, s.db, channelID, s.historyWindow)
	if err != nil {
		return nil, err
	}

	msgs := make([]ChatMessage, 0, len(history)+1)
	if s.systemPrompt != "" {
		msgs = append(msgs, ChatMessage{Role: RoleSystem, Content: s.systemPrompt})
	}
	// The store answers newest first; the prompt wants oldest first.
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		role := RoleUser
		if m.FromBot {
			role = RoleAssistant
		}
		msgs = append(msgs, ChatMessage{
			Role:    role,
			Content: fmt.Sprintf("%s says: %s", m.AuthorName, m.Content),
		})
	}
	return msgs, nil
}

func (s *ChatService) toolDefinitions() []ToolDefinition {
	defs := make([]ToolDefinition, len(s.tools))
	for i, t := range s.tools {
		defs[i] = ToolDefinition{Name: t.Name, Description: t.Description, Parameters: t.Parameters}
	}
	return defs
}

func (s *ChatService) findTool(name string) *Tool {
	for i := range s.tools {
		if s.tools[i].Name == name {
			return &s.tools[i]
		}
	}
	return nil
}
