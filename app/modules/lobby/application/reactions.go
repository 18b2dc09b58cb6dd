package lobbyservice

import (
	"context"
	"fmt"

	lobbydomain "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/domain"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/results"
)

// sessionInfo reads a session's info under the registry lock. LinkBoard
// mutates the message ID after the session is registered.
func (s *LobbyService) sessionInfo(sess *session) LobbyInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sess.info
}

// HandleReaction applies one board reaction to its lobby's pool. The
// gateway forwards every reaction in the guild, so non-role emoji and
// messages that are not a live board return (nil, nil) without logging.
func (s *LobbyService) HandleReaction(ctx context.Context, messageID sharedtypes.MessageID, userID sharedtypes.DiscordID, emoji string, added bool) (*ReactionOutcome, error) {
	role, ok := lobbydomain.ParseRole(emoji)
	if !ok {
		return nil, nil
	}
	if s.lookupByMessage(messageID) == nil {
		return nil, nil
	}

	result, err := withTelemetry(s, ctx, "HandleReaction", string(messageID), func(ctx context.Context) (results.OperationResult[*ReactionOutcome, error], error) {
		return s.handleReactionLogic(ctx, messageID, userID, role, added)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// handleReactionLogic contains the core logic.
func (s *LobbyService) handleReactionLogic(ctx context.Context, messageID sharedtypes.MessageID, userID sharedtypes.DiscordID, role lobbydomain.Role, added bool) (results.OperationResult[*ReactionOutcome, error], error) {
	sess := s.lookupByMessage(messageID)
	if sess == nil {
		// The lobby closed between the fast check and now.
		return results.SuccessResult[*ReactionOutcome, error](nil), nil
	}

	sess.pool.RegisterIntent(ctx, userID, role, added)
	if s.metrics != nil {
		s.metrics.RecordIntentEvent(ctx, role.String(), added)
	}

	outcome := &ReactionOutcome{
		Lobby: s.sessionInfo(sess),
		Pool:  sess.pool.Status(),
	}

	if snapshot, ready := sess.pool.Snapshot(); ready {
		assignment, err := lobbydomain.Solve(snapshot)
		if err != nil {
			return results.OperationResult[*ReactionOutcome, error]{}, fmt.Errorf("failed to balance teams: %w", err)
		}
		outcome.Assignment = &assignment
		if s.metrics != nil {
			s.metrics.RecordTeamsFormed(ctx, assignment.RatingGap, assignment.PreferenceViolations)
		}
	}

	return results.SuccessResult[*ReactionOutcome, error](outcome), nil
}

// Status reports the channel's open lobby and its queue.
func (s *LobbyService) Status(ctx context.Context, channelID sharedtypes.ChannelID) (*LobbyStatus, error) {
	result, err := withTelemetry(s, ctx, "Status", string(channelID), func(ctx context.Context) (results.OperationResult[*LobbyStatus, error], error) {
		return s.statusLogic(ctx, channelID)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// statusLogic contains the core logic.
func (s *LobbyService) statusLogic(ctx context.Context, channelID sharedtypes.ChannelID) (results.OperationResult[*LobbyStatus, error], error) {
	sess := s.lookupByChannel(channelID)
	if sess == nil {
		return results.FailureResult[*LobbyStatus, error](ErrNoOpenLobby), nil
	}

	return results.SuccessResult[*LobbyStatus, error](&LobbyStatus{
		Lobby: s.sessionInfo(sess),
		Pool:  sess.pool.Status(),
	}), nil
}
