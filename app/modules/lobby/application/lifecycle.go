package lobbyservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	lobbydomain "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/domain"
	lobbydb "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/infrastructure/repositories"
	"github.com/Five-Stack-Club/rift-bot/app/shared/observability/attr"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/results"
)

func infoFromRow(row *lobbydb.Lobby) LobbyInfo {
	return LobbyInfo{
		ID:        sharedtypes.LobbyID(row.ID),
		GuildID:   sharedtypes.GuildID(row.GuildID),
		ChannelID: sharedtypes.ChannelID(row.ChannelID),
		MessageID: sharedtypes.MessageID(row.MessageID),
		OpenedBy:  sharedtypes.DiscordID(row.OpenedBy),
		ExpiresAt: row.ExpiresAt,
	}
}

// OpenLobby creates a lobby for the channel. Free text from the open
// command may name a close time ("until 9pm"); otherwise the configured
// TTL applies.
func (s *LobbyService) OpenLobby(ctx context.Context, guildID sharedtypes.GuildID, channelID sharedtypes.ChannelID, openedBy sharedtypes.DiscordID, text string) (*LobbyInfo, error) {
	openTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*LobbyInfo, error], error) {
		return s.openLobbyLogic(ctx, db, guildID, channelID, openedBy, text)
	}

	result, err := withTelemetry(s, ctx, "OpenLobby", string(channelID), func(ctx context.Context) (results.OperationResult[*LobbyInfo, error], error) {
		return runInTx(s, ctx, openTx)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}

	info := *result.Success
	s.register(&session{
		info: *info,
		pool: lobbydomain.NewPool(s.ratings, s.ratingTimeout),
	})

	if s.queue != nil {
		if err := s.queue.ScheduleExpiry(ctx, info.ID, info.ExpiresAt); err != nil {
			// The lobby stays usable; it just will not auto-expire.
			s.logger.WarnContext(ctx, "Failed to schedule lobby expiry",
				attr.LobbyID("lobby_id", info.ID),
				attr.Error(err),
			)
		}
	}

	return info, nil
}

// openLobbyLogic contains the core logic.
func (s *LobbyService) openLobbyLogic(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID, channelID sharedtypes.ChannelID, openedBy sharedtypes.DiscordID, text string) (results.OperationResult[*LobbyInfo, error], error) {
	if s.lookupByChannel(channelID) != nil {
		return results.FailureResult[*LobbyInfo, error](ErrChannelBusy), nil
	}

	now := s.clock.Now()
	expiresAt, ok := parseCloseTime(text, now)
	if !ok {
		expiresAt = now.Add(s.ttl)
	}

	id := sharedtypes.NewLobbyID()
	row := &lobbydb.Lobby{
		ID:        uuid.UUID(id),
		GuildID:   string(guildID),
		ChannelID: string(channelID),
		State:     lobbydb.StateOpen,
		OpenedBy:  string(openedBy),
		ExpiresAt: expiresAt,
	}
	if err := s.repo.Create(ctx, db, row); err != nil {
		return results.OperationResult[*LobbyInfo, error]{}, fmt.Errorf("failed to create lobby: %w", err)
	}

	return results.SuccessResult[*LobbyInfo, error](&LobbyInfo{
		ID:        id,
		GuildID:   guildID,
		ChannelID: channelID,
		OpenedBy:  openedBy,
		ExpiresAt: expiresAt,
	}), nil
}

// LinkBoard records the Discord board message the gateway posted for the
// lobby. Reactions are resolved to lobbies through this message ID.
func (s *LobbyService) LinkBoard(ctx context.Context, lobbyID sharedtypes.LobbyID, messageID sharedtypes.MessageID) error {
	linkTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		return s.linkBoardLogic(ctx, db, lobbyID, messageID)
	}

	result, err := withTelemetry(s, ctx, "LinkBoard", lobbyID.String(), func(ctx context.Context) (results.OperationResult[bool, error], error) {
		return runInTx(s, ctx, linkTx)
	})
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return *result.Failure
	}

	s.mu.Lock()
	if sess, ok := s.byID[lobbyID]; ok {
		if sess.info.MessageID != "" {
			delete(s.byMessage, sess.info.MessageID)
		}
		sess.info.MessageID = messageID
		s.byMessage[messageID] = sess
	}
	s.mu.Unlock()

	return nil
}

// linkBoardLogic contains the core logic.
func (s *LobbyService) linkBoardLogic(ctx context.Context, db bun.IDB, lobbyID sharedtypes.LobbyID, messageID sharedtypes.MessageID) (results.OperationResult[bool, error], error) {
	err := s.repo.SetMessageID(ctx, db, uuid.UUID(lobbyID), string(messageID))
	if err != nil {
		if errors.Is(err, lobbydb.ErrNotFound) {
			return results.FailureResult[bool, error](ErrLobbyNotFound), nil
		}
		return results.OperationResult[bool, error]{}, fmt.Errorf("failed to link board message: %w", err)
	}
	return results.SuccessResult[bool, error](true), nil
}

// CloseLobby closes the channel's open lobby and empties its pool.
func (s *LobbyService) CloseLobby(ctx context.Context, channelID sharedtypes.ChannelID) (*LobbyInfo, error) {
	closeTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*LobbyInfo, error], error) {
		return s.closeLobbyLogic(ctx, db, channelID)
	}

	result, err := withTelemetry(s, ctx, "CloseLobby", string(channelID), func(ctx context.Context) (results.OperationResult[*LobbyInfo, error], error) {
		return runInTx(s, ctx, closeTx)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}

	info := *result.Success
	if sess := s.unregister(info.ID); sess != nil {
		sess.pool.Clear()
	}
	if s.queue != nil {
		if err := s.queue.CancelExpiry(ctx, info.ID); err != nil {
			s.logger.WarnContext(ctx, "Failed to cancel lobby expiry",
				attr.LobbyID("lobby_id", info.ID),
				attr.Error(err),
			)
		}
	}

	return info, nil
}

// closeLobbyLogic contains the core logic.
func (s *LobbyService) closeLobbyLogic(ctx context.Context, db bun.IDB, channelID sharedtypes.ChannelID) (results.OperationResult[*LobbyInfo, error], error) {
	sess := s.lookupByChannel(channelID)
	if sess == nil {
		return results.FailureResult[*LobbyInfo, error](ErrNoOpenLobby), nil
	}

	err := s.repo.Close(ctx, db, uuid.UUID(sess.info.ID), lobbydb.StateClosed)
	if err != nil && !errors.Is(err, lobbydb.ErrNotFound) {
		return results.OperationResult[*LobbyInfo, error]{}, fmt.Errorf("failed to close lobby: %w", err)
	}

	info := sess.info
	return results.SuccessResult[*LobbyInfo, error](&info), nil
}

// ExpireLobby closes a lobby whose TTL elapsed. A lobby that was already
// closed normally is a silent no-op, returning (nil, nil).
func (s *LobbyService) ExpireLobby(ctx context.Context, lobbyID sharedtypes.LobbyID) (*LobbyInfo, error) {
	expireTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*LobbyInfo, error], error) {
		return s.expireLobbyLogic(ctx, db, lobbyID)
	}

	result, err := withTelemetry(s, ctx, "ExpireLobby", lobbyID.String(), func(ctx context.Context) (results.OperationResult[*LobbyInfo, error], error) {
		return runInTx(s, ctx, expireTx)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}

	info := *result.Success
	if info == nil {
		return nil, nil
	}
	if sess := s.unregister(info.ID); sess != nil {
		sess.pool.Clear()
	}

	return info, nil
}

// expireLobbyLogic contains the core logic.
func (s *LobbyService) expireLobbyLogic(ctx context.Context, db bun.IDB, lobbyID sharedtypes.LobbyID) (results.OperationResult[*LobbyInfo, error], error) {
	sess := s.lookupByID(lobbyID)
	if sess == nil {
		// Expiry fired after a normal close.
		return results.SuccessResult[*LobbyInfo, error](nil), nil
	}

	err := s.repo.Close(ctx, db, uuid.UUID(lobbyID), lobbydb.StateExpired)
	if err != nil && !errors.Is(err, lobbydb.ErrNotFound) {
		return results.OperationResult[*LobbyInfo, error]{}, fmt.Errorf("failed to expire lobby: %w", err)
	}

	info := sess.info
	return results.SuccessResult[*LobbyInfo, error](&info), nil
}

// RestoreOpenLobbies reloads open lobby rows into the in-memory registry
// after a restart. Pools start empty; participants re-react to rejoin.
// Pending expiry jobs live in the job table and survive the restart, so
// nothing is rescheduled here.
func (s *LobbyService) RestoreOpenLobbies(ctx context.Context) (int, error) {
	result, err := withTelemetry(s, ctx, "RestoreOpenLobbies", "startup", func(ctx context.Context) (results.OperationResult[int, error], error) {
		return s.restoreOpenLobbiesLogic(ctx)
	})
	if err != nil {
		return 0, err
	}
	if result.IsFailure() {
		return 0, *result.Failure
	}
	return *result.Success, nil
}

// restoreOpenLobbiesLogic contains the core logic.
func (s *LobbyService) restoreOpenLobbiesLogic(ctx context.Context) (results.OperationResult[int, error], error) {
	rows, err := s.repo.ListOpen(ctx, nil)
	if err != nil {
		return results.OperationResult[int, error]{}, fmt.Errorf("failed to list open lobbies: %w", err)
	}

	for i := range rows {
		info := infoFromRow(&rows[i])
		s.register(&session{
			info: info,
			pool: lobbydomain.NewPool(s.ratings, s.ratingTimeout),
		})
		s.logger.InfoContext(ctx, "Restored open lobby",
			attr.LobbyID("lobby_id", info.ID),
			attr.String("channel_id", string(info.ChannelID)),
		)
	}

	return results.SuccessResult[int, error](len(rows)), nil
}
