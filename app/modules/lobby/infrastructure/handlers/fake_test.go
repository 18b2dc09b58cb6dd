package lobbyhandlers

import (
	"context"

	lobbyservice "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/application"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// ------------------------
// Fake Lobby Service
// ------------------------

type FakeLobbyService struct {
	trace []string

	OpenLobbyFunc          func(ctx context.Context, guildID sharedtypes.GuildID, channelID sharedtypes.ChannelID, openedBy sharedtypes.DiscordID, text string) (*lobbyservice.LobbyInfo, error)
	LinkBoardFunc          func(ctx context.Context, lobbyID sharedtypes.LobbyID, messageID sharedtypes.MessageID) error
	HandleReactionFunc     func(ctx context.Context, messageID sharedtypes.MessageID, userID sharedtypes.DiscordID, emoji string, added bool) (*lobbyservice.ReactionOutcome, error)
	StatusFunc             func(ctx context.Context, channelID sharedtypes.ChannelID) (*lobbyservice.LobbyStatus, error)
	CloseLobbyFunc         func(ctx context.Context, channelID sharedtypes.ChannelID) (*lobbyservice.LobbyInfo, error)
	ExpireLobbyFunc        func(ctx context.Context, lobbyID sharedtypes.LobbyID) (*lobbyservice.LobbyInfo, error)
	RestoreOpenLobbiesFunc func(ctx context.Context) (int, error)
}

func NewFakeLobbyService() *FakeLobbyService {
	return &FakeLobbyService{
		trace: []string{},
	}
}

func (f *FakeLobbyService) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Service Interface Implementation ---

func (f *FakeLobbyService) OpenLobby(ctx context.Context, guildID sharedtypes.GuildID, channelID sharedtypes.ChannelID, openedBy sharedtypes.DiscordID, text string) (*lobbyservice.LobbyInfo, error) {
	f.record("OpenLobby")
	if f.OpenLobbyFunc != nil {
		return f.OpenLobbyFunc(ctx, guildID, channelID, openedBy, text)
	}
	return nil, nil
}

func (f *FakeLobbyService) LinkBoard(ctx context.Context, lobbyID sharedtypes.LobbyID, messageID sharedtypes.MessageID) error {
	f.record("LinkBoard")
	if f.LinkBoardFunc != nil {
		return f.LinkBoardFunc(ctx, lobbyID, messageID)
	}
	return nil
}

func (f *FakeLobbyService) HandleReaction(ctx context.Context, messageID sharedtypes.MessageID, userID sharedtypes.DiscordID, emoji string, added bool) (*lobbyservice.ReactionOutcome, error) {
	f.record("HandleReaction")
	if f.HandleReactionFunc != nil {
		return f.HandleReactionFunc(ctx, messageID, userID, emoji, added)
	}
	return nil, nil
}

func (f *FakeLobbyService) Status(ctx context.Context, channelID sharedtypes.ChannelID) (*lobbyservice.LobbyStatus, error) {
	f.record("Status")
	if f.StatusFunc != nil {
		return f.StatusFunc(ctx, channelID)
	}
	return nil, nil
}

func (f *FakeLobbyService) CloseLobby(ctx context.Context, channelID sharedtypes.ChannelID) (*lobbyservice.LobbyInfo, error) {
	f.record("CloseLobby")
	if f.CloseLobbyFunc != nil {
		return f.CloseLobbyFunc(ctx, channelID)
	}
	return nil, nil
}

func (f *FakeLobbyService) ExpireLobby(ctx context.Context, lobbyID sharedtypes.LobbyID) (*lobbyservice.LobbyInfo, error) {
	f.record("ExpireLobby")
	if f.ExpireLobbyFunc != nil {
		return f.ExpireLobbyFunc(ctx, lobbyID)
	}
	return nil, nil
}

func (f *FakeLobbyService) RestoreOpenLobbies(ctx context.Context) (int, error) {
	f.record("RestoreOpenLobbies")
	if f.RestoreOpenLobbiesFunc != nil {
		return f.RestoreOpenLobbiesFunc(ctx)
	}
	return 0, nil
}

// --- Accessors for assertions ---

func (f *FakeLobbyService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ lobbyservice.Service = (*FakeLobbyService)(nil)
