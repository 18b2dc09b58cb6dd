package lobbyservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	lobbydb "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/infrastructure/repositories"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// ------------------------
// Fake Lobby Repo
// ------------------------

type FakeLobbyRepo struct {
	trace []string

	CreateFunc       func(ctx context.Context, db bun.IDB, lobby *lobbydb.Lobby) error
	SetMessageIDFunc func(ctx context.Context, db bun.IDB, lobbyID uuid.UUID, messageID string) error
	CloseFunc        func(ctx context.Context, db bun.IDB, lobbyID uuid.UUID, state string) error
	GetByIDFunc      func(ctx context.Context, db bun.IDB, lobbyID uuid.UUID) (*lobbydb.Lobby, error)
	ListOpenFunc     func(ctx context.Context, db bun.IDB) ([]lobbydb.Lobby, error)
}

func NewFakeLobbyRepo() *FakeLobbyRepo {
	return &FakeLobbyRepo{
		trace: []string{},
	}
}

func (f *FakeLobbyRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeLobbyRepo) Create(ctx context.Context, db bun.IDB, lobby *lobbydb.Lobby) error {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, db, lobby)
	}
	return nil
}

func (f *FakeLobbyRepo) SetMessageID(ctx context.Context, db bun.IDB, lobbyID uuid.UUID, messageID string) error {
	f.record("SetMessageID")
	if f.SetMessageIDFunc != nil {
		return f.SetMessageIDFunc(ctx, db, lobbyID, messageID)
	}
	return nil
}

func (f *FakeLobbyRepo) Close(ctx context.Context, db bun.IDB, lobbyID uuid.UUID, state string) error {
	f.record("Close")
	if f.CloseFunc != nil {
		return f.CloseFunc(ctx, db, lobbyID, state)
	}
	return nil
}

func (f *FakeLobbyRepo) GetByID(ctx context.Context, db bun.IDB, lobbyID uuid.UUID) (*lobbydb.Lobby, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, lobbyID)
	}
	return nil, lobbydb.ErrNotFound
}

func (f *FakeLobbyRepo) ListOpen(ctx context.Context, db bun.IDB) ([]lobbydb.Lobby, error) {
	f.record("ListOpen")
	if f.ListOpenFunc != nil {
		return f.ListOpenFunc(ctx, db)
	}
	return nil, nil
}

// --- Accessors for assertions ---

func (f *FakeLobbyRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ lobbydb.Repository = (*FakeLobbyRepo)(nil)

// ------------------------
// Fake Expiry Scheduler
// ------------------------

type FakeScheduler struct {
	trace []string

	ScheduleExpiryFunc func(ctx context.Context, lobbyID sharedtypes.LobbyID, at time.Time) error
	CancelExpiryFunc   func(ctx context.Context, lobbyID sharedtypes.LobbyID) error
}

func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{
		trace: []string{},
	}
}

func (f *FakeScheduler) ScheduleExpiry(ctx context.Context, lobbyID sharedtypes.LobbyID, at time.Time) error {
	f.trace = append(f.trace, "ScheduleExpiry")
	if f.ScheduleExpiryFunc != nil {
		return f.ScheduleExpiryFunc(ctx, lobbyID, at)
	}
	return nil
}

func (f *FakeScheduler) CancelExpiry(ctx context.Context, lobbyID sharedtypes.LobbyID) error {
	f.trace = append(f.trace, "CancelExpiry")
	if f.CancelExpiryFunc != nil {
		return f.CancelExpiryFunc(ctx, lobbyID)
	}
	return nil
}

func (f *FakeScheduler) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ ExpiryScheduler = (*FakeScheduler)(nil)

// ------------------------
// Fixed Clock
// ------------------------

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

var _ Clock = fixedClock{}
