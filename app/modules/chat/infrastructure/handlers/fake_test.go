package chathandlers

import (
	"context"

	chatservice "github.com/Five-Stack-Club/rift-bot/app/modules/chat/application"
)

// ------------------------
// Fake Chat Service
// ------------------------

type FakeChatService struct {
	trace []string

	ArchiveMessageFunc func(ctx context.Context, msg *chatservice.IncomingMessage) error
	RespondFunc        func(ctx context.Context, msg *chatservice.IncomingMessage) (string, error)
}

func NewFakeChatService() *FakeChatService {
	return &FakeChatService{
		trace: []string{},
	}
}

func (f *FakeChatService) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Service Interface Implementation ---

func (f *FakeChatService) ArchiveMessage(ctx context.Context, msg *chatservice.IncomingMessage) error {
	f.record("ArchiveMessage")
	if f.ArchiveMessageFunc != nil {
		return f.ArchiveMessageFunc(ctx, msg)
	}
	return nil
}

func (f *FakeChatService) Respond(ctx context.Context, msg *chatservice.IncomingMessage) (string, error) {
	f.record("Respond")
	if f.RespondFunc != nil {
		return f.RespondFunc(ctx, msg)
	}
	return "hello!", nil
}

// --- Accessors for assertions ---

func (f *FakeChatService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ chatservice.Service = (*FakeChatService)(nil)
