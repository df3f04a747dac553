package amqp

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"outlay/internal/database/realtime"
)

type publisher interface {
	Publish(ctx context.Context, msg *ChangeMessage) error
}

type consumer interface {
	Consume(ctx context.Context, spec QueueSpec, handler func(context.Context, *ChangeMessage) error) error
}

// Bridge links the local realtime hub to the other instances: local writes
// are published, and changes published by other instances wake local
// watchers.
type Bridge struct {
	pub    publisher
	sub    consumer
	hub    *realtime.Hub
	origin string
}

func NewBridge(client *Client, hub *realtime.Hub) *Bridge {
	return newBridge(client, client, hub)
}

func newBridge(pub publisher, sub consumer, hub *realtime.Hub) *Bridge {
	return &Bridge{pub: pub, sub: sub, hub: hub, origin: uuid.NewString()}
}

// Origin identifies this instance in published messages.
func (b *Bridge) Origin() string { return b.origin }

// Attach makes the hub publish every local change.
func (b *Bridge) Attach() {
	b.hub.Forward(b.forward)
}

func (b *Bridge) forward(ctx context.Context, path string) {
	// The write already succeeded; a lost notification only delays other
	// instances until their next reload.
	if err := b.pub.Publish(context.WithoutCancel(ctx), NewChangeMessage(path, b.origin)); err != nil {
		slog.WarnContext(ctx, "Failed to publish change", "path", path, "error", err)
	}
}

// Run consumes changes from other instances until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	spec := QueueSpec{Exclusive: true}
	return b.sub.Consume(ctx, spec, b.handle)
}

func (b *Bridge) handle(ctx context.Context, msg *ChangeMessage) error {
	if msg.Origin == b.origin {
		return nil
	}
	slog.DebugContext(ctx, "Remote change received", "path", msg.Path, "origin", msg.Origin)
	b.hub.Deliver(msg.Path)
	return nil
}
