package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"outlay/internal/amqp"
	"outlay/internal/database"
	"outlay/internal/sheets"
)

type consumer interface {
	Consume(ctx context.Context, spec amqp.QueueSpec, handler func(context.Context, *amqp.ChangeMessage) error) error
}

// MirrorWorker copies a user's whole collection to the spreadsheet each time
// a change message for it arrives.
type MirrorWorker struct {
	db     database.Database
	mirror sheets.Mirror
	queue  string
}

func NewMirrorWorker(db database.Database, mirror sheets.Mirror, queue string) *MirrorWorker {
	return &MirrorWorker{db: db, mirror: mirror, queue: queue}
}

// HandleChangeMessage mirrors the collection named by msg. Messages for
// paths that are not expense collections are dropped; any other failure
// is returned so the message is requeued.
func (w *MirrorWorker) HandleChangeMessage(ctx context.Context, msg *amqp.ChangeMessage) error {
	uid, err := database.UIDFromPath(msg.Path)
	if err != nil {
		slog.WarnContext(ctx, "Dropping change message", "path", msg.Path, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "Processing change message",
		"uid", uid,
		"origin", msg.Origin,
		"timestamp", msg.Timestamp)

	docs, err := w.db.List(ctx, msg.Path)
	if err != nil {
		return fmt.Errorf("read expenses: %w", err)
	}
	if err := w.mirror.WriteSnapshot(ctx, uid, database.ToExpenses(docs)); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Sync mirrors uid immediately, without waiting for a change.
func (w *MirrorWorker) Sync(ctx context.Context, uid string) error {
	return w.HandleChangeMessage(ctx, amqp.NewChangeMessage(database.ExpensesPath(uid), "mirror"))
}

// Run consumes change messages from the worker's durable queue until ctx is done.
func (w *MirrorWorker) Run(ctx context.Context, c consumer) error {
	slog.InfoContext(ctx, "Mirror worker started", "queue", w.queue)
	err := c.Consume(ctx, amqp.QueueSpec{Name: w.queue, Durable: true}, w.HandleChangeMessage)
	if errors.Is(err, context.Canceled) {
		slog.InfoContext(ctx, "Mirror worker stopped")
		return nil
	}
	return err
}
