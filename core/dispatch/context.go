package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Meta describes one dispatch. Every Send stamps the context passed to
// receivers with a Meta so handlers can log or correlate without extra
// payload fields.
type Meta struct {
	ID         string
	Signal     Signal
	Sender     Sender
	OccurredAt time.Time
}

type metaCtx struct{}

// WithMeta attaches dispatch metadata to the context.
func WithMeta(ctx context.Context, meta Meta) context.Context {
	return context.WithValue(ctx, metaCtx{}, meta)
}

// MetaFromContext extracts dispatch metadata from the context.
// Returns false if the context did not come from a Send call.
func MetaFromContext(ctx context.Context) (Meta, bool) {
	meta, ok := ctx.Value(metaCtx{}).(Meta)
	return meta, ok
}

func newMeta(signal Signal, sender Sender) Meta {
	return Meta{
		ID:         uuid.New().String(),
		Signal:     signal,
		Sender:     sender,
		OccurredAt: time.Now(),
	}
}
