package editing

import (
	"context"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

// One-call helpers: each runs its processor as a one-node graph over
// the stream and returns the combined result.

func Collapse(ctx context.Context, stream *es.EventStream, p CollapseLoops) (*es.EventStream, error) {
	return stream.ApplyProcessor(ctx, &p)
}

func Filter(ctx context.Context, stream *es.EventStream, pred es.Predicate) (*es.EventStream, error) {
	return stream.ApplyProcessor(ctx, &FilterEvents{Func: pred})
}

func Group(ctx context.Context, stream *es.EventStream, p GroupEvents) (*es.EventStream, error) {
	return stream.ApplyProcessor(ctx, &p)
}

func GroupBulk(ctx context.Context, stream *es.EventStream, p GroupEventsBulk) (*es.EventStream, error) {
	return stream.ApplyProcessor(ctx, &p)
}

func Rename(ctx context.Context, stream *es.EventStream, rules ...RenameRule) (*es.EventStream, error) {
	return stream.ApplyProcessor(ctx, &RenameEvents{Rules: rules})
}

func PipeFunc(ctx context.Context, stream *es.EventStream, fn func(*es.Frame, es.Schema) (*es.Frame, error)) (*es.EventStream, error) {
	return stream.ApplyProcessor(ctx, &Pipe{Func: fn})
}
