package removing

import (
	"context"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

// One-call helpers: each runs its processor as a one-node graph over
// the stream and returns the combined result.

func Drop(ctx context.Context, stream *es.EventStream, p DropPaths) (*es.EventStream, error) {
	return stream.ApplyProcessor(ctx, &p)
}

func Truncate(ctx context.Context, stream *es.EventStream, p TruncatePaths) (*es.EventStream, error) {
	return stream.ApplyProcessor(ctx, &p)
}
