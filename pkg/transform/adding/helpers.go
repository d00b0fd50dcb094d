package adding

import (
	"context"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

// One-call helpers: each runs its processor as a one-node graph over
// the stream and returns the combined result.

func StartEnd(ctx context.Context, stream *es.EventStream) (*es.EventStream, error) {
	return stream.ApplyProcessor(ctx, &AddStartEndEvents{})
}

func Sessions(ctx context.Context, stream *es.EventStream, p SplitSessions) (*es.EventStream, error) {
	return stream.ApplyProcessor(ctx, &p)
}

func PositiveEvents(ctx context.Context, stream *es.EventStream, targets ...string) (*es.EventStream, error) {
	return stream.ApplyProcessor(ctx, &AddPositiveEvents{Targets: targets})
}

func NegativeEvents(ctx context.Context, stream *es.EventStream, targets ...string) (*es.EventStream, error) {
	return stream.ApplyProcessor(ctx, &AddNegativeEvents{Targets: targets})
}

func NewUsers(ctx context.Context, stream *es.EventStream, p LabelNewUsers) (*es.EventStream, error) {
	return stream.ApplyProcessor(ctx, &p)
}

func LostUsers(ctx context.Context, stream *es.EventStream, p LabelLostUsers) (*es.EventStream, error) {
	return stream.ApplyProcessor(ctx, &p)
}

func CroppedPaths(ctx context.Context, stream *es.EventStream, p LabelCroppedPaths) (*es.EventStream, error) {
	return stream.ApplyProcessor(ctx, &p)
}
