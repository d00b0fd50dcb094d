package eventstream

import "context"

// Processor is a pure transformation over event streams. Apply must not
// mutate its input; the returned stream carries exactly one relation
// pointing back at the input, with each child row's ref naming the input
// event id it derives from (or null for novel synthetic rows).
type Processor interface {
	Name() string
	Apply(ctx context.Context, es *EventStream) (*EventStream, error)
}

// ApplyProcessor runs a single processor as a one-node preprocessing
// graph and returns the combined result: the input stream with the
// processor's child stream joined in.
func (es *EventStream) ApplyProcessor(ctx context.Context, p Processor) (*EventStream, error) {
	g := NewPGraph(es)
	n := NewEventsNode(p)
	if err := g.AddNode(n, g.Root()); err != nil {
		return nil, err
	}
	return g.Combine(ctx, n)
}
