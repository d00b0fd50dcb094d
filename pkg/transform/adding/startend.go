package adding

import (
	"context"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

// AddStartEndEvents injects a path_start event at each user's earliest
// timestamp and a path_end event at the latest. Both are synthetic, with
// event name equal to event type.
type AddStartEndEvents struct{}

func (*AddStartEndEvents) Name() string { return "add_start_end_events" }

func (*AddStartEndEvents) Apply(ctx context.Context, in *es.EventStream) (*es.EventStream, error) {
	cf := in.ChildFrame()
	for _, p := range in.UserPaths() {
		first := p.Events[0]
		last := p.Events[len(p.Events)-1]
		in.AppendChildEvent(cf, es.ChildEvent{
			Name:      es.EventTypePathStart,
			Type:      es.EventTypePathStart,
			UserID:    p.UserID,
			Timestamp: first.Timestamp,
		})
		in.AppendChildEvent(cf, es.ChildEvent{
			Name:      es.EventTypePathEnd,
			Type:      es.EventTypePathEnd,
			UserID:    p.UserID,
			Timestamp: last.Timestamp,
		})
	}
	return es.NewChild(in, cf)
}
