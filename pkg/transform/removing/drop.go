package removing

import (
	"context"
	"time"

	"github.com/pkg/errors"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

// DropPaths soft-deletes every event of paths that are too short: fewer
// than MinSteps visible events, or spanning less than MinTime. Exactly
// one criterion must be set.
type DropPaths struct {
	MinSteps int
	MinTime  *es.TimeDelta
}

func (*DropPaths) Name() string { return "drop_paths" }

func (p *DropPaths) validate() error {
	if (p.MinSteps > 0) == (p.MinTime != nil) {
		return errors.New("drop_paths: exactly one of min_steps and min_time must be set")
	}
	if p.MinSteps < 0 {
		return errors.New("drop_paths: min_steps must be positive")
	}
	if p.MinTime != nil {
		if err := p.MinTime.Validate(); err != nil {
			return errors.Wrap(err, "drop_paths")
		}
	}
	return nil
}

func (p *DropPaths) Apply(ctx context.Context, in *es.EventStream) (*es.EventStream, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	var minSpan time.Duration
	if p.MinTime != nil {
		var err error
		minSpan, err = p.MinTime.Duration()
		if err != nil {
			return nil, err
		}
	}
	cf := in.ChildFrame()
	for _, path := range in.UserPaths() {
		if len(path.Events) == 0 {
			continue
		}
		short := false
		if p.MinSteps > 0 {
			short = len(path.Events) < p.MinSteps
		} else {
			span := path.Events[len(path.Events)-1].Timestamp.Sub(path.Events[0].Timestamp)
			short = span < minSpan
		}
		if !short {
			continue
		}
		for _, ev := range path.Events {
			in.AppendChildEvent(cf, es.ChildEvent{
				Ref: ev.EventID, Name: ev.EventName, Type: ev.EventType,
				UserID: path.UserID, Timestamp: ev.Timestamp, Deleted: true,
			})
		}
	}
	return es.NewChild(in, cf)
}
