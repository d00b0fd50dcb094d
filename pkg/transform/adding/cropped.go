package adding

import (
	"context"

	"github.com/pkg/errors"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

// LabelCroppedPaths marks paths that may be cropped by the bounds of the
// observation window. A user gets a truncated_left event at their
// earliest timestamp when the distance from it to the global stream end
// is below LeftCutoff; mirror-image, a truncated_right event at their
// latest timestamp when the distance from the global stream start is
// below RightCutoff.
type LabelCroppedPaths struct {
	LeftCutoff  *es.TimeDelta
	RightCutoff *es.TimeDelta
}

func (*LabelCroppedPaths) Name() string { return "label_cropped_paths" }

func (p *LabelCroppedPaths) validate() error {
	if p.LeftCutoff == nil && p.RightCutoff == nil {
		return errors.New("label_cropped_paths: at least one cutoff is required")
	}
	for _, d := range []*es.TimeDelta{p.LeftCutoff, p.RightCutoff} {
		if d != nil {
			if err := d.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *LabelCroppedPaths) Apply(ctx context.Context, in *es.EventStream) (*es.EventStream, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	globalStart, globalEnd := in.TimeRange()

	cf := in.ChildFrame()
	for _, path := range in.UserPaths() {
		first := path.Events[0]
		last := path.Events[len(path.Events)-1]
		if p.LeftCutoff != nil {
			cutoff, err := p.LeftCutoff.Duration()
			if err != nil {
				return nil, err
			}
			if globalEnd.Sub(first.Timestamp) < cutoff {
				in.AppendChildEvent(cf, es.ChildEvent{
					Name: es.EventTypeTruncatedLeft, Type: es.EventTypeTruncatedLeft,
					UserID: path.UserID, Timestamp: first.Timestamp,
				})
			}
		}
		if p.RightCutoff != nil {
			cutoff, err := p.RightCutoff.Duration()
			if err != nil {
				return nil, err
			}
			if last.Timestamp.Sub(globalStart) < cutoff {
				in.AppendChildEvent(cf, es.ChildEvent{
					Name: es.EventTypeTruncatedRight, Type: es.EventTypeTruncatedRight,
					UserID: path.UserID, Timestamp: last.Timestamp,
				})
			}
		}
	}
	return es.NewChild(in, cf)
}
