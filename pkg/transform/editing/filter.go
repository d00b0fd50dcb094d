package editing

import (
	"context"

	"github.com/pkg/errors"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

// FilterEvents soft-deletes every visible row the predicate rejects.
// No new rows are injected.
type FilterEvents struct {
	Func es.Predicate
}

func (*FilterEvents) Name() string { return "filter_events" }

func (p *FilterEvents) Apply(ctx context.Context, in *es.EventStream) (*es.EventStream, error) {
	if p.Func == nil {
		return nil, errors.New("filter_events: a predicate is required")
	}
	vf := in.ToFrame(es.FrameOptions{})
	mask, err := p.Func(vf, in.Schema())
	if err != nil {
		return nil, err
	}
	if len(mask) != vf.Rows() {
		return nil, errors.Errorf("filter_events: mask length %d does not match %d rows", len(mask), vf.Rows())
	}

	cf := in.ChildFrame()
	visible := in.VisibleRows()
	for i, keep := range mask {
		if keep {
			continue
		}
		row := in.CopyChildRow(cf, visible[i])
		_ = cf.SetCell(row, es.DeletedCol, true)
	}
	return es.NewChild(in, cf)
}
