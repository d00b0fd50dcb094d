package editing

import (
	"context"

	"github.com/pkg/errors"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

// Pipe hands the visible dataframe view to an arbitrary function and
// replaces the stream contents with the returned frame. An analyst
// opt-in power tool: the result must still conform to the schema.
//
// Returned rows whose event id matches a current event supersede it;
// rows with unknown ids are insertions; current events absent from the
// result are soft-deleted.
type Pipe struct {
	Func func(f *es.Frame, s es.Schema) (*es.Frame, error)
}

func (*Pipe) Name() string { return "pipe" }

func (p *Pipe) Apply(ctx context.Context, in *es.EventStream) (*es.EventStream, error) {
	if p.Func == nil {
		return nil, errors.New("pipe: a function is required")
	}
	s := in.Schema()
	vf := in.ToFrame(es.FrameOptions{})
	out, err := p.Func(vf, s)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.New("pipe: function returned a nil frame")
	}
	for _, col := range []string{s.EventID, s.EventType, s.EventName, s.EventTimestamp, s.UserID} {
		if !out.HasColumn(col) {
			return nil, errors.Errorf("pipe: returned frame misses column %q", col)
		}
	}

	current := make(map[string]struct{}, vf.Rows())
	for r := 0; r < vf.Rows(); r++ {
		if id, ok := vf.StringAt(r, s.EventID); ok {
			current[id] = struct{}{}
		}
	}

	cf := in.ChildFrame()
	returned := make(map[string]struct{}, out.Rows())
	for r := 0; r < out.Rows(); r++ {
		id, _ := out.StringAt(r, s.EventID)
		name, _ := out.StringAt(r, s.EventName)
		typ, _ := out.StringAt(r, s.EventType)
		user, _ := out.StringAt(r, s.UserID)
		ts, ok := out.TimeAt(r, s.EventTimestamp)
		if name == "" || user == "" || !ok {
			return nil, errors.Errorf("pipe: returned frame has null required fields at row %d", r)
		}
		custom := make(map[string]any)
		for _, cc := range s.CustomCols {
			if v, ok := cellValue(out, r, cc); ok {
				custom[cc] = v
			}
		}
		ev := es.ChildEvent{Name: name, Type: typ, UserID: user, Timestamp: ts, Custom: custom}
		if _, known := current[id]; known {
			ev.Ref = id
			returned[id] = struct{}{}
		}
		in.AppendChildEvent(cf, ev)
	}
	// events dropped by the function become tombstones
	for r := 0; r < vf.Rows(); r++ {
		id, _ := vf.StringAt(r, s.EventID)
		if _, kept := returned[id]; kept {
			continue
		}
		name, _ := vf.StringAt(r, s.EventName)
		typ, _ := vf.StringAt(r, s.EventType)
		user, _ := vf.StringAt(r, s.UserID)
		ts, _ := vf.TimeAt(r, s.EventTimestamp)
		in.AppendChildEvent(cf, es.ChildEvent{
			Ref: id, Name: name, Type: typ, UserID: user, Timestamp: ts, Deleted: true,
		})
	}
	return es.NewChild(in, cf)
}

// cellValue reads a cell as its column's native type, so custom columns
// of any kind survive the round trip.
func cellValue(f *es.Frame, row int, name string) (any, bool) {
	col, ok := f.ColumnByName(name)
	if !ok {
		return nil, false
	}
	switch c := col.(type) {
	case *es.StringColumn:
		v, ok := c.Get(row)
		return v, ok
	case *es.IntColumn:
		v, ok := c.Get(row)
		return v, ok
	case *es.FloatColumn:
		v, ok := c.Get(row)
		return v, ok
	case *es.BoolColumn:
		v, ok := c.Get(row)
		return v, ok
	case *es.TimeColumn:
		v, ok := c.Get(row)
		return v, ok
	}
	return nil, false
}
