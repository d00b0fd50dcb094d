package eventstream

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// PathRow is one visible event as seen by a processor.
type PathRow struct {
	Row       int // internal frame row
	EventID   string
	EventType string
	EventName string
	UserID    string
	Timestamp time.Time
}

// UserPath is the ordered sequence of a single user's visible events.
type UserPath struct {
	UserID string
	Events []PathRow
}

// UserPaths groups the visible rows per user in canonical order. Users
// appear in order of their first visible event.
func (es *EventStream) UserPaths() []UserPath {
	s := es.schema
	f := es.frame
	var paths []UserPath
	index := make(map[string]int)
	for _, r := range es.VisibleRows() {
		user, _ := f.StringAt(r, s.UserID)
		id, _ := f.StringAt(r, s.EventID)
		typ, _ := f.StringAt(r, s.EventType)
		name, _ := f.StringAt(r, s.EventName)
		ts, _ := f.TimeAt(r, s.EventTimestamp)
		row := PathRow{Row: r, EventID: id, EventType: typ, EventName: name, UserID: user, Timestamp: ts}
		i, ok := index[user]
		if !ok {
			index[user] = len(paths)
			paths = append(paths, UserPath{UserID: user, Events: []PathRow{row}})
			continue
		}
		paths[i].Events = append(paths[i].Events, row)
	}
	return paths
}

// Users returns the distinct user ids of visible events in order of
// first appearance.
func (es *EventStream) Users() []string {
	paths := es.UserPaths()
	users := make([]string, len(paths))
	for i, p := range paths {
		users[i] = p.UserID
	}
	return users
}

// TimeRange returns the earliest and latest visible timestamps.
func (es *EventStream) TimeRange() (time.Time, time.Time) {
	var start, end time.Time
	for _, r := range es.VisibleRows() {
		ts, ok := es.frame.TimeAt(r, es.schema.EventTimestamp)
		if !ok {
			continue
		}
		if start.IsZero() || ts.Before(start) {
			start = ts
		}
		if end.IsZero() || ts.After(end) {
			end = ts
		}
	}
	return start, end
}

// ChildFrame returns an empty frame shaped for a child stream of this
// stream: the canonical and custom columns, a ref_0 relation column and
// the tombstone column, plus any extra columns the processor introduces.
func (es *EventStream) ChildFrame(extra ...ColumnSchema) *Frame {
	s := es.schema
	cols := []ColumnSchema{
		{Name: s.EventID, Type: KindString},
		{Name: s.EventType, Type: KindString},
		{Name: s.EventName, Type: KindString},
		{Name: s.EventTimestamp, Type: KindTime, Nullable: true},
		{Name: s.UserID, Type: KindString},
		{Name: s.EventIndex, Type: KindInt},
	}
	for _, cc := range s.CustomCols {
		kind := KindString
		if col, ok := es.frame.ColumnByName(cc); ok {
			kind = col.Kind()
		}
		cols = append(cols, ColumnSchema{Name: cc, Type: kind, Nullable: true})
	}
	cols = append(cols,
		ColumnSchema{Name: refColName(0), Type: KindString, Nullable: true},
		ColumnSchema{Name: DeletedCol, Type: KindBool},
	)
	for _, cs := range extra {
		cols = append(cols, cs)
	}
	return NewFrame(FrameSchema{Columns: cols})
}

// ChildEvent is one row a processor emits into a child frame. A non-empty
// Ref names the parent event this row supersedes or tombstones; an empty
// Ref marks a novel synthetic row.
type ChildEvent struct {
	ID        string // fresh uuid when empty
	Ref       string
	Name      string
	Type      string
	UserID    string
	Timestamp time.Time
	Deleted   bool
	Custom    map[string]any
}

// AppendChildEvent appends ev to a frame produced by ChildFrame.
func (es *EventStream) AppendChildEvent(cf *Frame, ev ChildEvent) {
	s := es.schema
	cf.AppendNullRow()
	row := cf.Rows() - 1
	id := ev.ID
	if id == "" {
		id = uuid.NewString()
	}
	_ = cf.SetCell(row, s.EventID, id)
	_ = cf.SetCell(row, s.EventType, ev.Type)
	_ = cf.SetCell(row, s.EventName, ev.Name)
	_ = cf.SetCell(row, s.EventTimestamp, ev.Timestamp)
	_ = cf.SetCell(row, s.UserID, ev.UserID)
	_ = cf.SetCell(row, s.EventIndex, int64(row))
	_ = cf.SetCell(row, DeletedCol, ev.Deleted)
	if ev.Ref != "" {
		_ = cf.SetCell(row, refColName(0), ev.Ref)
	}
	for k, v := range ev.Custom {
		_ = cf.SetCell(row, k, v)
	}
}

// CopyChildRow appends a replacement copy of internal row r into cf with
// a fresh event id and a ref back to the source row. Custom column values
// ride along.
func (es *EventStream) CopyChildRow(cf *Frame, r int) int {
	s := es.schema
	f := es.frame
	cf.AppendRowFrom(f, r)
	row := cf.Rows() - 1
	srcID, _ := f.StringAt(r, s.EventID)
	_ = cf.SetCell(row, s.EventID, uuid.NewString())
	_ = cf.SetCell(row, refColName(0), srcID)
	_ = cf.SetCell(row, DeletedCol, false)
	return row
}

// StringAt reads a string cell of the internal frame by row index, as
// reported by PathRow.Row.
func (es *EventStream) StringAt(row int, col string) (string, bool) {
	return es.frame.StringAt(row, col)
}

// NewChild wraps a processor-built frame into a stream carrying exactly
// one relation back to parent. Columns beyond the parent's schema are
// declared as custom columns of the child.
func NewChild(parent *EventStream, f *Frame) (*EventStream, error) {
	s := parent.schema.Copy()
	for _, col := range []string{s.EventID, s.EventType, s.EventName, s.EventTimestamp, s.UserID, s.EventIndex, refColName(0), DeletedCol} {
		if !f.HasColumn(col) {
			return nil, errors.Errorf("eventstream: child frame misses column %q", col)
		}
	}
	known := make(map[string]struct{})
	for _, c := range s.Cols() {
		known[c] = struct{}{}
	}
	known[refColName(0)] = struct{}{}
	known[DeletedCol] = struct{}{}
	rs := parent.rawSchema.Copy()
	for _, cs := range f.Schema().Columns {
		if _, ok := known[cs.Name]; ok {
			continue
		}
		s.CustomCols = append(s.CustomCols, cs.Name)
		rs.CustomCols = append(rs.CustomCols, RawCustomCol{RawDataCol: cs.Name, CustomCol: cs.Name})
	}
	child := &EventStream{
		schema:      s,
		rawSchema:   rs,
		frame:       f,
		relations:   []Relation{{Parent: parent}},
		eventsOrder: parent.EventsOrder(),
		log:         parent.log,
	}
	child.IndexEvents()
	return child, nil
}
