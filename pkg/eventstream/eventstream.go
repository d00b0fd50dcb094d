package eventstream

import (
	"math"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Relation links a stream to a parent stream. The frame column
// RefColPrefix+i holds, for every row, the parent event id the row
// derives from, or null for novel synthetic rows. RawCol optionally
// names the raw input column the ids were read from at ingestion.
type Relation struct {
	Parent *EventStream
	RawCol string
}

// Options configures construction of an event stream from raw data.
type Options struct {
	RawSchema   *RawSchema
	Schema      *Schema
	Prepare     *bool // default true
	EventsOrder []string
	Relations   []Relation
	CustomCols  []string
	// UserSampleSize accepts an int (absolute user count) or a float in
	// (0, 1] (share of users). Users are drawn without replacement with
	// a seeded RNG; events of unselected users are discarded.
	UserSampleSize any
	UserSampleSeed int64
	Logger         *zap.Logger
}

// FrameOptions controls the projection returned by ToFrame. The returned
// frame is always a fresh copy.
type FrameOptions struct {
	RawCols     bool
	ShowDeleted bool
}

// EventStream is the canonical table of events with schema, relations
// and tombstones. It is logically immutable to callers: processors
// receive a stream and return a freshly constructed one, and all
// internal mutation happens before the stream is shared.
type EventStream struct {
	schema      Schema
	rawSchema   RawSchema
	frame       *Frame
	relations   []Relation
	eventsOrder []string
	log         *zap.Logger
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// New builds an event stream from a raw tabular frame. With Prepare set
// (the default) the raw columns are preserved under the raw_ prefix,
// canonical columns are derived per the raw-data schema, rows with null
// required fields are dropped with a warning, and the canonical ordering
// is applied.
func New(raw *Frame, opt Options) (*EventStream, error) {
	es := &EventStream{log: opt.Logger}
	if es.log == nil {
		es.log = zap.NewNop()
	}

	if opt.Schema != nil {
		es.schema = opt.Schema.Copy()
	} else {
		es.schema = DefaultSchema()
	}
	if opt.RawSchema != nil {
		es.rawSchema = opt.RawSchema.Copy()
	} else {
		es.rawSchema = DefaultRawSchema()
	}
	for _, c := range opt.CustomCols {
		if !es.schema.HasCustomCol(c) {
			es.schema.CustomCols = append(es.schema.CustomCols, c)
			es.rawSchema.CustomCols = append(es.rawSchema.CustomCols, RawCustomCol{RawDataCol: c, CustomCol: c})
		}
	}
	if opt.EventsOrder != nil {
		es.eventsOrder = append([]string(nil), opt.EventsOrder...)
	} else {
		es.eventsOrder = DefaultEventsOrder()
	}
	es.relations = append([]Relation(nil), opt.Relations...)

	prepare := true
	if opt.Prepare != nil {
		prepare = *opt.Prepare
	}
	if !prepare {
		if raw == nil {
			return nil, errors.New("eventstream: nil frame")
		}
		for _, col := range es.schema.Cols() {
			if !raw.HasColumn(col) {
				return nil, errors.Errorf("eventstream: prepared frame misses column %q", col)
			}
		}
		if !raw.HasColumn(DeletedCol) {
			if err := raw.AddColumn(NewBoolColumn(DeletedCol, raw.Rows()), false); err != nil {
				return nil, err
			}
		}
		es.frame = raw
		es.IndexEvents()
		return es, nil
	}

	if raw == nil {
		return nil, errors.New("eventstream: nil raw frame")
	}
	if err := es.prepare(raw, opt); err != nil {
		return nil, err
	}
	return es, nil
}

func (es *EventStream) prepare(raw *Frame, opt Options) error {
	rs := es.rawSchema
	for _, req := range []string{rs.EventName, rs.EventTimestamp, rs.UserID} {
		if !raw.HasColumn(req) {
			return errors.Errorf("eventstream: required raw column %q not found", req)
		}
	}

	// Auto-detect custom columns when the analyst declared none: any raw
	// column the schema does not claim becomes a custom column.
	if len(es.schema.CustomCols) == 0 {
		for _, cs := range raw.Schema().Columns {
			if !rs.mapped(cs.Name) {
				es.schema.CustomCols = append(es.schema.CustomCols, cs.Name)
				es.rawSchema.CustomCols = append(es.rawSchema.CustomCols, RawCustomCol{RawDataCol: cs.Name, CustomCol: cs.Name})
			}
		}
		rs = es.rawSchema
	}

	keep, err := sampleRows(raw, rs.UserID, opt.UserSampleSize, opt.UserSampleSeed)
	if err != nil {
		return err
	}

	s := es.schema
	cols := []ColumnSchema{
		{Name: s.EventID, Type: KindString},
		{Name: s.EventType, Type: KindString},
		{Name: s.EventName, Type: KindString},
		{Name: s.EventTimestamp, Type: KindTime, Nullable: true},
		{Name: s.UserID, Type: KindString},
		{Name: s.EventIndex, Type: KindInt},
	}
	for _, cc := range rs.CustomCols {
		kind := KindString
		if col, ok := raw.ColumnByName(cc.RawDataCol); ok {
			kind = col.Kind()
		}
		cols = append(cols, ColumnSchema{Name: cc.CustomCol, Type: kind, Nullable: true})
	}
	for i := range es.relations {
		cols = append(cols, ColumnSchema{Name: refColName(i), Type: KindString, Nullable: true})
	}
	cols = append(cols, ColumnSchema{Name: DeletedCol, Type: KindBool})
	for _, cs := range raw.Schema().Columns {
		cols = append(cols, ColumnSchema{Name: RawColPrefix + cs.Name, Type: cs.Type, Nullable: true})
	}

	f := NewFrame(FrameSchema{Columns: cols})
	dropped := 0
	for _, r := range keep {
		name, nameOK := cellString(raw, r, rs.EventName)
		user, userOK := cellString(raw, r, rs.UserID)
		ts, tsOK := cellTime(raw, r, rs.EventTimestamp)
		if !nameOK || !userOK || !tsOK {
			dropped++
			continue
		}

		f.AppendNullRow()
		row := f.Rows() - 1

		id := ""
		if rs.EventID != "" && raw.HasColumn(rs.EventID) {
			id, _ = cellString(raw, r, rs.EventID)
		}
		if id == "" {
			id = uuid.NewString()
		}
		typ := EventTypeRaw
		if rs.EventType != "" && raw.HasColumn(rs.EventType) {
			if v, ok := cellString(raw, r, rs.EventType); ok && v != "" {
				typ = v
			}
		}
		_ = f.SetCell(row, s.EventID, id)
		_ = f.SetCell(row, s.EventType, typ)
		_ = f.SetCell(row, s.EventName, name)
		_ = f.SetCell(row, s.EventTimestamp, ts)
		_ = f.SetCell(row, s.UserID, user)
		_ = f.SetCell(row, s.EventIndex, int64(row))
		_ = f.SetCell(row, DeletedCol, false)

		for _, cc := range rs.CustomCols {
			if src, ok := raw.ColumnByName(cc.RawDataCol); ok && !src.IsNull(r) {
				dst, _ := f.ColumnByName(cc.CustomCol)
				copyCell(dst, row, src, r)
			}
		}
		for i, rel := range es.relations {
			if rel.RawCol != "" && raw.HasColumn(rel.RawCol) {
				if v, ok := cellString(raw, r, rel.RawCol); ok {
					_ = f.SetCell(row, refColName(i), v)
				}
			}
		}
		for _, cs := range raw.Schema().Columns {
			src, _ := raw.ColumnByName(cs.Name)
			if !src.IsNull(r) {
				dst, _ := f.ColumnByName(RawColPrefix + cs.Name)
				copyCell(dst, row, src, r)
			}
		}
	}
	if dropped > 0 {
		es.log.Warn("dropped rows with null required fields",
			zap.Int("count", dropped))
	}

	es.frame = f
	es.IndexEvents()
	return nil
}

// sampleRows returns the raw row indices to keep under user sampling.
func sampleRows(raw *Frame, userCol string, size any, seed int64) ([]int, error) {
	all := make([]int, raw.Rows())
	for i := range all {
		all[i] = i
	}
	if size == nil {
		return all, nil
	}

	var users []string
	seen := make(map[string]struct{})
	for r := 0; r < raw.Rows(); r++ {
		u, ok := cellString(raw, r, userCol)
		if !ok {
			continue
		}
		if _, dup := seen[u]; !dup {
			seen[u] = struct{}{}
			users = append(users, u)
		}
	}

	var n int
	switch v := size.(type) {
	case int:
		if v < 0 {
			return nil, errors.Errorf("eventstream: user_sample_size must be >= 0, got %d", v)
		}
		n = v
	case int64:
		if v < 0 {
			return nil, errors.Errorf("eventstream: user_sample_size must be >= 0, got %d", v)
		}
		n = int(v)
	case float64:
		if v <= 0 || v > 1 {
			return nil, errors.Errorf("eventstream: user_sample_size share must be in (0, 1], got %v", v)
		}
		n = int(math.Round(v * float64(len(users))))
	default:
		return nil, errors.Errorf("eventstream: unsupported user_sample_size type %T", size)
	}
	if n >= len(users) {
		return all, nil
	}

	rng := rand.New(rand.NewSource(seed))
	picked := make(map[string]struct{}, n)
	for _, i := range rng.Perm(len(users))[:n] {
		picked[users[i]] = struct{}{}
	}
	keep := make([]int, 0, raw.Rows())
	for r := 0; r < raw.Rows(); r++ {
		u, ok := cellString(raw, r, userCol)
		if !ok {
			// kept here; the null-required-field pass drops it
			keep = append(keep, r)
			continue
		}
		if _, ok := picked[u]; ok {
			keep = append(keep, r)
		}
	}
	return keep, nil
}

// Schema returns a copy of the stream schema.
func (es *EventStream) Schema() Schema { return es.schema.Copy() }

// Logger returns the stream's logger (never nil).
func (es *EventStream) Logger() *zap.Logger { return es.log }

// RawSchema returns a copy of the raw-data schema.
func (es *EventStream) RawSchema() RawSchema { return es.rawSchema.Copy() }

// EventsOrder returns a copy of the event type priority list.
func (es *EventStream) EventsOrder() []string {
	return append([]string(nil), es.eventsOrder...)
}

// Relations returns a copy of the relation list, oldest first.
func (es *EventStream) Relations() []Relation {
	return append([]Relation(nil), es.relations...)
}

func refColName(i int) string { return RefColPrefix + strconv.Itoa(i) }

// RefCol returns the frame column name of relation i.
func (es *EventStream) RefCol(i int) string { return refColName(i) }

// RefCols returns the frame column names of all relations.
func (es *EventStream) RefCols() []string {
	cols := make([]string, len(es.relations))
	for i := range es.relations {
		cols[i] = refColName(i)
	}
	return cols
}

// RawCols returns the preserved raw input column names.
func (es *EventStream) RawCols() []string {
	var cols []string
	for _, cs := range es.frame.Schema().Columns {
		if len(cs.Name) > len(RawColPrefix) && cs.Name[:len(RawColPrefix)] == RawColPrefix {
			cols = append(cols, cs.Name)
		}
	}
	return cols
}

// Copy returns a deep copy of the stream. Relation parents are shared;
// ownership of ancestors stays with the caller's scope.
func (es *EventStream) Copy() *EventStream {
	return &EventStream{
		schema:      es.schema.Copy(),
		rawSchema:   es.rawSchema.Copy(),
		frame:       es.frame.Clone(),
		relations:   append([]Relation(nil), es.relations...),
		eventsOrder: append([]string(nil), es.eventsOrder...),
		log:         es.log,
	}
}

// ToFrame returns a projection of the stream: canonical and relation
// columns, optionally raw_ columns, optionally tombstoned rows.
func (es *EventStream) ToFrame(opt FrameOptions) *Frame {
	names := es.schema.Cols()
	names = append(names, es.RefCols()...)
	if opt.RawCols {
		names = append(names, es.RawCols()...)
	}

	var cols []ColumnSchema
	for _, n := range names {
		for _, cs := range es.frame.Schema().Columns {
			if cs.Name == n {
				cols = append(cols, cs)
				break
			}
		}
	}
	out := NewFrame(FrameSchema{Columns: cols})
	for r := 0; r < es.frame.Rows(); r++ {
		if !opt.ShowDeleted {
			if del, ok := es.frame.BoolAt(r, DeletedCol); ok && del {
				continue
			}
		}
		out.AppendRowFrom(es.frame, r)
	}
	return out
}

// VisibleRows returns the internal row indices not hidden by tombstones,
// in canonical order.
func (es *EventStream) VisibleRows() []int {
	var rows []int
	for r := 0; r < es.frame.Rows(); r++ {
		if del, ok := es.frame.BoolAt(r, DeletedCol); ok && del {
			continue
		}
		rows = append(rows, r)
	}
	return rows
}

func (es *EventStream) typePriority(t string) int {
	for i, v := range es.eventsOrder {
		if v == t {
			return i
		}
	}
	return len(es.eventsOrder)
}

// IndexEvents recomputes event_index under the canonical ordering:
// timestamp ascending, then events_order priority of the event type.
// The sort is stable so ties preserve insertion order.
func (es *EventStream) IndexEvents() {
	f := es.frame
	s := es.schema
	perm := make([]int, f.Rows())
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		ta, aok := f.TimeAt(perm[a], s.EventTimestamp)
		tb, bok := f.TimeAt(perm[b], s.EventTimestamp)
		if aok != bok {
			return !aok // null timestamps first
		}
		if !ta.Equal(tb) {
			return ta.Before(tb)
		}
		pa, pb := len(es.eventsOrder), len(es.eventsOrder)
		if v, ok := f.StringAt(perm[a], s.EventType); ok {
			pa = es.typePriority(v)
		}
		if v, ok := f.StringAt(perm[b], s.EventType); ok {
			pb = es.typePriority(v)
		}
		return pa < pb
	})
	es.frame = f.Select(perm)
	for r := 0; r < es.frame.Rows(); r++ {
		_ = es.frame.SetCell(r, s.EventIndex, int64(r))
	}
}

// SoftDelete marks the given event ids as deleted. Deletion propagates
// through the last relation: rows whose last ref points at a deleted id
// are tombstoned as well, so deletions flow down the ancestry when
// streams are later joined.
func (es *EventStream) SoftDelete(ids []string) {
	deleted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		deleted[id] = struct{}{}
	}
	f := es.frame
	s := es.schema
	for r := 0; r < f.Rows(); r++ {
		if del, _ := f.BoolAt(r, DeletedCol); del {
			if id, ok := f.StringAt(r, s.EventID); ok {
				deleted[id] = struct{}{}
			}
		}
	}
	for r := 0; r < f.Rows(); r++ {
		id, _ := f.StringAt(r, s.EventID)
		if _, ok := deleted[id]; ok {
			_ = f.SetCell(r, DeletedCol, true)
			continue
		}
		if len(es.relations) == 0 {
			continue
		}
		if ref, ok := f.StringAt(r, refColName(len(es.relations)-1)); ok {
			if _, gone := deleted[ref]; gone {
				_ = f.SetCell(r, DeletedCol, true)
			}
		}
	}
}

// AppendEventstream merges another stream into this one: an outer merge
// by event id. Schemas must be equal on the canonical columns; the union
// of custom and raw columns is retained and _deleted flags are OR-combined.
func (es *EventStream) AppendEventstream(other *EventStream) error {
	if !es.schema.Equal(other.schema) {
		return errors.Errorf("eventstream: append schema mismatch: %v vs %v",
			es.schema.Cols()[:6], other.schema.Cols()[:6])
	}
	es.schema.CustomCols = mergeCustomCols(es.schema.CustomCols, other.schema.CustomCols)
	es.rawSchema.CustomCols = mergeRawCustomCols(es.rawSchema.CustomCols, es.schema.CustomCols)

	merged := unionFrame(es.frame, other.frame)
	rowByID := make(map[string]int, es.frame.Rows())
	for r := 0; r < es.frame.Rows(); r++ {
		merged.AppendRowFrom(es.frame, r)
		if id, ok := es.frame.StringAt(r, es.schema.EventID); ok {
			rowByID[id] = r
		}
	}
	for r := 0; r < other.frame.Rows(); r++ {
		id, _ := other.frame.StringAt(r, other.schema.EventID)
		if mr, ok := rowByID[id]; ok {
			// OR the tombstone, fill cells this side left null
			ld, _ := es.frame.BoolAt(mr, DeletedCol)
			rd, _ := other.frame.BoolAt(r, DeletedCol)
			_ = merged.SetCell(mr, DeletedCol, ld || rd)
			fillNullCells(merged, mr, other.frame, r)
			continue
		}
		merged.AppendRowFrom(other.frame, r)
	}
	es.frame = merged
	es.IndexEvents()
	return nil
}

// JoinEventstream consumes a child stream carrying a relation to this
// stream. Child rows matched to a parent event supersede it: the parent
// row is tombstoned and the child version kept (inheriting the parent's
// tombstone if it already had one). Child rows with a null ref are pure
// insertions; unmatched parent rows pass through.
func (es *EventStream) JoinEventstream(child *EventStream) error {
	if len(child.relations) == 0 {
		return errors.New("eventstream: child stream has no relations")
	}
	last := child.relations[len(child.relations)-1]
	if last.Parent != es {
		return errors.New("eventstream: child stream does not relate to this stream")
	}
	if !es.schema.Equal(child.schema) {
		return errors.Errorf("eventstream: join schema mismatch: %v vs %v",
			es.schema.Cols()[:6], child.schema.Cols()[:6])
	}
	refCol := refColName(len(child.relations) - 1)
	s := es.schema
	es.schema.CustomCols = mergeCustomCols(es.schema.CustomCols, child.schema.CustomCols)
	es.rawSchema.CustomCols = mergeRawCustomCols(es.rawSchema.CustomCols, es.schema.CustomCols)

	// Tombstone state of the parent before the join, keyed by event id.
	parentDeleted := make(map[string]bool, es.frame.Rows())
	for r := 0; r < es.frame.Rows(); r++ {
		id, _ := es.frame.StringAt(r, s.EventID)
		del, _ := es.frame.BoolAt(r, DeletedCol)
		parentDeleted[id] = del
	}

	superseded := make(map[string]struct{})
	for r := 0; r < child.frame.Rows(); r++ {
		if ref, ok := child.frame.StringAt(r, refCol); ok {
			if _, exists := parentDeleted[ref]; !exists {
				return errors.Errorf("eventstream: child ref %q matches no parent event", ref)
			}
			superseded[ref] = struct{}{}
		}
	}

	merged := unionFrameExcept(es.frame, child.frame, child.RefCols())
	for r := 0; r < es.frame.Rows(); r++ {
		merged.AppendRowFrom(es.frame, r)
		id, _ := es.frame.StringAt(r, s.EventID)
		if _, ok := superseded[id]; ok {
			_ = merged.SetCell(merged.Rows()-1, DeletedCol, true)
		}
	}
	for r := 0; r < child.frame.Rows(); r++ {
		merged.AppendRowFrom(child.frame, r)
		row := merged.Rows() - 1
		del, _ := child.frame.BoolAt(r, DeletedCol)
		if ref, ok := child.frame.StringAt(r, refCol); ok && parentDeleted[ref] {
			del = true
		}
		_ = merged.SetCell(row, DeletedCol, del)
	}
	es.frame = merged
	es.IndexEvents()
	return nil
}

// AddCustomCol declares a new custom column and attaches its data. The
// column length must equal the stream length; both schemas reflect it.
func (es *EventStream) AddCustomCol(name string, col Column) error {
	if es.schema.HasCustomCol(name) || es.frame.HasColumn(name) {
		return errors.Errorf("eventstream: column %q already exists", name)
	}
	if col.Len() != es.frame.Rows() {
		return errors.Errorf("eventstream: column %q has %d rows, stream has %d", name, col.Len(), es.frame.Rows())
	}
	if err := es.frame.AddColumn(col, true); err != nil {
		return err
	}
	es.schema.CustomCols = append(es.schema.CustomCols, name)
	es.rawSchema.CustomCols = append(es.rawSchema.CustomCols, RawCustomCol{RawDataCol: name, CustomCol: name})
	return nil
}

// unionFrame returns an empty frame whose columns are the union of both
// frames' columns, left frame order first.
func unionFrame(a, b *Frame) *Frame {
	return unionFrameExcept(a, b, nil)
}

func unionFrameExcept(a, b *Frame, skip []string) *Frame {
	skipSet := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		skipSet[s] = struct{}{}
	}
	cols := append([]ColumnSchema(nil), a.Schema().Columns...)
	have := make(map[string]struct{}, len(cols))
	for _, cs := range cols {
		have[cs.Name] = struct{}{}
	}
	for _, cs := range b.Schema().Columns {
		if _, ok := have[cs.Name]; ok {
			continue
		}
		if _, ok := skipSet[cs.Name]; ok {
			continue
		}
		cols = append(cols, cs)
		have[cs.Name] = struct{}{}
	}
	return NewFrame(FrameSchema{Columns: cols})
}

// fillNullCells copies cells of src row into dst row wherever dst is null
// and the column kinds match.
func fillNullCells(dst *Frame, dstRow int, src *Frame, srcRow int) {
	for _, cs := range dst.Schema().Columns {
		dc, _ := dst.ColumnByName(cs.Name)
		if !dc.IsNull(dstRow) {
			continue
		}
		sc, ok := src.ColumnByName(cs.Name)
		if !ok || sc.IsNull(srcRow) || sc.Kind() != dc.Kind() {
			continue
		}
		copyCellAt(dc, dstRow, sc, srcRow)
	}
}

func copyCellAt(dst Column, dstRow int, src Column, srcRow int) {
	switch d := dst.(type) {
	case *BoolColumn:
		v, _ := src.(*BoolColumn).Get(srcRow)
		d.Set(dstRow, v)
	case *IntColumn:
		v, _ := src.(*IntColumn).Get(srcRow)
		d.Set(dstRow, v)
	case *FloatColumn:
		v, _ := src.(*FloatColumn).Get(srcRow)
		d.Set(dstRow, v)
	case *StringColumn:
		v, _ := src.(*StringColumn).Get(srcRow)
		d.Set(dstRow, v)
	case *TimeColumn:
		v, _ := src.(*TimeColumn).Get(srcRow)
		d.Set(dstRow, v)
	}
}

// copyCell copies src cell srcRow into dst cell dstRow, stringifying when
// dst is a string column and src is not.
func copyCell(dst Column, dstRow int, src Column, srcRow int) {
	if dst.Kind() == src.Kind() {
		copyCellAt(dst, dstRow, src, srcRow)
		return
	}
	if d, ok := dst.(*StringColumn); ok {
		if v, ok := stringifyCell(src, srcRow); ok {
			d.Set(dstRow, v)
		}
	}
}

// cellString reads a cell as a string, stringifying numeric cells.
func cellString(f *Frame, row int, name string) (string, bool) {
	col, ok := f.ColumnByName(name)
	if !ok || col.IsNull(row) {
		return "", false
	}
	return stringifyCell(col, row)
}

func stringifyCell(col Column, row int) (string, bool) {
	switch c := col.(type) {
	case *StringColumn:
		v, ok := c.Get(row)
		return v, ok
	case *IntColumn:
		v, ok := c.Get(row)
		return strconv.FormatInt(v, 10), ok
	case *FloatColumn:
		v, ok := c.Get(row)
		return strconv.FormatFloat(v, 'g', -1, 64), ok
	case *BoolColumn:
		v, ok := c.Get(row)
		return strconv.FormatBool(v), ok
	case *TimeColumn:
		v, ok := c.Get(row)
		return v.Format(time.RFC3339), ok
	default:
		return "", false
	}
}

// cellTime reads a cell as a timestamp, parsing string cells with the
// recognised layouts.
func cellTime(f *Frame, row int, name string) (time.Time, bool) {
	col, ok := f.ColumnByName(name)
	if !ok || col.IsNull(row) {
		return time.Time{}, false
	}
	switch c := col.(type) {
	case *TimeColumn:
		return c.Get(row)
	case *StringColumn:
		v, _ := c.Get(row)
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, v); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	case *IntColumn:
		// unix seconds
		v, _ := c.Get(row)
		return time.Unix(v, 0).UTC(), true
	default:
		return time.Time{}, false
	}
}
