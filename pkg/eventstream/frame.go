package eventstream

import (
	"time"

	"github.com/pkg/errors"
)

// Kind enumerates supported logical column types.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return "invalid"
	}
}

// ColumnSchema describes a single frame column.
type ColumnSchema struct {
	Name     string
	Type     Kind
	Nullable bool
}

// FrameSchema describes the logical shape of a frame.
type FrameSchema struct {
	Columns []ColumnSchema
}

// Column is a typed, nullable column abstraction.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsNull(i int) bool
	SetNull(i int)
	AppendNull()
	// appendFrom appends row i of src (which must share the kind).
	appendFrom(src Column, i int)
	clone() Column
}

type BoolColumn struct {
	name  string
	data  []bool
	nulls []bool
}

func NewBoolColumn(name string, n int) *BoolColumn {
	return &BoolColumn{name: name, data: make([]bool, n), nulls: make([]bool, n)}
}
func (c *BoolColumn) Name() string           { return c.name }
func (c *BoolColumn) Kind() Kind             { return KindBool }
func (c *BoolColumn) Len() int               { return len(c.data) }
func (c *BoolColumn) IsNull(i int) bool      { return c.nulls[i] }
func (c *BoolColumn) SetNull(i int)          { c.nulls[i] = true }
func (c *BoolColumn) Get(i int) (bool, bool) { return c.data[i], !c.nulls[i] }
func (c *BoolColumn) Set(i int, v bool)      { c.data[i] = v; c.nulls[i] = false }
func (c *BoolColumn) AppendNull()            { c.data = append(c.data, false); c.nulls = append(c.nulls, true) }
func (c *BoolColumn) Append(v bool)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *BoolColumn) appendFrom(src Column, i int) {
	s := src.(*BoolColumn)
	c.data = append(c.data, s.data[i])
	c.nulls = append(c.nulls, s.nulls[i])
}
func (c *BoolColumn) clone() Column {
	return &BoolColumn{name: c.name, data: append([]bool(nil), c.data...), nulls: append([]bool(nil), c.nulls...)}
}

type IntColumn struct {
	name  string
	data  []int64
	nulls []bool
}

func NewIntColumn(name string, n int) *IntColumn {
	return &IntColumn{name: name, data: make([]int64, n), nulls: make([]bool, n)}
}
func (c *IntColumn) Name() string            { return c.name }
func (c *IntColumn) Kind() Kind              { return KindInt }
func (c *IntColumn) Len() int                { return len(c.data) }
func (c *IntColumn) IsNull(i int) bool       { return c.nulls[i] }
func (c *IntColumn) SetNull(i int)           { c.nulls[i] = true }
func (c *IntColumn) Get(i int) (int64, bool) { return c.data[i], !c.nulls[i] }
func (c *IntColumn) Set(i int, v int64)      { c.data[i] = v; c.nulls[i] = false }
func (c *IntColumn) AppendNull()             { c.data = append(c.data, 0); c.nulls = append(c.nulls, true) }
func (c *IntColumn) Append(v int64)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *IntColumn) appendFrom(src Column, i int) {
	s := src.(*IntColumn)
	c.data = append(c.data, s.data[i])
	c.nulls = append(c.nulls, s.nulls[i])
}
func (c *IntColumn) clone() Column {
	return &IntColumn{name: c.name, data: append([]int64(nil), c.data...), nulls: append([]bool(nil), c.nulls...)}
}

type FloatColumn struct {
	name  string
	data  []float64
	nulls []bool
}

func NewFloatColumn(name string, n int) *FloatColumn {
	return &FloatColumn{name: name, data: make([]float64, n), nulls: make([]bool, n)}
}
func (c *FloatColumn) Name() string              { return c.name }
func (c *FloatColumn) Kind() Kind                { return KindFloat }
func (c *FloatColumn) Len() int                  { return len(c.data) }
func (c *FloatColumn) IsNull(i int) bool         { return c.nulls[i] }
func (c *FloatColumn) SetNull(i int)             { c.nulls[i] = true }
func (c *FloatColumn) Get(i int) (float64, bool) { return c.data[i], !c.nulls[i] }
func (c *FloatColumn) Set(i int, v float64)      { c.data[i] = v; c.nulls[i] = false }
func (c *FloatColumn) AppendNull()               { c.data = append(c.data, 0); c.nulls = append(c.nulls, true) }
func (c *FloatColumn) Append(v float64)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *FloatColumn) appendFrom(src Column, i int) {
	s := src.(*FloatColumn)
	c.data = append(c.data, s.data[i])
	c.nulls = append(c.nulls, s.nulls[i])
}
func (c *FloatColumn) clone() Column {
	return &FloatColumn{name: c.name, data: append([]float64(nil), c.data...), nulls: append([]bool(nil), c.nulls...)}
}

type StringColumn struct {
	name  string
	data  []string
	nulls []bool
}

func NewStringColumn(name string, n int) *StringColumn {
	return &StringColumn{name: name, data: make([]string, n), nulls: make([]bool, n)}
}
func (c *StringColumn) Name() string             { return c.name }
func (c *StringColumn) Kind() Kind               { return KindString }
func (c *StringColumn) Len() int                 { return len(c.data) }
func (c *StringColumn) IsNull(i int) bool        { return c.nulls[i] }
func (c *StringColumn) SetNull(i int)            { c.nulls[i] = true }
func (c *StringColumn) Get(i int) (string, bool) { return c.data[i], !c.nulls[i] }
func (c *StringColumn) Set(i int, v string)      { c.data[i] = v; c.nulls[i] = false }
func (c *StringColumn) AppendNull()              { c.data = append(c.data, ""); c.nulls = append(c.nulls, true) }
func (c *StringColumn) Append(v string)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *StringColumn) appendFrom(src Column, i int) {
	s := src.(*StringColumn)
	c.data = append(c.data, s.data[i])
	c.nulls = append(c.nulls, s.nulls[i])
}
func (c *StringColumn) clone() Column {
	return &StringColumn{name: c.name, data: append([]string(nil), c.data...), nulls: append([]bool(nil), c.nulls...)}
}

type TimeColumn struct {
	name  string
	data  []time.Time
	nulls []bool
}

func NewTimeColumn(name string, n int) *TimeColumn {
	return &TimeColumn{name: name, data: make([]time.Time, n), nulls: make([]bool, n)}
}
func (c *TimeColumn) Name() string                { return c.name }
func (c *TimeColumn) Kind() Kind                  { return KindTime }
func (c *TimeColumn) Len() int                    { return len(c.data) }
func (c *TimeColumn) IsNull(i int) bool           { return c.nulls[i] }
func (c *TimeColumn) SetNull(i int)               { c.nulls[i] = true }
func (c *TimeColumn) Get(i int) (time.Time, bool) { return c.data[i], !c.nulls[i] }
func (c *TimeColumn) Set(i int, v time.Time)      { c.data[i] = v; c.nulls[i] = false }
func (c *TimeColumn) AppendNull() {
	c.data = append(c.data, time.Time{})
	c.nulls = append(c.nulls, true)
}
func (c *TimeColumn) Append(v time.Time) {
	c.data = append(c.data, v)
	c.nulls = append(c.nulls, false)
}
func (c *TimeColumn) appendFrom(src Column, i int) {
	s := src.(*TimeColumn)
	c.data = append(c.data, s.data[i])
	c.nulls = append(c.nulls, s.nulls[i])
}
func (c *TimeColumn) clone() Column {
	return &TimeColumn{name: c.name, data: append([]time.Time(nil), c.data...), nulls: append([]bool(nil), c.nulls...)}
}

func newColumn(cs ColumnSchema, n int) Column {
	switch cs.Type {
	case KindBool:
		return NewBoolColumn(cs.Name, n)
	case KindInt:
		return NewIntColumn(cs.Name, n)
	case KindFloat:
		return NewFloatColumn(cs.Name, n)
	case KindString:
		return NewStringColumn(cs.Name, n)
	case KindTime:
		return NewTimeColumn(cs.Name, n)
	default:
		panic("invalid column kind")
	}
}

// Frame is a columnar container for tabular event data.
type Frame struct {
	schema FrameSchema
	cols   []Column
	index  map[string]int // name -> col index
	nrows  int
}

func NewFrame(s FrameSchema) *Frame {
	f := &Frame{schema: s, cols: make([]Column, len(s.Columns)), index: make(map[string]int)}
	for i, cs := range s.Columns {
		f.cols[i] = newColumn(cs, 0)
		f.index[cs.Name] = i
	}
	return f
}

func (f *Frame) Schema() FrameSchema { return f.schema }
func (f *Frame) Rows() int           { return f.nrows }
func (f *Frame) Cols() int           { return len(f.cols) }

func (f *Frame) ColumnByName(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// ColumnNames returns column names in schema order.
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.schema.Columns))
	for i, cs := range f.schema.Columns {
		names[i] = cs.Name
	}
	return names
}

// AddColumn attaches col to the frame. The column length must match the
// current row count unless the frame is empty.
func (f *Frame) AddColumn(col Column, nullable bool) error {
	if _, ok := f.index[col.Name()]; ok {
		return errors.Errorf("frame: column %q already exists", col.Name())
	}
	if col.Len() != f.nrows {
		return errors.Errorf("frame: column %q has %d rows, frame has %d", col.Name(), col.Len(), f.nrows)
	}
	f.schema.Columns = append(f.schema.Columns, ColumnSchema{Name: col.Name(), Type: col.Kind(), Nullable: nullable})
	f.cols = append(f.cols, col)
	f.index[col.Name()] = len(f.cols) - 1
	return nil
}

// AppendNullRow appends a row with all-null values.
func (f *Frame) AppendNullRow() {
	for _, c := range f.cols {
		c.AppendNull()
	}
	f.nrows++
}

// AppendRowFrom appends row i of src, matching columns by name. Columns
// absent from src are appended null.
func (f *Frame) AppendRowFrom(src *Frame, i int) {
	for ci, cs := range f.schema.Columns {
		sc, ok := src.ColumnByName(cs.Name)
		if !ok || sc.Kind() != cs.Type {
			f.cols[ci].AppendNull()
			continue
		}
		f.cols[ci].appendFrom(sc, i)
	}
	f.nrows++
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		schema: FrameSchema{Columns: append([]ColumnSchema(nil), f.schema.Columns...)},
		cols:   make([]Column, len(f.cols)),
		index:  make(map[string]int, len(f.index)),
		nrows:  f.nrows,
	}
	for i, c := range f.cols {
		out.cols[i] = c.clone()
	}
	for k, v := range f.index {
		out.index[k] = v
	}
	return out
}

// Select returns a new frame holding the given rows in the given order.
func (f *Frame) Select(rows []int) *Frame {
	out := NewFrame(FrameSchema{Columns: append([]ColumnSchema(nil), f.schema.Columns...)})
	for _, r := range rows {
		out.AppendRowFrom(f, r)
	}
	return out
}

// SetCell sets a single cell value by column name (row must exist).
func (f *Frame) SetCell(row int, name string, v any) error {
	i, ok := f.index[name]
	if !ok {
		return errors.Errorf("frame: unknown column %q", name)
	}
	c := f.cols[i]
	if v == nil {
		c.SetNull(row)
		return nil
	}
	switch col := c.(type) {
	case *BoolColumn:
		b, ok := v.(bool)
		if !ok {
			return errors.Errorf("frame: column %q expects bool", name)
		}
		col.Set(row, b)
	case *IntColumn:
		switch t := v.(type) {
		case int:
			col.Set(row, int64(t))
		case int64:
			col.Set(row, t)
		case float64:
			col.Set(row, int64(t))
		default:
			return errors.Errorf("frame: column %q expects int", name)
		}
	case *FloatColumn:
		switch t := v.(type) {
		case float32:
			col.Set(row, float64(t))
		case float64:
			col.Set(row, t)
		case int:
			col.Set(row, float64(t))
		case int64:
			col.Set(row, float64(t))
		default:
			return errors.Errorf("frame: column %q expects float64", name)
		}
	case *StringColumn:
		s, ok := v.(string)
		if !ok {
			return errors.Errorf("frame: column %q expects string", name)
		}
		col.Set(row, s)
	case *TimeColumn:
		t, ok := v.(time.Time)
		if !ok {
			return errors.Errorf("frame: column %q expects time.Time", name)
		}
		col.Set(row, t)
	default:
		return errors.Errorf("frame: unknown column kind")
	}
	return nil
}

// StringAt returns the string cell at (row, name); ok is false for nulls
// and missing or non-string columns.
func (f *Frame) StringAt(row int, name string) (string, bool) {
	col, ok := f.ColumnByName(name)
	if !ok {
		return "", false
	}
	sc, ok := col.(*StringColumn)
	if !ok {
		return "", false
	}
	return sc.Get(row)
}

// TimeAt returns the time cell at (row, name).
func (f *Frame) TimeAt(row int, name string) (time.Time, bool) {
	col, ok := f.ColumnByName(name)
	if !ok {
		return time.Time{}, false
	}
	tc, ok := col.(*TimeColumn)
	if !ok {
		return time.Time{}, false
	}
	return tc.Get(row)
}

// BoolAt returns the bool cell at (row, name).
func (f *Frame) BoolAt(row int, name string) (bool, bool) {
	col, ok := f.ColumnByName(name)
	if !ok {
		return false, false
	}
	bc, ok := col.(*BoolColumn)
	if !ok {
		return false, false
	}
	return bc.Get(row)
}

// FloatAt returns the float cell at (row, name).
func (f *Frame) FloatAt(row int, name string) (float64, bool) {
	col, ok := f.ColumnByName(name)
	if !ok {
		return 0, false
	}
	fc, ok := col.(*FloatColumn)
	if !ok {
		return 0, false
	}
	return fc.Get(row)
}

// IntAt returns the int cell at (row, name).
func (f *Frame) IntAt(row int, name string) (int64, bool) {
	col, ok := f.ColumnByName(name)
	if !ok {
		return 0, false
	}
	ic, ok := col.(*IntColumn)
	if !ok {
		return 0, false
	}
	return ic.Get(row)
}
