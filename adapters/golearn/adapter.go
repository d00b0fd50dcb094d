package golearn

// Package golearn converts between eventstream frames and
// github.com/sjwhitworth/golearn/base DenseInstances, so path-level
// feature frames (edge weights, step counts) can feed golearn
// clustering and classification.

import (
	"github.com/sjwhitworth/golearn/base"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

// ToDenseInstances converts a Frame into golearn DenseInstances. Numeric
// columns become float attributes, everything else categorical. The last
// column is registered as the class attribute.
func ToDenseInstances(f *es.Frame) (*base.DenseInstances, error) {
	attrs := make([]base.Attribute, len(f.Schema().Columns))
	for i, cs := range f.Schema().Columns {
		switch cs.Type {
		case es.KindFloat, es.KindInt:
			attrs[i] = base.NewFloatAttribute(cs.Name)
		default:
			ca := new(base.CategoricalAttribute)
			ca.SetName(cs.Name)
			attrs[i] = ca
		}
	}
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		specs[i] = inst.AddAttribute(a)
	}
	if err := inst.Extend(f.Rows()); err != nil {
		return nil, err
	}

	for r := 0; r < f.Rows(); r++ {
		for c, cs := range f.Schema().Columns {
			col, _ := f.ColumnByName(cs.Name)
			switch cs.Type {
			case es.KindFloat:
				if v, ok := col.(*es.FloatColumn).Get(r); ok {
					inst.Set(specs[c], r, base.PackFloatToBytes(v))
				}
			case es.KindInt:
				if v, ok := col.(*es.IntColumn).Get(r); ok {
					inst.Set(specs[c], r, base.PackFloatToBytes(float64(v)))
				}
			default:
				if v, ok := col.(*es.StringColumn).Get(r); ok {
					inst.Set(specs[c], r, base.Attribute.GetSysValFromString(attrs[c], v))
				}
			}
		}
	}
	if len(attrs) > 0 {
		if err := inst.AddClassAttribute(attrs[len(attrs)-1]); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// FromDenseInstances converts golearn DenseInstances into a Frame.
func FromDenseInstances(inst *base.DenseInstances) (*es.Frame, error) {
	attrs := inst.AllAttributes()
	schema := es.FrameSchema{Columns: make([]es.ColumnSchema, len(attrs))}
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		k := es.KindString
		if a.GetType() == 1 { // float in golearn
			k = es.KindFloat
		}
		schema.Columns[i] = es.ColumnSchema{Name: a.GetName(), Type: k, Nullable: true}
		spec, _ := inst.GetAttribute(a)
		specs[i] = spec
	}
	f := es.NewFrame(schema)
	_, nrows := inst.Size()
	for r := 0; r < nrows; r++ {
		f.AppendNullRow()
		for c, cs := range schema.Columns {
			switch cs.Type {
			case es.KindFloat:
				v := base.UnpackBytesToFloat(inst.Get(specs[c], r))
				_ = f.SetCell(r, cs.Name, v)
			default:
				v := base.Attribute.GetStringFromSysVal(specs[c].GetAttribute(), inst.Get(specs[c], r))
				_ = f.SetCell(r, cs.Name, v)
			}
		}
	}
	return f, nil
}
