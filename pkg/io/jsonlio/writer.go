package jsonlio

import (
	"bufio"
	"encoding/json"
	"time"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
	iox "github.com/retentioneering/retentioneering-go/pkg/io/ioutils"
)

// WriteAll writes a Frame to a JSONL file (gzip-transparent), one object
// per row. Null cells are omitted.
func WriteAll(path string, f *es.Frame) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)
	for r := 0; r < f.Rows(); r++ {
		if err := enc.Encode(rowToMap(f, r)); err != nil {
			return err
		}
	}
	return w.Flush()
}

func rowToMap(f *es.Frame, r int) map[string]any {
	m := map[string]any{}
	for _, cs := range f.Schema().Columns {
		col, _ := f.ColumnByName(cs.Name)
		switch cs.Type {
		case es.KindFloat:
			if v, ok := col.(*es.FloatColumn).Get(r); ok {
				m[cs.Name] = v
			}
		case es.KindInt:
			if v, ok := col.(*es.IntColumn).Get(r); ok {
				m[cs.Name] = v
			}
		case es.KindBool:
			if v, ok := col.(*es.BoolColumn).Get(r); ok {
				m[cs.Name] = v
			}
		case es.KindString:
			if v, ok := col.(*es.StringColumn).Get(r); ok {
				m[cs.Name] = v
			}
		case es.KindTime:
			if v, ok := col.(*es.TimeColumn).Get(r); ok {
				m[cs.Name] = v.Format(time.RFC3339Nano)
			}
		}
	}
	return m
}
