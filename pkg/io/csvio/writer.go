package csvio

import (
	"encoding/csv"
	"strconv"
	"time"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
	iox "github.com/retentioneering/retentioneering-go/pkg/io/ioutils"
)

type WriterOptions struct {
	Delimiter rune // default ','
}

// WriteAll writes a Frame to a CSV file (gzip-transparent) with headers.
func WriteAll(path string, f *es.Frame, opt WriterOptions) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	w := csv.NewWriter(out)
	if opt.Delimiter != 0 {
		w.Comma = opt.Delimiter
	}

	hdr := f.ColumnNames()
	if err := w.Write(hdr); err != nil {
		return err
	}

	for r := 0; r < f.Rows(); r++ {
		if err := w.Write(formatRow(f, f.Schema(), r)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatRow(f *es.Frame, schema es.FrameSchema, r int) []string {
	row := make([]string, len(schema.Columns))
	for c, cs := range schema.Columns {
		col, ok := f.ColumnByName(cs.Name)
		if !ok {
			continue
		}
		switch cs.Type {
		case es.KindFloat:
			if v, ok := col.(*es.FloatColumn).Get(r); ok {
				row[c] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		case es.KindInt:
			if v, ok := col.(*es.IntColumn).Get(r); ok {
				row[c] = strconv.FormatInt(v, 10)
			}
		case es.KindBool:
			if v, ok := col.(*es.BoolColumn).Get(r); ok {
				row[c] = strconv.FormatBool(v)
			}
		case es.KindString:
			if v, ok := col.(*es.StringColumn).Get(r); ok {
				row[c] = v
			}
		case es.KindTime:
			if v, ok := col.(*es.TimeColumn).Get(r); ok {
				row[c] = v.Format(time.RFC3339Nano)
			}
		}
	}
	return row
}
