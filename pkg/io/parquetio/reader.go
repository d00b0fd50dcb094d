package parquetio

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	parquet "github.com/segmentio/parquet-go"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

type Reader struct {
	file   *os.File
	reader *parquet.GenericReader[map[string]any]
	schema es.FrameSchema
}

// OpenReader opens a parquet file and infers a frame schema from the
// first sampleRows rows.
func OpenReader(path string, sampleRows int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := parquet.NewGenericReader[map[string]any](f)
	if sampleRows <= 0 {
		sampleRows = 100
	}
	rows := make([]map[string]any, sampleRows)
	n, err := r.Read(rows)
	if err != nil && !strings.Contains(err.Error(), "EOF") {
		_ = r.Close()
		_ = f.Close()
		return nil, err
	}
	rows = rows[:n]
	schema := inferSchema(rows)
	// the generic reader cannot unread, so reopen for the full pass
	if err := r.Close(); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.Seek(0, 0); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Reader{file: f, reader: parquet.NewGenericReader[map[string]any](f), schema: schema}, nil
}

func (r *Reader) Close() error {
	_ = r.reader.Close()
	return r.file.Close()
}

func (r *Reader) Schema() es.FrameSchema { return r.schema }

func (r *Reader) ReadAll() (*es.Frame, error) {
	f := es.NewFrame(r.schema)
	buf := make([]map[string]any, 1024)
	for {
		n, err := r.reader.Read(buf)
		for i := 0; i < n; i++ {
			f.AppendNullRow()
			setRow(f, f.Rows()-1, buf[i])
		}
		if err != nil {
			if strings.Contains(err.Error(), "EOF") {
				break
			}
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	return f, nil
}

func inferSchema(rows []map[string]any) es.FrameSchema {
	keysSet := map[string]struct{}{}
	for _, m := range rows {
		for k := range m {
			keysSet[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(keysSet))
	for k := range keysSet {
		keys = append(keys, k)
	}
	kinds := make([]es.Kind, len(keys))
	for i, k := range keys {
		nNum, nInt, nBool, nTime, nStr, seen := 0, 0, 0, 0, 0, 0
		for _, m := range rows {
			v, ok := m[k]
			if !ok || v == nil {
				continue
			}
			seen++
			switch t := v.(type) {
			case float64:
				nNum++
				if float64(int64(t)) == t {
					nInt++
				}
			case int, int32, int64:
				nNum++
				nInt++
			case bool:
				nBool++
			case time.Time:
				nTime++
			case string:
				s := strings.TrimSpace(t)
				if s == "" {
					seen--
					continue
				}
				if x, err := strconv.ParseFloat(s, 64); err == nil {
					nNum++
					if float64(int64(x)) == x {
						nInt++
					}
				} else if _, ok := parseTime(s); ok {
					nTime++
				} else {
					nStr++
				}
			default:
				nStr++
			}
		}
		switch {
		case seen > 0 && nTime == seen:
			kinds[i] = es.KindTime
		case nBool > nNum && nBool >= nStr:
			kinds[i] = es.KindBool
		case nNum > nStr:
			if nInt == nNum {
				kinds[i] = es.KindInt
			} else {
				kinds[i] = es.KindFloat
			}
		default:
			kinds[i] = es.KindString
		}
	}
	schema := es.FrameSchema{Columns: make([]es.ColumnSchema, len(keys))}
	for i, k := range keys {
		schema.Columns[i] = es.ColumnSchema{Name: k, Type: kinds[i], Nullable: true}
	}
	return schema
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(v string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func setRow(f *es.Frame, row int, m map[string]any) {
	for _, cs := range f.Schema().Columns {
		v, ok := m[cs.Name]
		if !ok || v == nil {
			continue
		}
		switch cs.Type {
		case es.KindFloat:
			switch t := v.(type) {
			case float64:
				_ = f.SetCell(row, cs.Name, t)
			case int:
				_ = f.SetCell(row, cs.Name, float64(t))
			case int64:
				_ = f.SetCell(row, cs.Name, float64(t))
			case string:
				if x, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
					_ = f.SetCell(row, cs.Name, x)
				}
			}
		case es.KindInt:
			switch t := v.(type) {
			case int64:
				_ = f.SetCell(row, cs.Name, t)
			case int32:
				_ = f.SetCell(row, cs.Name, int64(t))
			case int:
				_ = f.SetCell(row, cs.Name, int64(t))
			case float64:
				_ = f.SetCell(row, cs.Name, int64(t))
			case string:
				if x, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
					_ = f.SetCell(row, cs.Name, x)
				}
			}
		case es.KindBool:
			switch t := v.(type) {
			case bool:
				_ = f.SetCell(row, cs.Name, t)
			case string:
				if x, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(t))); err == nil {
					_ = f.SetCell(row, cs.Name, x)
				}
			}
		case es.KindTime:
			switch t := v.(type) {
			case time.Time:
				_ = f.SetCell(row, cs.Name, t)
			case string:
				if ts, ok := parseTime(strings.TrimSpace(t)); ok {
					_ = f.SetCell(row, cs.Name, ts)
				}
			}
		default:
			switch t := v.(type) {
			case string:
				_ = f.SetCell(row, cs.Name, t)
			default:
				_ = f.SetCell(row, cs.Name, fmt.Sprintf("%v", t))
			}
		}
	}
}
