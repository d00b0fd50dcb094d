package jsonlio

import (
	"bufio"
	"encoding/json"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
	iox "github.com/retentioneering/retentioneering-go/pkg/io/ioutils"
)

type ReaderOptions struct {
	SampleRows int
}

type Reader struct {
	r    *bufio.Reader
	dec  *json.Decoder
	opt  ReaderOptions
	buf  []map[string]any
	keys []string
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Open opens a JSONL file (gzip-transparent) and returns a Reader.
func Open(path string, opt ReaderOptions) (*Reader, io.Closer, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, nil, err
	}
	br := bufio.NewReader(rc)
	return &Reader{r: br, dec: json.NewDecoder(br), opt: opt}, rc, nil
}

// InferSchema samples rows and determines column kinds. Keys come back
// in sorted order so the schema is stable across runs.
func (r *Reader) InferSchema() (es.FrameSchema, error) {
	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	dec := r.dec
	var sample []map[string]any
	keysSet := map[string]struct{}{}
	for len(sample) < max {
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			if err == io.EOF {
				break
			}
			return es.FrameSchema{}, err
		}
		sample = append(sample, m)
		for k := range m {
			keysSet[k] = struct{}{}
		}
	}
	r.buf = append(r.buf, sample...)
	r.keys = make([]string, 0, len(keysSet))
	for k := range keysSet {
		r.keys = append(r.keys, k)
	}
	sort.Strings(r.keys)
	kinds := inferKinds(sample, r.keys)
	schema := es.FrameSchema{Columns: make([]es.ColumnSchema, len(r.keys))}
	for i, k := range r.keys {
		schema.Columns[i] = es.ColumnSchema{Name: k, Type: kinds[i], Nullable: true}
	}
	return schema, nil
}

// ReadAll loads the rest of the file into a Frame.
func (r *Reader) ReadAll(schema es.FrameSchema) (*es.Frame, error) {
	f := es.NewFrame(schema)
	for len(r.buf) > 0 {
		m := r.buf[0]
		r.buf = r.buf[1:]
		f.AppendNullRow()
		setRowFromMap(f, f.Rows()-1, m)
	}
	dec := r.dec
	for {
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		f.AppendNullRow()
		setRowFromMap(f, f.Rows()-1, m)
	}
	return f, nil
}

func setRowFromMap(f *es.Frame, row int, m map[string]any) {
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
			case string:
				if x, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
					_ = f.SetCell(row, cs.Name, x)
				}
			}
		case es.KindInt:
			switch t := v.(type) {
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
			if t, ok := v.(string); ok {
				if ts, ok := parseTime(t); ok {
					_ = f.SetCell(row, cs.Name, ts)
				}
			}
		default:
			switch t := v.(type) {
			case string:
				_ = f.SetCell(row, cs.Name, t)
			default:
				b, _ := json.Marshal(t)
				_ = f.SetCell(row, cs.Name, string(b))
			}
		}
	}
}

func parseTime(v string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func inferKinds(sample []map[string]any, keys []string) []es.Kind {
	kinds := make([]es.Kind, len(keys))
	numre := regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)
	for i, k := range keys {
		nNum, nInt, nBool, nTime, nStr, seen := 0, 0, 0, 0, 0, 0
		for _, m := range sample {
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
			case bool:
				nBool++
			case string:
				s := strings.TrimSpace(t)
				if s == "" {
					seen--
					continue
				}
				if numre.MatchString(s) {
					nNum++
					if !strings.ContainsAny(s, ".eE") {
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
	return kinds
}
