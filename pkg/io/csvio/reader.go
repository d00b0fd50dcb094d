package csvio

import (
	"bufio"
	"encoding/csv"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
	iox "github.com/retentioneering/retentioneering-go/pkg/io/ioutils"
)

type ReaderOptions struct {
	HasHeader  bool
	Delimiter  rune // 0 = sniff, default ','
	SampleRows int  // for inference; default 100
	Strict     bool // if true, error on short/long records
}

type Reader struct {
	r   *csv.Reader
	opt ReaderOptions
	buf [][]string
	// repair/warning counters
	shortRecords int
	longRecords  int
}

// Timestamp layouts tried during inference and parsing, most specific
// first.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Open opens a CSV file (gzip-transparent) and returns a Reader.
func Open(path string, opt ReaderOptions) (*Reader, io.Closer, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, nil, err
	}
	rr := csv.NewReader(rc)
	if opt.Delimiter == 0 {
		if d, lazy, err := sniffDelimiterAndQuotes(path); err == nil && d != 0 {
			rr.Comma = d
			rr.LazyQuotes = lazy
		}
	} else {
		rr.Comma = opt.Delimiter
	}
	return &Reader{r: rr, opt: opt}, rc, nil
}

// NewReaderFrom constructs a Reader from an arbitrary io.Reader (stdin, pipe).
func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	rr := csv.NewReader(r)
	if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	}
	return &Reader{r: rr, opt: opt}
}

// InferSchema reads the header (if present) and samples rows to
// determine column kinds. Columns whose sampled values all parse as
// timestamps come back as KindTime.
func (r *Reader) InferSchema() (es.FrameSchema, []string, error) {
	var names []string
	rec, err := r.r.Read()
	if err != nil {
		return es.FrameSchema{}, nil, err
	}
	if r.opt.HasHeader {
		names = make([]string, len(rec))
		for i := range rec {
			names[i] = strings.ToValidUTF8(rec[i], "?")
		}
		if len(names) > 0 {
			names[0] = strings.TrimPrefix(names[0], "\uFEFF")
		}
		rec, err = r.r.Read()
		if err != nil {
			return es.FrameSchema{}, nil, err
		}
	} else {
		names = make([]string, len(rec))
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
	}

	sample := [][]string{append([]string(nil), rec...)}
	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	for i := 1; i < max; i++ {
		rr, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return es.FrameSchema{}, nil, err
		}
		sample = append(sample, append([]string(nil), rr...))
	}

	kinds := inferKinds(sample)
	schema := es.FrameSchema{Columns: make([]es.ColumnSchema, len(names))}
	for i := range names {
		schema.Columns[i] = es.ColumnSchema{Name: names[i], Type: kinds[i], Nullable: true}
	}
	// retain sampled rows for the subsequent ReadAll
	r.buf = append(r.buf, sample...)
	return schema, names, nil
}

// ReadAll loads the rest of the CSV into a Frame.
func (r *Reader) ReadAll(schema es.FrameSchema) (*es.Frame, error) {
	f := es.NewFrame(schema)
	for len(r.buf) > 0 {
		rec := r.buf[0]
		r.buf = r.buf[1:]
		if err := r.appendRecord(f, schema, rec); err != nil {
			return nil, err
		}
	}
	for {
		rec, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := r.appendRecord(f, schema, rec); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (r *Reader) appendRecord(f *es.Frame, schema es.FrameSchema, rec []string) error {
	f.AppendNullRow()
	row := f.Rows() - 1
	if len(rec) > len(schema.Columns) {
		r.longRecords++
		if r.opt.Strict {
			return errors.Errorf("csv: long record: need %d fields, got %d", len(schema.Columns), len(rec))
		}
	}
	for i, cs := range schema.Columns {
		if i >= len(rec) {
			r.shortRecords++
			if r.opt.Strict {
				return errors.Errorf("csv: short record: need %d fields, got %d", len(schema.Columns), len(rec))
			}
			continue
		}
		val := strings.ToValidUTF8(strings.TrimSpace(rec[i]), "?")
		if val == "" {
			continue
		}
		switch cs.Type {
		case es.KindFloat:
			if x, err := strconv.ParseFloat(val, 64); err == nil {
				_ = f.SetCell(row, cs.Name, x)
			}
		case es.KindInt:
			if x, err := strconv.ParseInt(val, 10, 64); err == nil {
				_ = f.SetCell(row, cs.Name, x)
			}
		case es.KindBool:
			if x, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
				_ = f.SetCell(row, cs.Name, x)
			}
		case es.KindTime:
			if ts, ok := parseTime(val); ok {
				_ = f.SetCell(row, cs.Name, ts)
			}
		default:
			_ = f.SetCell(row, cs.Name, val)
		}
	}
	return nil
}

func parseTime(v string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func inferKinds(rows [][]string) []es.Kind {
	if len(rows) == 0 {
		return nil
	}
	ncol := len(rows[0])
	kinds := make([]es.Kind, ncol)
	numre := regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)
	for c := 0; c < ncol; c++ {
		num, integer, times, str, seen := 0, 0, 0, 0, 0
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[c])
			if v == "" {
				continue
			}
			seen++
			if numre.MatchString(v) {
				num++
				if !strings.ContainsAny(v, ".eE") {
					integer++
				}
				continue
			}
			if _, ok := parseTime(v); ok {
				times++
				continue
			}
			lv := strings.ToLower(v)
			if lv == "true" || lv == "false" {
				continue
			}
			str++
		}
		switch {
		case seen > 0 && times == seen:
			kinds[c] = es.KindTime
		case num > str:
			if integer == num {
				kinds[c] = es.KindInt
			} else {
				kinds[c] = es.KindFloat
			}
		default:
			kinds[c] = es.KindString
		}
	}
	return kinds
}

func sniffDelimiterAndQuotes(path string) (rune, bool, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = rc.Close() }()
	br := bufio.NewReader(rc)
	sample, _ := br.Peek(4096)
	if len(sample) == 0 {
		return ',', false, nil
	}
	candidates := []byte{',', '\t', ';', '|'}
	best := byte(',')
	bestCount := -1
	for _, c := range candidates {
		cnt := 0
		for _, b := range sample {
			if b == c {
				cnt++
			}
		}
		if cnt > bestCount {
			bestCount = cnt
			best = c
		}
	}
	quoteCount := 0
	for _, b := range sample {
		if b == '"' {
			quoteCount++
		}
	}
	lazy := quoteCount%2 != 0 || quoteCount > 0
	return rune(best), lazy, nil
}

// Warnings returns a summary of any record-length mismatches seen.
func (r *Reader) Warnings() string {
	if r.shortRecords == 0 && r.longRecords == 0 {
		return ""
	}
	var parts []string
	if r.shortRecords > 0 {
		parts = append(parts, "short_records="+strconv.Itoa(r.shortRecords))
	}
	if r.longRecords > 0 {
		parts = append(parts, "long_records="+strconv.Itoa(r.longRecords))
	}
	return strings.Join(parts, ", ")
}

// ReadFile loads a whole CSV file with schema inference in one call.
func ReadFile(path string, opt ReaderOptions) (*es.Frame, error) {
	r, closer, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closer.Close() }()
	schema, _, err := r.InferSchema()
	if err != nil {
		return nil, err
	}
	return r.ReadAll(schema)
}
