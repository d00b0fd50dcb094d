package jsonlio

import (
	"bufio"
	"encoding/json"
	"io"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
	iox "github.com/retentioneering/retentioneering-go/pkg/io/ioutils"
)

// StreamReader reads JSONL into Frame chunks of up to chunkSize rows.
// Schema inference consumes the first sample; buffered rows are replayed
// before further decoding, so no seek is needed and gzip inputs work.
type StreamReader struct {
	r         *Reader
	closer    io.Closer
	schema    es.FrameSchema
	chunkSize int
}

func NewStreamReader(path string, chunkSize int) (*StreamReader, error) {
	rr, closer, err := Open(path, ReaderOptions{})
	if err != nil {
		return nil, err
	}
	schema, err := rr.InferSchema()
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	return &StreamReader{r: rr, closer: closer, schema: schema, chunkSize: chunkSize}, nil
}

func (s *StreamReader) Next() (*es.Frame, error) {
	if s.chunkSize <= 0 {
		s.chunkSize = 1024
	}
	f := es.NewFrame(s.schema)
	for len(s.r.buf) > 0 && f.Rows() < s.chunkSize {
		m := s.r.buf[0]
		s.r.buf = s.r.buf[1:]
		f.AppendNullRow()
		setRowFromMap(f, f.Rows()-1, m)
	}
	for f.Rows() < s.chunkSize {
		var m map[string]any
		if err := s.r.dec.Decode(&m); err != nil {
			if err == io.EOF {
				if f.Rows() == 0 {
					return nil, io.EOF
				}
				return f, nil
			}
			return nil, err
		}
		f.AppendNullRow()
		setRowFromMap(f, f.Rows()-1, m)
	}
	return f, nil
}

func (s *StreamReader) Schema() es.FrameSchema { return s.schema }

func (s *StreamReader) Close() error { return s.closer.Close() }

// StreamWriter appends frames to a JSONL file.
type StreamWriter struct {
	enc *json.Encoder
	w   *bufio.Writer
	out io.WriteCloser
}

func NewStreamWriter(path string) (*StreamWriter, error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriter(out)
	return &StreamWriter{enc: json.NewEncoder(w), w: w, out: out}, nil
}

func (s *StreamWriter) Write(f *es.Frame) error {
	for r := 0; r < f.Rows(); r++ {
		if err := s.enc.Encode(rowToMap(f, r)); err != nil {
			return err
		}
	}
	return s.w.Flush()
}

func (s *StreamWriter) Close() error {
	if err := s.w.Flush(); err != nil {
		_ = s.out.Close()
		return err
	}
	return s.out.Close()
}
