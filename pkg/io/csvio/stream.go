package csvio

import (
	"encoding/csv"
	"io"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
	iox "github.com/retentioneering/retentioneering-go/pkg/io/ioutils"
)

// StreamReader reads CSV into Frame chunks of up to ChunkSize rows.
type StreamReader struct {
	r         *Reader
	closer    io.Closer
	schema    es.FrameSchema
	chunkSize int
}

// NewStreamReader opens the file, infers schema, and returns a StreamReader.
func NewStreamReader(path string, opt ReaderOptions, chunkSize int) (*StreamReader, error) {
	rr, closer, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	schema, _, err := rr.InferSchema()
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	return &StreamReader{r: rr, closer: closer, schema: schema, chunkSize: chunkSize}, nil
}

// Next returns the next chunk frame or io.EOF when complete.
func (s *StreamReader) Next() (*es.Frame, error) {
	if s.chunkSize <= 0 {
		s.chunkSize = 1024
	}
	f := es.NewFrame(s.schema)
	for len(s.r.buf) > 0 && f.Rows() < s.chunkSize {
		rec := s.r.buf[0]
		s.r.buf = s.r.buf[1:]
		if err := s.r.appendRecord(f, s.schema, rec); err != nil {
			return nil, err
		}
	}
	for f.Rows() < s.chunkSize {
		rec, err := s.r.r.Read()
		if err == io.EOF {
			if f.Rows() == 0 {
				return nil, io.EOF
			}
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		if err := s.r.appendRecord(f, s.schema, rec); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (s *StreamReader) Schema() es.FrameSchema { return s.schema }

func (s *StreamReader) Close() error { return s.closer.Close() }

// StreamWriter appends frames to a CSV file with a header (written once).
type StreamWriter struct {
	w           *csv.Writer
	out         io.WriteCloser
	wroteHeader bool
	schema      es.FrameSchema
}

func NewStreamWriter(path string, schema es.FrameSchema, opt WriterOptions) (*StreamWriter, error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(out)
	if opt.Delimiter != 0 {
		w.Comma = opt.Delimiter
	}
	return &StreamWriter{w: w, out: out, schema: schema}, nil
}

func (s *StreamWriter) Write(fr *es.Frame) error {
	if !s.wroteHeader {
		hdr := make([]string, len(s.schema.Columns))
		for i, cs := range s.schema.Columns {
			hdr[i] = cs.Name
		}
		if err := s.w.Write(hdr); err != nil {
			return err
		}
		s.wroteHeader = true
	}
	for r := 0; r < fr.Rows(); r++ {
		if err := s.w.Write(formatRow(fr, s.schema, r)); err != nil {
			return err
		}
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *StreamWriter) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = s.out.Close()
		return err
	}
	return s.out.Close()
}
