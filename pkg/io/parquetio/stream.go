package parquetio

import (
	"os"
	"time"

	"github.com/pkg/errors"
	parquet "github.com/segmentio/parquet-go"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

// StreamReader reads Parquet rows in chunks as Frames.
type StreamReader struct {
	file      *os.File
	reader    *parquet.GenericReader[map[string]any]
	schema    es.FrameSchema
	chunkSize int
	buf       []map[string]any
}

func NewStreamReader(path string, chunkSize int, sampleRows int) (*StreamReader, error) {
	rd, err := OpenReader(path, sampleRows)
	if err != nil {
		return nil, err
	}
	schema := rd.Schema()
	// reuse the underlying file, reopen the reader for streaming
	f := rd.file
	if err := rd.reader.Close(); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.Seek(0, 0); err != nil {
		_ = f.Close()
		return nil, err
	}
	gr := parquet.NewGenericReader[map[string]any](f)
	if chunkSize <= 0 {
		chunkSize = 8192
	}
	return &StreamReader{file: f, reader: gr, schema: schema, chunkSize: chunkSize, buf: make([]map[string]any, chunkSize)}, nil
}

func (s *StreamReader) Close() error {
	_ = s.reader.Close()
	return s.file.Close()
}

func (s *StreamReader) Schema() es.FrameSchema { return s.schema }

func (s *StreamReader) Next() (*es.Frame, error) {
	n, err := s.reader.Read(s.buf)
	if n == 0 && err != nil {
		return nil, err
	}
	f := es.NewFrame(s.schema)
	for i := 0; i < n; i++ {
		f.AppendNullRow()
		setRow(f, f.Rows()-1, s.buf[i])
	}
	return f, nil
}

// StreamWriter writes Frames to a Parquet file incrementally.
type StreamWriter struct {
	file   *os.File
	writer *parquet.GenericWriter[map[string]any]
}

func NewStreamWriter(path string) (*StreamWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &StreamWriter{file: f, writer: parquet.NewGenericWriter[map[string]any](f)}, nil
}

func (s *StreamWriter) Write(fr *es.Frame) error {
	for r := 0; r < fr.Rows(); r++ {
		rec := make(map[string]any, len(fr.Schema().Columns))
		for _, cs := range fr.Schema().Columns {
			col, _ := fr.ColumnByName(cs.Name)
			switch cs.Type {
			case es.KindFloat:
				if v, ok := col.(*es.FloatColumn).Get(r); ok {
					rec[cs.Name] = v
				}
			case es.KindInt:
				if v, ok := col.(*es.IntColumn).Get(r); ok {
					rec[cs.Name] = v
				}
			case es.KindBool:
				if v, ok := col.(*es.BoolColumn).Get(r); ok {
					rec[cs.Name] = v
				}
			case es.KindString:
				if v, ok := col.(*es.StringColumn).Get(r); ok {
					rec[cs.Name] = v
				}
			case es.KindTime:
				if v, ok := col.(*es.TimeColumn).Get(r); ok {
					rec[cs.Name] = v.Format(time.RFC3339Nano)
				}
			}
		}
		if _, err := s.writer.Write([]map[string]any{rec}); err != nil {
			return errors.Wrap(err, "parquet stream write")
		}
	}
	return nil
}

func (s *StreamWriter) Close() error {
	if err := s.writer.Close(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}
