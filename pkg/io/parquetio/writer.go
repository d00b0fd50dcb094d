package parquetio

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

func parquetSchemaJSON(s es.FrameSchema) string {
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		tag := "name=" + cs.Name + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case es.KindFloat:
			tag += "DOUBLE"
		case es.KindInt:
			tag += "INT64"
		case es.KindBool:
			tag += "BOOLEAN"
		default:
			// strings and timestamps travel as UTF8
			tag += "BYTE_ARRAY, convertedtype=UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, _ := json.Marshal(sc)
	return string(b)
}

// WriteAll writes a Frame to a Parquet file.
func WriteAll(path string, f *es.Frame) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	schema := parquetSchemaJSON(f.Schema())
	writer, err := pw.NewJSONWriter(schema, fw, 4)
	if err != nil {
		_ = fw.Close()
		return errors.Wrap(err, "parquet writer init")
	}
	defer func() { _ = writer.WriteStop(); _ = fw.Close() }()
	for r := 0; r < f.Rows(); r++ {
		rec := make(map[string]any, len(f.Schema().Columns))
		for _, cs := range f.Schema().Columns {
			col, _ := f.ColumnByName(cs.Name)
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
		b, err := json.Marshal(rec)
		if err != nil {
			return errors.Wrap(err, "parquet encode row")
		}
		if err := writer.Write(string(b)); err != nil {
			return errors.Wrap(err, "parquet write row")
		}
	}
	return nil
}
