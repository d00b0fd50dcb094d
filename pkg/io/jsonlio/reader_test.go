package jsonlio

import (
	"os"
	"path/filepath"
	"testing"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

const sampleJSONL = `{"user_id":"u1","event":"catalog","timestamp":"2023-01-01T00:00:00Z","step":1}
{"user_id":"u1","event":"cart","timestamp":"2023-01-01T00:01:00Z","step":2}
{"user_id":"u2","event":"catalog","timestamp":"2023-01-01T00:02:00Z","step":1}
`

func writeSample(t testing.TB) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "clicks.jsonl")
	if err := os.WriteFile(p, []byte(sampleJSONL), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestJSONLInferAndRead(t *testing.T) {
	p := writeSample(t)
	r, closer, err := Open(p, ReaderOptions{SampleRows: 10})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = closer.Close() }()
	schema, err := r.InferSchema()
	if err != nil {
		t.Fatal(err)
	}
	if len(schema.Columns) != 4 {
		t.Fatalf("expected 4 columns, got %d", len(schema.Columns))
	}
	kinds := map[string]es.Kind{}
	for _, cs := range schema.Columns {
		kinds[cs.Name] = cs.Type
	}
	if kinds["timestamp"] != es.KindTime {
		t.Fatalf("expected timestamp to be time, got %v", kinds["timestamp"])
	}
	if kinds["step"] != es.KindInt {
		t.Fatalf("expected step to be int, got %v", kinds["step"])
	}
	fr, err := r.ReadAll(schema)
	if err != nil {
		t.Fatal(err)
	}
	if fr.Rows() != 3 {
		t.Fatalf("expected 3 rows, got %d", fr.Rows())
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	p := writeSample(t)
	r, closer, err := Open(p, ReaderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = closer.Close() }()
	schema, err := r.InferSchema()
	if err != nil {
		t.Fatal(err)
	}
	fr, err := r.ReadAll(schema)
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "out.jsonl")
	if err := WriteAll(out, fr); err != nil {
		t.Fatal(err)
	}
	r2, closer2, err := Open(out, ReaderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = closer2.Close() }()
	schema2, err := r2.InferSchema()
	if err != nil {
		t.Fatal(err)
	}
	back, err := r2.ReadAll(schema2)
	if err != nil {
		t.Fatal(err)
	}
	if back.Rows() != fr.Rows() {
		t.Fatalf("round trip changed row count: %d -> %d", fr.Rows(), back.Rows())
	}
}
