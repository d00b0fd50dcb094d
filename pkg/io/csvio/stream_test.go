package csvio

import (
	"io"
	"testing"
)

func TestStreamReadCSV(t *testing.T) {
	p := writeSample(t)
	sr, err := NewStreamReader(p, ReaderOptions{HasHeader: true}, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = sr.Close() }()
	total, chunks := 0, 0
	for {
		fr, err := sr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		total += fr.Rows()
		chunks++
	}
	if total != 4 {
		t.Fatalf("expected 4 rows from stream reader, got %d", total)
	}
	if chunks < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", chunks)
	}
}
