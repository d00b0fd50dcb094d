package parquetio

import (
	"path/filepath"
	"testing"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

func makeFrame(rows int) *es.Frame {
	s := es.FrameSchema{Columns: []es.ColumnSchema{
		{Name: "user_id", Type: es.KindString, Nullable: true},
		{Name: "step", Type: es.KindInt, Nullable: true},
	}}
	f := es.NewFrame(s)
	for i := 0; i < rows; i++ {
		f.AppendNullRow()
		_ = f.SetCell(i, "user_id", "u"+string(rune('a'+i%26)))
		_ = f.SetCell(i, "step", int64(i%10))
	}
	return f
}

func BenchmarkParquetWrite(b *testing.B) {
	f := makeFrame(50000)
	path := filepath.Join(b.TempDir(), "bench.parquet")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = WriteAll(path, f)
	}
}
