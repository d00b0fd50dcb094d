package csvio

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

func BenchmarkReadClickstream(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("user_id,event,timestamp\n")
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5000; i++ {
		sb.WriteString("u" + strconv.Itoa(i%100))
		sb.WriteString(",catalog,")
		sb.WriteString(base.Add(time.Duration(i) * time.Second).Format(time.RFC3339))
		sb.WriteByte('\n')
	}
	p := filepath.Join(b.TempDir(), "bench.csv")
	if err := os.WriteFile(p, []byte(sb.String()), 0o644); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		fr, err := ReadFile(p, ReaderOptions{HasHeader: true})
		if err != nil {
			b.Fatal(err)
		}
		if fr.Rows() == 0 {
			b.Fatal("no rows")
		}
	}
}
