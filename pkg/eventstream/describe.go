package eventstream

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// PathStats summarises per-user path lengths and spans.
type PathStats struct {
	MinSteps  int           `json:"min_steps"`
	MaxSteps  int           `json:"max_steps"`
	MeanSteps float64       `json:"mean_steps"`
	MinSpan   time.Duration `json:"min_span_ns"`
	MaxSpan   time.Duration `json:"max_span_ns"`
	MeanSpan  time.Duration `json:"mean_span_ns"`
}

// Description is an overview of a stream's visible view: the downstream
// describe tables consume it or the raw frame projection.
type Description struct {
	Events     int            `json:"events"`
	Users      int            `json:"users"`
	Start      time.Time      `json:"start"`
	End        time.Time      `json:"end"`
	TypeFreqs  map[string]int `json:"type_freqs"`
	NameFreqs  map[string]int `json:"name_freqs"`
	Paths      PathStats      `json:"paths"`
	CustomCols []string       `json:"custom_cols,omitempty"`
}

// Describe computes an overview of the stream's visible events.
func Describe(es *EventStream) Description {
	d := Description{
		TypeFreqs:  make(map[string]int),
		NameFreqs:  make(map[string]int),
		CustomCols: es.Schema().CustomCols,
	}
	d.Start, d.End = es.TimeRange()

	paths := es.UserPaths()
	d.Users = len(paths)
	var stepsSum int
	var spanSum time.Duration
	for i, p := range paths {
		d.Events += len(p.Events)
		for _, ev := range p.Events {
			d.TypeFreqs[ev.EventType]++
			d.NameFreqs[ev.EventName]++
		}
		steps := len(p.Events)
		span := p.Events[len(p.Events)-1].Timestamp.Sub(p.Events[0].Timestamp)
		stepsSum += steps
		spanSum += span
		if i == 0 || steps < d.Paths.MinSteps {
			d.Paths.MinSteps = steps
		}
		if steps > d.Paths.MaxSteps {
			d.Paths.MaxSteps = steps
		}
		if i == 0 || span < d.Paths.MinSpan {
			d.Paths.MinSpan = span
		}
		if span > d.Paths.MaxSpan {
			d.Paths.MaxSpan = span
		}
	}
	if d.Users > 0 {
		d.Paths.MeanSteps = float64(stepsSum) / float64(d.Users)
		d.Paths.MeanSpan = spanSum / time.Duration(d.Users)
	}
	return d
}

// ReportText renders the description as a plain-text summary.
func (d Description) ReportText() string {
	var b strings.Builder
	b.WriteString("Eventstream Summary\n")
	fmt.Fprintf(&b, "- events=%d users=%d\n", d.Events, d.Users)
	if !d.Start.IsZero() {
		fmt.Fprintf(&b, "- from %s to %s\n", d.Start.Format(time.RFC3339), d.End.Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "- path steps: min=%d max=%d mean=%.2f\n", d.Paths.MinSteps, d.Paths.MaxSteps, d.Paths.MeanSteps)
	fmt.Fprintf(&b, "- path span: min=%s max=%s mean=%s\n", d.Paths.MinSpan, d.Paths.MaxSpan, d.Paths.MeanSpan)
	if len(d.CustomCols) > 0 {
		fmt.Fprintf(&b, "- custom cols: %s\n", strings.Join(d.CustomCols, ", "))
	}
	b.WriteString("- event types:\n")
	for _, kv := range sortedFreqs(d.TypeFreqs) {
		fmt.Fprintf(&b, "  %s: %d\n", kv.k, kv.v)
	}
	b.WriteString("- top events:\n")
	top := sortedFreqs(d.NameFreqs)
	if len(top) > 10 {
		top = top[:10]
	}
	for _, kv := range top {
		fmt.Fprintf(&b, "  %q: %d\n", kv.k, kv.v)
	}
	return b.String()
}

// ReportJSON renders the description as indented JSON.
func (d Description) ReportJSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

type freq struct {
	k string
	v int
}

func sortedFreqs(m map[string]int) []freq {
	out := make([]freq, 0, len(m))
	for k, v := range m {
		out = append(out, freq{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].v != out[j].v {
			return out[i].v > out[j].v
		}
		return out[i].k < out[j].k
	})
	return out
}
