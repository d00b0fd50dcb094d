package editing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

var t0 = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

type rawEvent struct {
	user string
	name string
	ts   time.Time
}

func makeStream(t *testing.T, events []rawEvent) *es.EventStream {
	t.Helper()
	f := es.NewFrame(es.FrameSchema{Columns: []es.ColumnSchema{
		{Name: "user_id", Type: es.KindString},
		{Name: "event", Type: es.KindString},
		{Name: "timestamp", Type: es.KindTime},
	}})
	for _, ev := range events {
		f.AppendNullRow()
		r := f.Rows() - 1
		_ = f.SetCell(r, "user_id", ev.user)
		_ = f.SetCell(r, "event", ev.name)
		_ = f.SetCell(r, "timestamp", ev.ts)
	}
	stream, err := es.New(f, es.Options{})
	require.NoError(t, err)
	return stream
}

func run(t *testing.T, stream *es.EventStream, p es.Processor) *es.EventStream {
	t.Helper()
	out, err := stream.ApplyProcessor(context.Background(), p)
	require.NoError(t, err)
	return out
}

func pathNames(stream *es.EventStream) map[string][]string {
	out := map[string][]string{}
	for _, p := range stream.UserPaths() {
		for _, ev := range p.Events {
			out[p.UserID] = append(out[p.UserID], ev.EventName)
		}
	}
	return out
}

func TestFilterHelper(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{"u1", "keep", t0},
		{"u1", "drop", t0.Add(time.Second)},
	})
	out, err := Filter(context.Background(), stream, es.NameIn("keep"))
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, pathNames(out)["u1"])
}

func TestCollapseLoops(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{"u1", "a", t0},
		{"u1", "b", t0.Add(time.Second)},
		{"u1", "b", t0.Add(2 * time.Second)},
		{"u1", "b", t0.Add(3 * time.Second)},
		{"u1", "c", t0.Add(4 * time.Second)},
	})
	out := run(t, stream, &CollapseLoops{})
	assert.Equal(t, []string{"a", "b", "c"}, pathNames(out)["u1"],
		"the run collapses to one alias, singletons stay")

	// alias carries group_alias type
	for _, p := range out.UserPaths() {
		for _, ev := range p.Events {
			if ev.EventName == "b" {
				assert.Equal(t, es.EventTypeGroupAlias, ev.EventType)
			}
		}
	}
}

func TestCollapseLoopsSuffixes(t *testing.T) {
	events := []rawEvent{
		{"u1", "b", t0},
		{"u1", "b", t0.Add(time.Second)},
	}
	out := run(t, makeStream(t, events), &CollapseLoops{Suffix: SuffixLoop})
	assert.Equal(t, []string{"b_loop"}, pathNames(out)["u1"])

	out = run(t, makeStream(t, events), &CollapseLoops{Suffix: SuffixCount})
	assert.Equal(t, []string{"b_loop_2"}, pathNames(out)["u1"])

	_, err := makeStream(t, events).ApplyProcessor(context.Background(), &CollapseLoops{Suffix: "bad"})
	assert.Error(t, err)
}

func TestCollapseLoopsTimeAgg(t *testing.T) {
	events := []rawEvent{
		{"u1", "b", t0},
		{"u1", "b", t0.Add(10 * time.Second)},
	}
	aliasTS := func(agg string) time.Time {
		out := run(t, makeStream(t, events), &CollapseLoops{TimeAgg: agg})
		paths := out.UserPaths()
		require.Len(t, paths, 1)
		require.Len(t, paths[0].Events, 1)
		return paths[0].Events[0].Timestamp
	}
	assert.Equal(t, t0, aliasTS(AggMin))
	assert.Equal(t, t0.Add(10*time.Second), aliasTS(AggMax))
	assert.Equal(t, t0.Add(5*time.Second), aliasTS(AggMean))
}

func TestFilterEvents(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{"u1", "keep", t0},
		{"u1", "drop", t0.Add(time.Second)},
		{"u2", "keep", t0},
	})
	out := run(t, stream, &FilterEvents{Func: es.NameIn("keep")})
	names := pathNames(out)
	assert.Equal(t, []string{"keep"}, names["u1"])
	assert.Equal(t, []string{"keep"}, names["u2"])

	// the rejected row survives as hidden history
	assert.Len(t, out.VisibleRows(), 2)
	assert.Equal(t, 4, out.ToFrame(es.FrameOptions{ShowDeleted: true}).Rows())

	_, err := stream.ApplyProcessor(context.Background(), &FilterEvents{})
	assert.Error(t, err, "predicate required")
}

func TestGroupEvents(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{"u1", "product1", t0},
		{"u1", "product2", t0.Add(time.Second)},
		{"u1", "cart", t0.Add(2 * time.Second)},
	})
	out := run(t, stream, &GroupEvents{
		EventName: "product",
		Func:      es.NameIn("product1", "product2"),
	})
	assert.Equal(t, []string{"product", "product", "cart"}, pathNames(out)["u1"])
	for _, p := range out.UserPaths() {
		for _, ev := range p.Events {
			if ev.EventName == "product" {
				assert.Equal(t, es.EventTypeGroupAlias, ev.EventType)
			}
		}
	}
}

func TestGroupEventsBulkIntersections(t *testing.T) {
	stream := makeStream(t, []rawEvent{{"u1", "x", t0}})
	bulk := &GroupEventsBulk{Rules: []GroupRule{
		{EventName: "first", Func: es.NameIn("x")},
		{EventName: "second", Func: es.NameIn("x")},
	}}
	_, err := stream.ApplyProcessor(context.Background(), bulk)
	assert.Error(t, err, "two rules selecting the same row")

	bulk.IgnoreIntersections = true
	out := run(t, stream, bulk)
	assert.Equal(t, []string{"first"}, pathNames(out)["u1"], "first rule wins")
}

func TestGroupEventsValidation(t *testing.T) {
	stream := makeStream(t, []rawEvent{{"u1", "x", t0}})
	ctx := context.Background()
	_, err := stream.ApplyProcessor(ctx, &GroupEvents{Func: es.NameIn("x")})
	assert.Error(t, err, "missing name")
	_, err = stream.ApplyProcessor(ctx, &GroupEvents{EventName: "g"})
	assert.Error(t, err, "missing predicate")
	_, err = stream.ApplyProcessor(ctx, &GroupEventsBulk{})
	assert.Error(t, err, "no rules")
}

func TestRenameEvents(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{"u1", "main_page", t0},
		{"u1", "main", t0.Add(time.Second)},
		{"u1", "cart", t0.Add(2 * time.Second)},
	})
	out := run(t, stream, &RenameEvents{Rules: []RenameRule{
		{GroupName: "main", ChildEvents: []string{"main_page", "main"}},
	}})
	assert.Equal(t, []string{"main", "main", "cart"}, pathNames(out)["u1"])

	// renaming keeps event types
	for _, p := range out.UserPaths() {
		for _, ev := range p.Events {
			assert.Equal(t, es.EventTypeRaw, ev.EventType)
		}
	}

	_, err := stream.ApplyProcessor(context.Background(), &RenameEvents{})
	assert.Error(t, err)
}

func TestPipeKeepsTypedCustomCols(t *testing.T) {
	stream := makeStream(t, []rawEvent{{"u1", "a", t0}})
	steps := es.NewIntColumn("step", 0)
	steps.Append(7)
	require.NoError(t, stream.AddCustomCol("step", steps))

	out, err := stream.ApplyProcessor(context.Background(), &Pipe{
		Func: func(f *es.Frame, s es.Schema) (*es.Frame, error) { return f, nil },
	})
	require.NoError(t, err)

	f := out.ToFrame(es.FrameOptions{})
	require.Equal(t, 1, f.Rows())
	v, ok := f.IntAt(0, "step")
	require.True(t, ok, "non-string custom values survive a pipe round trip")
	assert.Equal(t, int64(7), v)
}

func TestPipe(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{"u1", "a", t0},
		{"u1", "b", t0.Add(time.Second)},
	})
	out := run(t, stream, &Pipe{Func: func(f *es.Frame, s es.Schema) (*es.Frame, error) {
		// rename a, drop b, add c
		kept := es.NewFrame(f.Schema())
		for r := 0; r < f.Rows(); r++ {
			name, _ := f.StringAt(r, s.EventName)
			if name == "b" {
				continue
			}
			kept.AppendRowFrom(f, r)
			_ = kept.SetCell(kept.Rows()-1, s.EventName, "a_renamed")
		}
		kept.AppendNullRow()
		r := kept.Rows() - 1
		_ = kept.SetCell(r, s.EventID, "new")
		_ = kept.SetCell(r, s.EventName, "c")
		_ = kept.SetCell(r, s.EventType, es.EventTypeRaw)
		_ = kept.SetCell(r, s.UserID, "u1")
		_ = kept.SetCell(r, s.EventTimestamp, t0.Add(2*time.Second))
		return kept, nil
	}})
	assert.Equal(t, []string{"a_renamed", "c"}, pathNames(out)["u1"])

	// the superseded and dropped originals stay as hidden history
	full := out.ToFrame(es.FrameOptions{ShowDeleted: true})
	assert.Greater(t, full.Rows(), 2)

	_, err := stream.ApplyProcessor(context.Background(), &Pipe{})
	assert.Error(t, err)
}
