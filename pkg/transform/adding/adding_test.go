package adding

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

func TestStartEndHelper(t *testing.T) {
	stream := makeStream(t, []rawEvent{{"u1", "catalog", t0}})
	out, err := StartEnd(context.Background(), stream)
	require.NoError(t, err)
	assert.Equal(t, []string{"path_start", "catalog", "path_end"}, pathNames(out)["u1"])
}

func TestAddStartEndEvents(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{"u1", "catalog", t0},
		{"u1", "cart", t0.Add(time.Minute)},
		{"u2", "catalog", t0.Add(time.Second)},
	})
	out := run(t, stream, &AddStartEndEvents{})
	names := pathNames(out)
	assert.Equal(t, []string{"path_start", "catalog", "cart", "path_end"}, names["u1"])
	assert.Equal(t, []string{"path_start", "catalog", "path_end"}, names["u2"])
}

func TestSplitSessionsByTimeout(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{"u1", "a", t0},
		{"u1", "b", t0.Add(time.Minute)},
		{"u1", "c", t0.Add(2 * time.Hour)}, // gap > timeout, new session
	})
	out := run(t, stream, &SplitSessions{Timeout: &es.TimeDelta{Value: 30, Unit: es.UnitMinute}})

	names := pathNames(out)["u1"]
	assert.Equal(t, []string{
		"session_start", "a", "b", "session_end",
		"session_start", "c", "session_end",
	}, names)

	// every raw event carries its session id
	sids := map[string]string{}
	for _, p := range out.UserPaths() {
		for _, ev := range p.Events {
			if ev.EventType != es.EventTypeRaw {
				continue
			}
			sid, ok := out.StringAt(ev.Row, DefaultSessionCol)
			require.True(t, ok, "raw event %s has a session id", ev.EventName)
			sids[ev.EventName] = sid
		}
	}
	assert.Equal(t, "u1_1", sids["a"])
	assert.Equal(t, "u1_1", sids["b"])
	assert.Equal(t, "u1_2", sids["c"])
}

func TestSplitSessionsByDelimiterEvents(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{"u1", "a", t0},
		{"u1", "login", t0.Add(time.Second)},
		{"u1", "b", t0.Add(2 * time.Second)},
	})
	out := run(t, stream, &SplitSessions{DelimiterEvents: []string{"login"}})
	assert.Equal(t, []string{
		"session_start", "a", "session_end",
		"session_start", "login", "b", "session_end",
	}, pathNames(out)["u1"])
}

func TestSplitSessionsMarkTruncated(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{"u1", "a", t0},
		{"u1", "b", t0.Add(time.Minute)},
		{"u2", "c", t0.Add(2 * time.Hour)},
	})
	out := run(t, stream, &SplitSessions{
		Timeout:       &es.TimeDelta{Value: 30, Unit: es.UnitMinute},
		MarkTruncated: true,
	})
	names := pathNames(out)
	// u1 starts at the global start: its session may be left-truncated
	assert.Contains(t, names["u1"], "session_start_truncated")
	// u2 ends at the global end: right-truncated
	assert.Contains(t, names["u2"], "session_end_truncated")
	assert.NotContains(t, names["u1"], "session_end_truncated")
}

func TestSplitSessionsValidation(t *testing.T) {
	stream := makeStream(t, []rawEvent{{"u1", "a", t0}})
	ctx := context.Background()

	_, err := stream.ApplyProcessor(ctx, &SplitSessions{})
	assert.Error(t, err, "no mode set")

	_, err = stream.ApplyProcessor(ctx, &SplitSessions{
		Timeout:         &es.TimeDelta{Value: 30, Unit: es.UnitMinute},
		DelimiterEvents: []string{"login"},
	})
	assert.Error(t, err, "two modes set")

	_, err = stream.ApplyProcessor(ctx, &SplitSessions{DelimiterCol: "kind"})
	assert.Error(t, err, "delimiter col without value")

	_, err = stream.ApplyProcessor(ctx, &SplitSessions{DelimiterEvents: []string{"x"}, MarkTruncated: true})
	assert.Error(t, err, "mark_truncated needs a timeout")
}

func TestAddPositiveEvents(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{"u1", "catalog", t0},
		{"u1", "payment_done", t0.Add(time.Minute)},
		{"u1", "payment_done", t0.Add(2 * time.Minute)},
		{"u2", "catalog", t0},
	})
	out := run(t, stream, &AddPositiveEvents{Targets: []string{"payment_done"}})
	names := pathNames(out)
	// one synthetic at the first occurrence only; raw sorts first on ties
	assert.Equal(t, []string{"catalog", "payment_done", "positive_target_payment_done", "payment_done"}, names["u1"])
	assert.Equal(t, []string{"catalog"}, names["u2"], "users without the target get nothing")
}

func TestAddNegativeEvents(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{"u1", "checkout_abort", t0},
	})
	out := run(t, stream, &AddNegativeEvents{Targets: []string{"checkout_abort"}})
	assert.Contains(t, pathNames(out)["u1"], "negative_target_checkout_abort")
}

func TestTargetSelectorContract(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{"u1", "buy", t0},
		{"u1", "buy", t0.Add(time.Second)},
	})
	// a selector returning two rows for one user is rejected
	everyOccurrence := func(in *es.EventStream, targets []string) ([]es.PathRow, error) {
		var rows []es.PathRow
		for _, p := range in.UserPaths() {
			rows = append(rows, p.Events...)
		}
		return rows, nil
	}
	_, err := stream.ApplyProcessor(context.Background(), &AddPositiveEvents{
		Targets: []string{"buy"},
		Func:    everyOccurrence,
	})
	assert.Error(t, err)

	_, err = stream.ApplyProcessor(context.Background(), &AddPositiveEvents{})
	assert.Error(t, err, "empty target list")
}

func TestLabelNewUsers(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{"u1", "a", t0},
		{"u2", "a", t0.Add(time.Second)},
	})
	out := run(t, stream, &LabelNewUsers{NewUsers: []string{"u1"}})
	names := pathNames(out)
	assert.Equal(t, "new_user", names["u1"][0])
	assert.Equal(t, "existing_user", names["u2"][0])

	all := run(t, stream, &LabelNewUsers{All: true})
	names = pathNames(all)
	assert.Equal(t, "new_user", names["u2"][0])

	_, err := stream.ApplyProcessor(context.Background(), &LabelNewUsers{})
	assert.Error(t, err)
	_, err = stream.ApplyProcessor(context.Background(), &LabelNewUsers{NewUsers: []string{"u1"}, All: true})
	assert.Error(t, err)
}

func TestLabelLostUsers(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{"u1", "a", t0},
		{"u2", "a", t0.Add(48 * time.Hour)},
	})
	out := run(t, stream, &LabelLostUsers{Timeout: &es.TimeDelta{Value: 1, Unit: es.UnitDay}})
	names := pathNames(out)
	assert.Equal(t, "lost_user", names["u1"][len(names["u1"])-1], "gap to global end exceeds the timeout")
	assert.Equal(t, "absent_user", names["u2"][len(names["u2"])-1])

	bySet := run(t, stream, &LabelLostUsers{LostUsers: []string{"u2"}})
	names = pathNames(bySet)
	assert.Equal(t, "absent_user", names["u1"][len(names["u1"])-1])
	assert.Equal(t, "lost_user", names["u2"][len(names["u2"])-1])

	_, err := stream.ApplyProcessor(context.Background(), &LabelLostUsers{})
	assert.Error(t, err)
}

func TestLabelCroppedPaths(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{"u1", "a", t0},
		{"u1", "b", t0.Add(10 * time.Hour)},
		{"u2", "a", t0.Add(9 * time.Hour)},
		{"u2", "b", t0.Add(10 * time.Hour)},
	})
	out := run(t, stream, &LabelCroppedPaths{
		LeftCutoff:  &es.TimeDelta{Value: 2, Unit: es.UnitHour},
		RightCutoff: &es.TimeDelta{Value: 2, Unit: es.UnitHour},
	})
	names := pathNames(out)
	// u2 enters 9h after the start: less than 2h remain to the global end
	assert.Contains(t, names["u2"], "truncated_left")
	assert.NotContains(t, names["u1"], "truncated_left")
	// neither path ends within 2h of the global start
	assert.NotContains(t, names["u1"], "truncated_right")

	_, err := stream.ApplyProcessor(context.Background(), &LabelCroppedPaths{})
	assert.Error(t, err, "at least one cutoff required")
}
