package edgelist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

var t0 = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

type rawEvent struct {
	user    string
	name    string
	ts      time.Time
	session string
}

func makeStream(t *testing.T, events []rawEvent) *es.EventStream {
	t.Helper()
	f := es.NewFrame(es.FrameSchema{Columns: []es.ColumnSchema{
		{Name: "user_id", Type: es.KindString},
		{Name: "event", Type: es.KindString},
		{Name: "timestamp", Type: es.KindTime},
		{Name: "session_id", Type: es.KindString, Nullable: true},
	}})
	for _, ev := range events {
		f.AppendNullRow()
		r := f.Rows() - 1
		_ = f.SetCell(r, "user_id", ev.user)
		_ = f.SetCell(r, "event", ev.name)
		_ = f.SetCell(r, "timestamp", ev.ts)
		if ev.session != "" {
			_ = f.SetCell(r, "session_id", ev.session)
		}
	}
	stream, err := es.New(f, es.Options{})
	require.NoError(t, err)
	return stream
}

func find(edges []Edge, src, dst string) (Edge, bool) {
	for _, e := range edges {
		if e.Source == src && e.Target == dst {
			return e, true
		}
	}
	return Edge{}, false
}

func TestComputeRawCounts(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{user: "u1", name: "a", ts: t0},
		{user: "u1", name: "b", ts: t0.Add(time.Second)},
		{user: "u1", name: "a", ts: t0.Add(2 * time.Second)},
		{user: "u1", name: "b", ts: t0.Add(3 * time.Second)},
		{user: "u2", name: "a", ts: t0},
		{user: "u2", name: "b", ts: t0.Add(time.Second)},
	})
	edges, err := Compute(stream, Options{})
	require.NoError(t, err)

	ab, ok := find(edges, "a", "b")
	require.True(t, ok)
	assert.Equal(t, 3.0, ab.Weight, "each occurrence counts with event-id weights")

	ba, ok := find(edges, "b", "a")
	require.True(t, ok)
	assert.Equal(t, 1.0, ba.Weight)

	// sorted by source then target
	for i := 1; i < len(edges); i++ {
		prev, cur := edges[i-1], edges[i]
		less := prev.Source < cur.Source || (prev.Source == cur.Source && prev.Target < cur.Target)
		assert.True(t, less)
	}
}

func TestComputeUniqueUsers(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{user: "u1", name: "a", ts: t0},
		{user: "u1", name: "b", ts: t0.Add(time.Second)},
		{user: "u1", name: "a", ts: t0.Add(2 * time.Second)},
		{user: "u1", name: "b", ts: t0.Add(3 * time.Second)},
		{user: "u2", name: "a", ts: t0},
		{user: "u2", name: "b", ts: t0.Add(time.Second)},
	})
	edges, err := Compute(stream, Options{WeightCol: stream.Schema().UserID})
	require.NoError(t, err)

	ab, _ := find(edges, "a", "b")
	assert.Equal(t, 2.0, ab.Weight, "a repeated transition counts once per user")
}

func TestComputeSessionWeights(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{user: "u1", name: "a", ts: t0, session: "s1"},
		{user: "u1", name: "b", ts: t0.Add(time.Second), session: "s1"},
		// session boundary: b -> a is not a transition
		{user: "u1", name: "a", ts: t0.Add(time.Hour), session: "s2"},
		{user: "u1", name: "b", ts: t0.Add(time.Hour + time.Second), session: "s2"},
	})
	edges, err := Compute(stream, Options{WeightCol: "session_id"})
	require.NoError(t, err)

	ab, _ := find(edges, "a", "b")
	assert.Equal(t, 2.0, ab.Weight, "one count per session")

	// the cross-session pair exists in the universe with weight zero
	ba, ok := find(edges, "b", "a")
	require.True(t, ok)
	assert.Equal(t, 0.0, ba.Weight)
}

func TestComputeNormFull(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{user: "u1", name: "a", ts: t0},
		{user: "u1", name: "b", ts: t0.Add(time.Second)},
		{user: "u2", name: "a", ts: t0},
		{user: "u2", name: "c", ts: t0.Add(time.Second)},
	})
	edges, err := Compute(stream, Options{WeightCol: stream.Schema().UserID, Norm: NormFull})
	require.NoError(t, err)

	ab, _ := find(edges, "a", "b")
	assert.InDelta(t, 0.5, ab.Weight, 1e-9, "1 user out of 2 total")
}

func TestComputeNormNode(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{user: "u1", name: "a", ts: t0},
		{user: "u1", name: "b", ts: t0.Add(time.Second)},
		{user: "u2", name: "a", ts: t0},
		{user: "u2", name: "c", ts: t0.Add(time.Second)},
		{user: "u3", name: "a", ts: t0},
		{user: "u3", name: "b", ts: t0.Add(time.Second)},
	})
	edges, err := Compute(stream, Options{Norm: NormNode})
	require.NoError(t, err)

	ab, _ := find(edges, "a", "b")
	ac, _ := find(edges, "a", "c")
	assert.InDelta(t, 2.0/3.0, ab.Weight, 1e-9)
	assert.InDelta(t, 1.0/3.0, ac.Weight, 1e-9)
}

func TestComputeErrors(t *testing.T) {
	stream := makeStream(t, []rawEvent{{user: "u1", name: "a", ts: t0}})
	_, err := Compute(stream, Options{WeightCol: "no_such_col"})
	assert.Error(t, err)
	_, err = Compute(stream, Options{Norm: "bad"})
	assert.Error(t, err)
}

func TestComputeIgnoresDeleted(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{user: "u1", name: "a", ts: t0},
		{user: "u1", name: "b", ts: t0.Add(time.Second)},
		{user: "u1", name: "c", ts: t0.Add(2 * time.Second)},
	})
	s := stream.Schema()
	f := stream.ToFrame(es.FrameOptions{})
	for r := 0; r < f.Rows(); r++ {
		if name, _ := f.StringAt(r, s.EventName); name == "b" {
			id, _ := f.StringAt(r, s.EventID)
			stream.SoftDelete([]string{id})
		}
	}
	edges, err := Compute(stream, Options{})
	require.NoError(t, err)

	_, hasAB := find(edges, "a", "b")
	assert.False(t, hasAB)
	ac, ok := find(edges, "a", "c")
	require.True(t, ok)
	assert.Equal(t, 1.0, ac.Weight, "adjacency is over visible events only")
}
