package eventstream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// injectEvent is a minimal processor that inserts one synthetic event
// per user at the start of the path.
type injectEvent struct {
	name string
	typ  string
}

func (p *injectEvent) Name() string { return "inject_" + p.name }

func (p *injectEvent) Apply(_ context.Context, stream *EventStream) (*EventStream, error) {
	cf := stream.ChildFrame()
	for _, path := range stream.UserPaths() {
		stream.AppendChildEvent(cf, ChildEvent{
			Name:      p.name,
			Type:      p.typ,
			UserID:    path.UserID,
			Timestamp: path.Events[0].Timestamp,
		})
	}
	return NewChild(stream, cf)
}

func TestAddNodeValidation(t *testing.T) {
	stream := makeStream(t, []rawEvent{{user: "u1", name: "a", ts: t0}})
	g := NewPGraph(stream)

	n := NewEventsNode(&injectEvent{name: "x", typ: EventTypeRaw})
	require.NoError(t, g.AddNode(n, g.Root()))

	assert.Error(t, g.AddNode(n, g.Root()), "duplicate node")
	assert.Error(t, g.AddNode(nil, g.Root()))
	assert.Error(t, g.AddNode(&SourceNode{}, g.Root()), "second source")
	assert.Error(t, g.AddNode(NewEventsNode(&injectEvent{}), n, g.Root()), "events node with two parents")
	assert.Error(t, g.AddNode(NewEventsNode(&injectEvent{}), NewEventsNode(&injectEvent{})), "unknown parent")
	assert.Error(t, g.AddNode(NewMergeNode()), "merge node without parents")
}

func TestCombineChain(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{user: "u1", name: "catalog", ts: t0},
		{user: "u1", name: "cart", ts: t0.Add(time.Minute)},
	})
	g := NewPGraph(stream)
	first := NewEventsNode(&injectEvent{name: "path_start", typ: EventTypePathStart})
	require.NoError(t, g.AddNode(first, g.Root()))
	second := NewEventsNode(&injectEvent{name: "new_user", typ: EventTypeNewUser})
	require.NoError(t, g.AddNode(second, first))

	out, err := g.Combine(context.Background(), second)
	require.NoError(t, err)

	var names []string
	for _, p := range out.UserPaths() {
		for _, ev := range p.Events {
			names = append(names, ev.EventName)
		}
	}
	assert.Equal(t, []string{"path_start", "new_user", "catalog", "cart"}, names)

	// the source stream is untouched by evaluation
	assert.Equal(t, 2, stream.ToFrame(FrameOptions{}).Rows())
}

func TestCombineIsRepeatable(t *testing.T) {
	stream := makeStream(t, []rawEvent{{user: "u1", name: "a", ts: t0}})
	g := NewPGraph(stream)
	n := NewEventsNode(&injectEvent{name: "path_start", typ: EventTypePathStart})
	require.NoError(t, g.AddNode(n, g.Root()))

	a, err := g.Combine(context.Background(), n)
	require.NoError(t, err)
	b, err := g.Combine(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, a.ToFrame(FrameOptions{}).Rows(), b.ToFrame(FrameOptions{}).Rows(),
		"each evaluation recomputes from the root")
}

func TestCombineBranchesAndMerge(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{user: "u1", name: "a", ts: t0},
		{user: "u2", name: "b", ts: t0.Add(time.Second)},
	})
	g := NewPGraph(stream)
	left := NewEventsNode(&injectEvent{name: "left_mark", typ: EventTypeSynthetic})
	require.NoError(t, g.AddNode(left, g.Root()))
	right := NewEventsNode(&injectEvent{name: "right_mark", typ: EventTypeSynthetic})
	require.NoError(t, g.AddNode(right, g.Root()))
	merge := NewMergeNode()
	require.NoError(t, g.AddNode(merge, left, right))

	out, err := g.Combine(context.Background(), merge)
	require.NoError(t, err)

	names := map[string]int{}
	for _, p := range out.UserPaths() {
		for _, ev := range p.Events {
			names[ev.EventName]++
		}
	}
	assert.Equal(t, 2, names["left_mark"])
	assert.Equal(t, 2, names["right_mark"])
	assert.Equal(t, 1, names["a"], "shared raw rows merge by id, not by copy")
}

func TestCombineUnknownNode(t *testing.T) {
	stream := makeStream(t, []rawEvent{{user: "u1", name: "a", ts: t0}})
	g := NewPGraph(stream)
	_, err := g.Combine(context.Background(), NewEventsNode(&injectEvent{}))
	assert.Error(t, err)
}

func TestApplyProcessorShortcut(t *testing.T) {
	stream := makeStream(t, []rawEvent{{user: "u1", name: "a", ts: t0}})
	out, err := stream.ApplyProcessor(context.Background(), &injectEvent{name: "path_start", typ: EventTypePathStart})
	require.NoError(t, err)
	assert.Equal(t, 2, out.ToFrame(FrameOptions{}).Rows())
	assert.Equal(t, 1, stream.ToFrame(FrameOptions{}).Rows())
}
