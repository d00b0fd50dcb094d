package eventstream

import (
	"context"

	"github.com/pkg/errors"
)

// Node is a vertex of a preprocessing graph.
type Node interface {
	node()
}

// SourceNode wraps the root stream. Every graph has exactly one.
type SourceNode struct {
	stream *EventStream
}

func (*SourceNode) node() {}

// EventsNode holds one processor and has exactly one parent.
type EventsNode struct {
	Processor Processor
}

func NewEventsNode(p Processor) *EventsNode { return &EventsNode{Processor: p} }

func (*EventsNode) node() {}

// MergeNode appends the streams of its parents, in the order they were
// attached.
type MergeNode struct{}

func NewMergeNode() *MergeNode { return &MergeNode{} }

func (*MergeNode) node() {}

// PGraph is a DAG of processor nodes over a single source stream.
// Combine evaluates any node by recursive composition from the root.
type PGraph struct {
	root    *SourceNode
	parents map[Node][]Node
}

// NewPGraph builds a graph whose source node wraps the given stream.
func NewPGraph(root *EventStream) *PGraph {
	src := &SourceNode{stream: root}
	return &PGraph{
		root:    src,
		parents: map[Node][]Node{src: nil},
	}
}

// Root returns the source node.
func (g *PGraph) Root() *SourceNode { return g.root }

// AddNode attaches a node under the given parents. Non-merge nodes take
// exactly one parent; all parents must already belong to the graph.
func (g *PGraph) AddNode(n Node, parents ...Node) error {
	if n == nil {
		return errors.New("pgraph: nil node")
	}
	if _, ok := g.parents[n]; ok {
		return errors.New("pgraph: node already added")
	}
	if _, ok := n.(*SourceNode); ok {
		return errors.New("pgraph: graph has a single source node")
	}
	if _, ok := n.(*MergeNode); !ok && len(parents) != 1 {
		return errors.Errorf("pgraph: non-merge node takes exactly one parent, got %d", len(parents))
	}
	if len(parents) == 0 {
		return errors.New("pgraph: node needs at least one parent")
	}
	for _, p := range parents {
		if _, ok := g.parents[p]; !ok {
			return errors.New("pgraph: unknown parent node")
		}
	}
	g.parents[n] = append([]Node(nil), parents...)
	return nil
}

// GetParents returns the parents of a node in attachment order.
func (g *PGraph) GetParents(n Node) ([]Node, error) {
	ps, ok := g.parents[n]
	if !ok {
		return nil, errors.New("pgraph: unknown node")
	}
	return append([]Node(nil), ps...), nil
}

func (g *PGraph) eventsNodeParent(n Node) (Node, error) {
	ps, err := g.GetParents(n)
	if err != nil {
		return nil, err
	}
	if len(ps) != 1 {
		return nil, errors.Errorf("pgraph: events node has %d parents", len(ps))
	}
	return ps[0], nil
}

// Combine returns a stream representing the cumulative effect of the
// pipeline from the root to the given node. Evaluation is depth-first
// and recomputes from the root on every call.
func (g *PGraph) Combine(ctx context.Context, n Node) (*EventStream, error) {
	if _, ok := g.parents[n]; !ok {
		return nil, errors.New("pgraph: unknown node")
	}
	switch node := n.(type) {
	case *SourceNode:
		return node.stream.Copy(), nil
	case *EventsNode:
		parent, err := g.eventsNodeParent(n)
		if err != nil {
			return nil, err
		}
		in, err := g.Combine(ctx, parent)
		if err != nil {
			return nil, err
		}
		child, err := node.Processor.Apply(ctx, in)
		if err != nil {
			return nil, errors.Wrapf(err, "pgraph: processor %s", node.Processor.Name())
		}
		if err := in.JoinEventstream(child); err != nil {
			return nil, errors.Wrapf(err, "pgraph: processor %s", node.Processor.Name())
		}
		return in, nil
	case *MergeNode:
		ps, err := g.GetParents(n)
		if err != nil {
			return nil, err
		}
		acc, err := g.Combine(ctx, ps[0])
		if err != nil {
			return nil, err
		}
		for _, p := range ps[1:] {
			sib, err := g.Combine(ctx, p)
			if err != nil {
				return nil, err
			}
			if err := acc.AppendEventstream(sib); err != nil {
				return nil, err
			}
		}
		return acc, nil
	default:
		return nil, errors.Errorf("pgraph: unknown node type %T", n)
	}
}
