// Package edgelist computes transition edge weights from an event
// stream: adjacent (event, next_event) pairs with raw, unique-user or
// unique-session weights and optional normalization.
package edgelist

import (
	"sort"

	"github.com/pkg/errors"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

// Normalization modes.
const (
	NormNone = ""
	NormFull = "full"
	NormNode = "node"
)

// Options select the weight column and normalization mode. WeightCol
// defaults to the event id column (raw transition counts); the user id
// column gives unique-user weights; any custom column (a session id,
// typically) gives distinct-value weights grouped by that column.
type Options struct {
	WeightCol string
	Norm      string
}

// Edge is one directed transition with its weight.
type Edge struct {
	Source string
	Target string
	Weight float64
}

type pair struct{ src, dst string }

// Compute builds the edge list of the stream's visible events.
func Compute(stream *es.EventStream, opts Options) ([]Edge, error) {
	s := stream.Schema()
	weightCol := opts.WeightCol
	if weightCol == "" {
		weightCol = s.EventID
	}
	switch opts.Norm {
	case NormNone, NormFull, NormNode:
	default:
		return nil, errors.Errorf("edgelist: unknown normalization %q", opts.Norm)
	}
	custom := weightCol != s.EventID && weightCol != s.UserID
	if custom && !s.HasCustomCol(weightCol) {
		return nil, errors.Errorf("edgelist: unknown weight column %q", weightCol)
	}

	// distinct weight values per pair, and the universe of pairs
	counts := make(map[pair]map[string]struct{})
	universe := make(map[pair]struct{})
	total := make(map[string]struct{})

	paths := stream.UserPaths()
	for _, path := range paths {
		for i := 0; i+1 < len(path.Events); i++ {
			universe[pair{path.Events[i].EventName, path.Events[i+1].EventName}] = struct{}{}
		}
	}
	for _, path := range paths {
		for _, seg := range segment(stream, path, weightCol, custom) {
			for i := 0; i+1 < len(seg.events); i++ {
				p := pair{seg.events[i].EventName, seg.events[i+1].EventName}
				set, ok := counts[p]
				if !ok {
					set = make(map[string]struct{})
					counts[p] = set
				}
				set[weightValue(stream, seg.events[i], weightCol, custom)] = struct{}{}
			}
		}
		for _, ev := range path.Events {
			total[weightValue(stream, ev, weightCol, custom)] = struct{}{}
		}
	}

	nodeTotals := make(map[string]float64)
	edges := make([]Edge, 0, len(universe))
	for p := range universe {
		w := float64(len(counts[p]))
		nodeTotals[p.src] += w
		edges = append(edges, Edge{Source: p.src, Target: p.dst, Weight: w})
	}
	switch opts.Norm {
	case NormFull:
		denom := float64(len(total))
		for i := range edges {
			if denom > 0 {
				edges[i].Weight /= denom
			}
		}
	case NormNode:
		for i := range edges {
			if d := nodeTotals[edges[i].Source]; d > 0 {
				edges[i].Weight /= d
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return edges, nil
}

type segmentRun struct {
	events []es.PathRow
}

// segment splits a user path into the groups that adjacency is counted
// within: the whole path for id/user weights, per-value runs of the
// custom column otherwise.
func segment(stream *es.EventStream, path es.UserPath, weightCol string, custom bool) []segmentRun {
	if !custom {
		return []segmentRun{{events: path.Events}}
	}
	var runs []segmentRun
	var cur segmentRun
	var curVal string
	for _, ev := range path.Events {
		v, _ := stream.StringAt(ev.Row, weightCol)
		if len(cur.events) > 0 && v != curVal {
			runs = append(runs, cur)
			cur = segmentRun{}
		}
		curVal = v
		cur.events = append(cur.events, ev)
	}
	if len(cur.events) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

func weightValue(stream *es.EventStream, ev es.PathRow, weightCol string, custom bool) string {
	if !custom {
		if weightCol == stream.Schema().EventID {
			return ev.EventID
		}
		return ev.UserID
	}
	v, _ := stream.StringAt(ev.Row, weightCol)
	return v
}
