package removing

import (
	"context"

	"github.com/pkg/errors"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

// Anchor occurrence selectors for TruncatePaths.
const (
	OccurrenceFirst = "first"
	OccurrenceLast  = "last"
)

// TruncatePaths trims each user path around anchor events. Events
// strictly before the DropBefore anchor and strictly after the DropAfter
// anchor are soft-deleted; the anchors themselves survive. Shifts move
// the cut boundary by whole timestamp-distinct positions, so events
// sharing a timestamp are always kept or dropped together. A path
// without the anchor event stays untouched on that side.
type TruncatePaths struct {
	DropBefore       string
	DropAfter        string
	OccurrenceBefore string // first (default) or last
	OccurrenceAfter  string
	ShiftBefore      int
	ShiftAfter       int
}

func (*TruncatePaths) Name() string { return "truncate_paths" }

func (p *TruncatePaths) validate() error {
	if p.DropBefore == "" && p.DropAfter == "" {
		return errors.New("truncate_paths: at least one of drop_before and drop_after must be set")
	}
	for _, occ := range []string{p.OccurrenceBefore, p.OccurrenceAfter} {
		switch occ {
		case "", OccurrenceFirst, OccurrenceLast:
		default:
			return errors.Errorf("truncate_paths: unknown occurrence %q", occ)
		}
	}
	return nil
}

func (p *TruncatePaths) Apply(ctx context.Context, in *es.EventStream) (*es.EventStream, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	cf := in.ChildFrame()
	for _, path := range in.UserPaths() {
		groups := timestampGroups(path.Events)

		// group bounds; a side without its anchor stays unbounded. A
		// shift may push a bound past either end of the path: a negative
		// hi empties the path, a negative lo deletes nothing.
		var lo, hi int
		var hasLo, hasHi bool
		if p.DropBefore != "" {
			if g, ok := anchorGroup(path.Events, groups, p.DropBefore, p.OccurrenceBefore); ok {
				lo, hasLo = g+p.ShiftBefore, true
			}
		}
		if p.DropAfter != "" {
			if g, ok := anchorGroup(path.Events, groups, p.DropAfter, p.OccurrenceAfter); ok {
				hi, hasHi = g+p.ShiftAfter, true
			}
		}
		if !hasLo && !hasHi {
			continue
		}
		for i, ev := range path.Events {
			g := groups[i]
			if (hasLo && g < lo) || (hasHi && g > hi) {
				in.AppendChildEvent(cf, es.ChildEvent{
					Ref: ev.EventID, Name: ev.EventName, Type: ev.EventType,
					UserID: path.UserID, Timestamp: ev.Timestamp, Deleted: true,
				})
			}
		}
	}
	return es.NewChild(in, cf)
}

// timestampGroups assigns each path position a group index that only
// advances when the timestamp changes.
func timestampGroups(events []es.PathRow) []int {
	groups := make([]int, len(events))
	g := 0
	for i := range events {
		if i > 0 && !events[i].Timestamp.Equal(events[i-1].Timestamp) {
			g++
		}
		groups[i] = g
	}
	return groups
}

func anchorGroup(events []es.PathRow, groups []int, name, occurrence string) (int, bool) {
	found := -1
	for i, ev := range events {
		if ev.EventName != name {
			continue
		}
		found = groups[i]
		if occurrence != OccurrenceLast {
			break
		}
	}
	return found, found >= 0
}
