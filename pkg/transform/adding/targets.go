package adding

import (
	"context"

	"github.com/pkg/errors"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

// TargetSelector picks at most one row per user among the candidate
// target events. Downstream analyses assume a single selected row per
// user; selectors violating that contract fail the processor.
type TargetSelector func(in *es.EventStream, targets []string) ([]es.PathRow, error)

// firstOccurrence is the default selector: for each user, the earliest
// visible event whose name is in the target list.
func firstOccurrence(in *es.EventStream, targets []string) ([]es.PathRow, error) {
	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		set[t] = struct{}{}
	}
	var rows []es.PathRow
	for _, p := range in.UserPaths() {
		for _, ev := range p.Events {
			if _, ok := set[ev.EventName]; ok {
				rows = append(rows, ev)
				break
			}
		}
	}
	return rows, nil
}

func applyTargets(in *es.EventStream, targets []string, sel TargetSelector, eventType string) (*es.EventStream, error) {
	if len(targets) == 0 {
		return nil, errors.Errorf("%s: empty target list", eventType)
	}
	if sel == nil {
		sel = firstOccurrence
	}
	rows, err := sel(in, targets)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(rows))
	for _, ev := range rows {
		if _, dup := seen[ev.UserID]; dup {
			return nil, errors.Errorf("%s: selector returned more than one row for user %q", eventType, ev.UserID)
		}
		seen[ev.UserID] = struct{}{}
	}

	cf := in.ChildFrame()
	for _, ev := range rows {
		in.AppendChildEvent(cf, es.ChildEvent{
			Name:      eventType + "_" + ev.EventName,
			Type:      eventType,
			UserID:    ev.UserID,
			Timestamp: ev.Timestamp,
		})
	}
	return es.NewChild(in, cf)
}

// AddPositiveEvents injects one synthetic positive_target event per user
// at the selected target occurrence; the parent events stay in place.
type AddPositiveEvents struct {
	Targets []string
	Func    TargetSelector
}

func (*AddPositiveEvents) Name() string { return "add_positive_events" }

func (p *AddPositiveEvents) Apply(ctx context.Context, in *es.EventStream) (*es.EventStream, error) {
	return applyTargets(in, p.Targets, p.Func, es.EventTypePositiveTarget)
}

// AddNegativeEvents mirrors AddPositiveEvents with negative_target.
type AddNegativeEvents struct {
	Targets []string
	Func    TargetSelector
}

func (*AddNegativeEvents) Name() string { return "add_negative_events" }

func (p *AddNegativeEvents) Apply(ctx context.Context, in *es.EventStream) (*es.EventStream, error) {
	return applyTargets(in, p.Targets, p.Func, es.EventTypeNegativeTarget)
}
