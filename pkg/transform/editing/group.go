package editing

import (
	"context"

	"github.com/pkg/errors"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

// GroupEvents renames every row the predicate selects to EventName,
// with EventType (group_alias by default). Timestamps and custom column
// values ride along; the source rows are superseded through the child
// join.
type GroupEvents struct {
	EventName string
	EventType string
	Func      es.Predicate
}

func (*GroupEvents) Name() string { return "group_events" }

func (p *GroupEvents) validate() error {
	if p.EventName == "" {
		return errors.New("group_events: event_name is required")
	}
	if p.Func == nil {
		return errors.New("group_events: a predicate is required")
	}
	return nil
}

func (p *GroupEvents) Apply(ctx context.Context, in *es.EventStream) (*es.EventStream, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	rule := GroupRule{EventName: p.EventName, EventType: p.EventType, Func: p.Func}
	bulk := &GroupEventsBulk{Rules: []GroupRule{rule}}
	return bulk.Apply(ctx, in)
}

// GroupRule is one renaming rule of GroupEventsBulk.
type GroupRule struct {
	EventName string
	EventType string // group_alias when empty
	Func      es.Predicate
}

// GroupEventsBulk applies a list of group rules in one pass. A row
// selected by more than one rule is a configuration error unless
// IgnoreIntersections is set, in which case the first rule wins.
type GroupEventsBulk struct {
	Rules               []GroupRule
	IgnoreIntersections bool
}

func (*GroupEventsBulk) Name() string { return "group_events_bulk" }

func (p *GroupEventsBulk) validate() error {
	if len(p.Rules) == 0 {
		return errors.New("group_events_bulk: at least one rule is required")
	}
	for i, r := range p.Rules {
		if r.EventName == "" {
			return errors.Errorf("group_events_bulk: rule %d misses event_name", i)
		}
		if r.Func == nil {
			return errors.Errorf("group_events_bulk: rule %d misses a predicate", i)
		}
	}
	return nil
}

func (p *GroupEventsBulk) Apply(ctx context.Context, in *es.EventStream) (*es.EventStream, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	s := in.Schema()
	vf := in.ToFrame(es.FrameOptions{})

	masks := make([]es.Mask, len(p.Rules))
	for i, rule := range p.Rules {
		m, err := rule.Func(vf, s)
		if err != nil {
			return nil, errors.Wrapf(err, "group_events_bulk: rule %q", rule.EventName)
		}
		if len(m) != vf.Rows() {
			return nil, errors.Errorf("group_events_bulk: rule %q mask length mismatch", rule.EventName)
		}
		masks[i] = m
	}

	// rule index per row, -1 for untouched rows
	chosen := make([]int, vf.Rows())
	for r := range chosen {
		chosen[r] = -1
	}
	for i, m := range masks {
		for r, sel := range m {
			if !sel {
				continue
			}
			if chosen[r] >= 0 {
				if !p.IgnoreIntersections {
					return nil, errors.Errorf("group_events_bulk: rules %q and %q both select row %d",
						p.Rules[chosen[r]].EventName, p.Rules[i].EventName, r)
				}
				continue
			}
			chosen[r] = i
		}
	}

	cf := in.ChildFrame()
	visible := in.VisibleRows()
	for r, i := range chosen {
		if i < 0 {
			continue
		}
		rule := p.Rules[i]
		typ := rule.EventType
		if typ == "" {
			typ = es.EventTypeGroupAlias
		}
		row := in.CopyChildRow(cf, visible[r])
		_ = cf.SetCell(row, s.EventName, rule.EventName)
		_ = cf.SetCell(row, s.EventType, typ)
	}
	return es.NewChild(in, cf)
}
