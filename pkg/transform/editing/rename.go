package editing

import (
	"context"

	"github.com/pkg/errors"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

// RenameRule maps a set of event names onto one group name.
type RenameRule struct {
	GroupName   string
	ChildEvents []string
}

// RenameEvents replaces the name of every event listed in a rule's
// ChildEvents with the rule's GroupName. Event types stay untouched.
type RenameEvents struct {
	Rules []RenameRule
}

func (*RenameEvents) Name() string { return "rename" }

func (p *RenameEvents) validate() error {
	if len(p.Rules) == 0 {
		return errors.New("rename: at least one rule is required")
	}
	for i, r := range p.Rules {
		if r.GroupName == "" {
			return errors.Errorf("rename: rule %d misses group_name", i)
		}
		if len(r.ChildEvents) == 0 {
			return errors.Errorf("rename: rule %q has no child events", r.GroupName)
		}
	}
	return nil
}

func (p *RenameEvents) Apply(ctx context.Context, in *es.EventStream) (*es.EventStream, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	target := make(map[string]string)
	for _, r := range p.Rules {
		for _, ev := range r.ChildEvents {
			target[ev] = r.GroupName
		}
	}
	s := in.Schema()
	cf := in.ChildFrame()
	for _, path := range in.UserPaths() {
		for _, ev := range path.Events {
			name, ok := target[ev.EventName]
			if !ok {
				continue
			}
			row := in.CopyChildRow(cf, ev.Row)
			_ = cf.SetCell(row, s.EventName, name)
		}
	}
	return es.NewChild(in, cf)
}
