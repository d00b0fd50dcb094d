package adding

import (
	"context"
	"time"

	"github.com/pkg/errors"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

// LabelNewUsers injects, for each user, a synthetic event at their
// earliest timestamp: new_user when the user belongs to the known-new
// set (or All is set), existing_user otherwise.
type LabelNewUsers struct {
	NewUsers []string
	All      bool
}

func (*LabelNewUsers) Name() string { return "label_new_users" }

func (p *LabelNewUsers) validate() error {
	if p.All && len(p.NewUsers) > 0 {
		return errors.New("label_new_users: either a user set or all, not both")
	}
	if !p.All && len(p.NewUsers) == 0 {
		return errors.New("label_new_users: empty user set")
	}
	return nil
}

func (p *LabelNewUsers) Apply(ctx context.Context, in *es.EventStream) (*es.EventStream, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(p.NewUsers))
	for _, u := range p.NewUsers {
		set[u] = struct{}{}
	}
	cf := in.ChildFrame()
	for _, path := range in.UserPaths() {
		label := es.EventTypeExistingUser
		if p.All {
			label = es.EventTypeNewUser
		} else if _, ok := set[path.UserID]; ok {
			label = es.EventTypeNewUser
		}
		in.AppendChildEvent(cf, es.ChildEvent{
			Name: label, Type: label,
			UserID:    path.UserID,
			Timestamp: path.Events[0].Timestamp,
		})
	}
	return es.NewChild(in, cf)
}

// LabelLostUsers injects, for each user, a synthetic event at their
// latest timestamp: lost_user when the gap to the stream's global end is
// at least Timeout (or the user belongs to the known-lost set),
// absent_user otherwise.
type LabelLostUsers struct {
	Timeout   *es.TimeDelta
	LostUsers []string
}

func (*LabelLostUsers) Name() string { return "label_lost_users" }

func (p *LabelLostUsers) validate() error {
	if p.Timeout != nil && len(p.LostUsers) > 0 {
		return errors.New("label_lost_users: either a timeout or a user set, not both")
	}
	if p.Timeout == nil && len(p.LostUsers) == 0 {
		return errors.New("label_lost_users: a timeout or a user set is required")
	}
	if p.Timeout != nil {
		return p.Timeout.Validate()
	}
	return nil
}

func (p *LabelLostUsers) Apply(ctx context.Context, in *es.EventStream) (*es.EventStream, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	var timeout time.Duration
	if p.Timeout != nil {
		var err error
		timeout, err = p.Timeout.Duration()
		if err != nil {
			return nil, err
		}
	}
	set := make(map[string]struct{}, len(p.LostUsers))
	for _, u := range p.LostUsers {
		set[u] = struct{}{}
	}
	_, globalEnd := in.TimeRange()

	cf := in.ChildFrame()
	for _, path := range in.UserPaths() {
		last := path.Events[len(path.Events)-1]
		label := es.EventTypeAbsentUser
		if p.Timeout != nil {
			if globalEnd.Sub(last.Timestamp) >= timeout {
				label = es.EventTypeLostUser
			}
		} else if _, ok := set[path.UserID]; ok {
			label = es.EventTypeLostUser
		}
		in.AppendChildEvent(cf, es.ChildEvent{
			Name: label, Type: label,
			UserID:    path.UserID,
			Timestamp: last.Timestamp,
		})
	}
	return es.NewChild(in, cf)
}
