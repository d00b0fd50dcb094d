package editing

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

// Loop collapse suffix modes.
const (
	SuffixNone  = ""
	SuffixLoop  = "loop"
	SuffixCount = "count"
)

// Loop collapse timestamp aggregates.
const (
	AggMin  = "min"
	AggMax  = "max"
	AggMean = "mean"
)

// CollapseLoops replaces every maximal run (length >= 2) of identical
// event names inside a user path with one synthetic group_alias event.
// The alias name is the original name, "<name>_loop", or
// "<name>_loop_<k>" with k the run length, per Suffix; the alias
// timestamp aggregates the run per TimeAgg. The original runs are
// soft-deleted through the child join.
type CollapseLoops struct {
	Suffix  string
	TimeAgg string
}

func (*CollapseLoops) Name() string { return "collapse_loops" }

func (p *CollapseLoops) validate() error {
	switch p.Suffix {
	case SuffixNone, SuffixLoop, SuffixCount:
	default:
		return errors.Errorf("collapse_loops: unknown suffix %q", p.Suffix)
	}
	switch p.TimeAgg {
	case "", AggMin, AggMax, AggMean:
	default:
		return errors.Errorf("collapse_loops: unknown time_agg %q", p.TimeAgg)
	}
	return nil
}

func (p *CollapseLoops) Apply(ctx context.Context, in *es.EventStream) (*es.EventStream, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	agg := p.TimeAgg
	if agg == "" {
		agg = AggMin
	}

	cf := in.ChildFrame()
	for _, path := range in.UserPaths() {
		i := 0
		for i < len(path.Events) {
			j := i + 1
			for j < len(path.Events) && path.Events[j].EventName == path.Events[i].EventName {
				j++
			}
			if run := path.Events[i:j]; len(run) >= 2 {
				in.AppendChildEvent(cf, es.ChildEvent{
					Name:      aliasName(run[0].EventName, len(run), p.Suffix),
					Type:      es.EventTypeGroupAlias,
					UserID:    path.UserID,
					Timestamp: aggTimestamp(run, agg),
				})
				for _, ev := range run {
					in.AppendChildEvent(cf, es.ChildEvent{
						Ref: ev.EventID, Name: ev.EventName, Type: ev.EventType,
						UserID: path.UserID, Timestamp: ev.Timestamp, Deleted: true,
					})
				}
			}
			i = j
		}
	}
	return es.NewChild(in, cf)
}

func aliasName(name string, k int, suffix string) string {
	switch suffix {
	case SuffixLoop:
		return name + "_loop"
	case SuffixCount:
		return name + "_loop_" + strconv.Itoa(k)
	default:
		return name
	}
}

func aggTimestamp(run []es.PathRow, agg string) time.Time {
	switch agg {
	case AggMax:
		return run[len(run)-1].Timestamp
	case AggMean:
		var sum int64
		for _, ev := range run {
			sum += ev.Timestamp.UnixNano()
		}
		return time.Unix(0, sum/int64(len(run))).UTC()
	default:
		return run[0].Timestamp
	}
}
