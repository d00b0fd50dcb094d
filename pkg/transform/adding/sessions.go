package adding

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

// DefaultSessionCol is written by SplitSessions when no session column
// name is configured.
const DefaultSessionCol = "session_id"

// SplitSessions cuts every user path into sessions, injects synthetic
// session_start / session_end events at the session bounds and writes a
// "<user>_<n>" session id into the session column of every event.
//
// Exactly one splitting mode must be set: a positive Timeout, a set of
// DelimiterEvents, or a DelimiterCol/DelimiterValue pair. With
// MarkTruncated, sessions that touch the global bounds of the stream
// within Timeout additionally receive session_start_truncated /
// session_end_truncated events.
type SplitSessions struct {
	Timeout         *es.TimeDelta
	DelimiterEvents []string
	DelimiterCol    string
	DelimiterValue  string
	SessionCol      string
	MarkTruncated   bool
}

func (*SplitSessions) Name() string { return "split_sessions" }

func (p *SplitSessions) validate() error {
	modes := 0
	if p.Timeout != nil {
		modes++
		if err := p.Timeout.Validate(); err != nil {
			return err
		}
		if p.Timeout.Value <= 0 {
			return errors.New("split_sessions: timeout must be positive")
		}
	}
	if len(p.DelimiterEvents) > 0 {
		modes++
	}
	if p.DelimiterCol != "" {
		modes++
		if p.DelimiterValue == "" {
			return errors.New("split_sessions: delimiter_col requires a delimiter value")
		}
	}
	if modes != 1 {
		return errors.Errorf("split_sessions: exactly one of timeout, delimiter_events, delimiter_col must be set, got %d", modes)
	}
	if p.MarkTruncated && p.Timeout == nil {
		return errors.New("split_sessions: mark_truncated requires a timeout")
	}
	return nil
}

func (p *SplitSessions) Apply(ctx context.Context, in *es.EventStream) (*es.EventStream, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	sessionCol := p.SessionCol
	if sessionCol == "" {
		sessionCol = DefaultSessionCol
	}
	if in.Schema().HasCustomCol(sessionCol) {
		in.Logger().Warn("split_sessions: session column already exists and will be rewritten",
			zap.String("column", sessionCol))
	}

	var timeout time.Duration
	if p.Timeout != nil {
		var err error
		timeout, err = p.Timeout.Duration()
		if err != nil {
			return nil, err
		}
	}
	delims := make(map[string]struct{}, len(p.DelimiterEvents))
	for _, d := range p.DelimiterEvents {
		delims[d] = struct{}{}
	}

	globalStart, globalEnd := in.TimeRange()

	cf := in.ChildFrame(es.ColumnSchema{Name: sessionCol, Type: es.KindString, Nullable: true})
	for _, path := range in.UserPaths() {
		sessions := p.splitPath(in, path, timeout, delims)
		for n, sess := range sessions {
			sid := fmt.Sprintf("%s_%d", path.UserID, n+1)
			first := sess[0]
			last := sess[len(sess)-1]

			in.AppendChildEvent(cf, es.ChildEvent{
				Name: es.EventTypeSessionStart, Type: es.EventTypeSessionStart,
				UserID: path.UserID, Timestamp: first.Timestamp,
				Custom: map[string]any{sessionCol: sid},
			})
			if p.MarkTruncated && first.Timestamp.Sub(globalStart) < timeout {
				in.AppendChildEvent(cf, es.ChildEvent{
					Name: es.EventTypeSessionStartTrunc, Type: es.EventTypeSessionStartTrunc,
					UserID: path.UserID, Timestamp: first.Timestamp,
					Custom: map[string]any{sessionCol: sid},
				})
			}
			for _, ev := range sess {
				row := in.CopyChildRow(cf, ev.Row)
				_ = cf.SetCell(row, sessionCol, sid)
			}
			if p.MarkTruncated && globalEnd.Sub(last.Timestamp) < timeout {
				in.AppendChildEvent(cf, es.ChildEvent{
					Name: es.EventTypeSessionEndTrunc, Type: es.EventTypeSessionEndTrunc,
					UserID: path.UserID, Timestamp: last.Timestamp,
					Custom: map[string]any{sessionCol: sid},
				})
			}
			in.AppendChildEvent(cf, es.ChildEvent{
				Name: es.EventTypeSessionEnd, Type: es.EventTypeSessionEnd,
				UserID: path.UserID, Timestamp: last.Timestamp,
				Custom: map[string]any{sessionCol: sid},
			})
		}
	}
	return es.NewChild(in, cf)
}

// splitPath cuts one user path into session segments. A boundary falls
// between two events when the inter-event gap exceeds the timeout, or
// directly before a delimiter event.
func (p *SplitSessions) splitPath(in *es.EventStream, path es.UserPath, timeout time.Duration, delims map[string]struct{}) [][]es.PathRow {
	var sessions [][]es.PathRow
	var cur []es.PathRow
	for i, ev := range path.Events {
		boundary := false
		if i > 0 {
			switch {
			case p.Timeout != nil:
				boundary = ev.Timestamp.Sub(path.Events[i-1].Timestamp) > timeout
			case len(delims) > 0:
				_, boundary = delims[ev.EventName]
			case p.DelimiterCol != "":
				if v, ok := in.StringAt(ev.Row, p.DelimiterCol); ok {
					boundary = v == p.DelimiterValue
				}
			}
		}
		if boundary {
			sessions = append(sessions, cur)
			cur = nil
		}
		cur = append(cur, ev)
	}
	if len(cur) > 0 {
		sessions = append(sessions, cur)
	}
	return sessions
}
