package main

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v3"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
	"github.com/retentioneering/retentioneering-go/pkg/transform/adding"
	"github.com/retentioneering/retentioneering-go/pkg/transform/editing"
	"github.com/retentioneering/retentioneering-go/pkg/transform/removing"
)

type Config struct {
	Input struct {
		Path      string `json:"path"`
		Type      string `json:"type"` // csv|jsonl|parquet (default csv)
		HasHeader bool   `json:"has_header"`
		Delimiter string `json:"delimiter"`
	} `json:"input"`
	Output struct {
		Path        string `json:"path"`
		Type        string `json:"type"` // csv|jsonl|parquet (default csv)
		Delimiter   string `json:"delimiter"`
		RawCols     bool   `json:"raw_cols"`
		ShowDeleted bool   `json:"show_deleted"`
	} `json:"output"`
	Columns struct {
		UserID    string   `json:"user_id"`
		Event     string   `json:"event"`
		Timestamp string   `json:"timestamp"`
		EventType string   `json:"event_type"`
		Custom    []string `json:"custom"`
	} `json:"columns"`
	EventsOrder []string          `json:"events_order"`
	SampleSize  any               `json:"sample_size"` // int count or float share
	SampleSeed  int64             `json:"sample_seed"`
	Steps       []json.RawMessage `json:"steps"`
	Edgelist    *struct {
		Path      string `json:"path"`
		WeightCol string `json:"weight_col"`
		Norm      string `json:"norm"`
	} `json:"edgelist"`
}

// LoadConfig reads a JSON, YAML or TOML config, picked by extension.
// YAML and TOML are normalized through a JSON round trip so the step
// definitions decode uniformly.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		var generic map[string]any
		if err := yaml.Unmarshal(b, &generic); err != nil {
			return nil, errors.Wrap(err, "parse yaml config")
		}
		if b, err = json.Marshal(generic); err != nil {
			return nil, err
		}
	case ".toml":
		var generic map[string]any
		if err := toml.Unmarshal(b, &generic); err != nil {
			return nil, errors.Wrap(err, "parse toml config")
		}
		if b, err = json.Marshal(generic); err != nil {
			return nil, err
		}
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	cfg.SampleSize = normalizeSampleSize(cfg.SampleSize)
	return &cfg, nil
}

// normalizeSampleSize undoes the JSON round trip's number widening:
// every config number decodes to float64, but an integral value above 1
// can only mean an absolute user count. Shares in (0, 1] stay floats.
func normalizeSampleSize(v any) any {
	if f, ok := v.(float64); ok && f > 1 && f == math.Trunc(f) {
		return int(f)
	}
	return v
}

// RawSchema translates the columns section into a raw-data schema.
// Unset fields keep their defaults.
func (c *Config) RawSchema() *es.RawSchema {
	rs := es.DefaultRawSchema()
	if c.Columns.UserID != "" {
		rs.UserID = c.Columns.UserID
	}
	if c.Columns.Event != "" {
		rs.EventName = c.Columns.Event
	}
	if c.Columns.Timestamp != "" {
		rs.EventTimestamp = c.Columns.Timestamp
	}
	if c.Columns.EventType != "" {
		rs.EventType = c.Columns.EventType
	}
	for _, cc := range c.Columns.Custom {
		rs.CustomCols = append(rs.CustomCols, es.RawCustomCol{RawDataCol: cc, CustomCol: cc})
	}
	return &rs
}

type timeDelta struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

func (d *timeDelta) toTimeDelta() *es.TimeDelta {
	if d == nil {
		return nil
	}
	return &es.TimeDelta{Value: d.Value, Unit: es.TimeUnit(d.Unit)}
}

// BuildProcessor turns one config step into a processor. A step is an
// object with a single key naming the processor.
func BuildProcessor(raw json.RawMessage) (es.Processor, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	if len(probe) != 1 {
		return nil, errors.Errorf("step must have exactly one key, got %d", len(probe))
	}
	var name string
	var v json.RawMessage
	for k, val := range probe {
		name, v = k, val
	}
	switch name {
	case "add_start_end":
		return &adding.AddStartEndEvents{}, nil
	case "split_sessions":
		var s struct {
			Timeout         *timeDelta `json:"timeout"`
			DelimiterEvents []string   `json:"delimiter_events"`
			DelimiterCol    string     `json:"delimiter_col"`
			DelimiterValue  string     `json:"delimiter_value"`
			SessionCol      string     `json:"session_col"`
			MarkTruncated   bool       `json:"mark_truncated"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return &adding.SplitSessions{
			Timeout:         s.Timeout.toTimeDelta(),
			DelimiterEvents: s.DelimiterEvents,
			DelimiterCol:    s.DelimiterCol,
			DelimiterValue:  s.DelimiterValue,
			SessionCol:      s.SessionCol,
			MarkTruncated:   s.MarkTruncated,
		}, nil
	case "add_positive_events":
		var s struct {
			Targets []string `json:"targets"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return &adding.AddPositiveEvents{Targets: s.Targets}, nil
	case "add_negative_events":
		var s struct {
			Targets []string `json:"targets"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return &adding.AddNegativeEvents{Targets: s.Targets}, nil
	case "label_new_users":
		var s struct {
			NewUsers []string `json:"new_users"`
			All      bool     `json:"all"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return &adding.LabelNewUsers{NewUsers: s.NewUsers, All: s.All}, nil
	case "label_lost_users":
		var s struct {
			Timeout   *timeDelta `json:"timeout"`
			LostUsers []string   `json:"lost_users"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return &adding.LabelLostUsers{Timeout: s.Timeout.toTimeDelta(), LostUsers: s.LostUsers}, nil
	case "label_cropped_paths":
		var s struct {
			LeftCutoff  *timeDelta `json:"left_cutoff"`
			RightCutoff *timeDelta `json:"right_cutoff"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return &adding.LabelCroppedPaths{
			LeftCutoff:  s.LeftCutoff.toTimeDelta(),
			RightCutoff: s.RightCutoff.toTimeDelta(),
		}, nil
	case "collapse_loops":
		var s struct {
			Suffix  string `json:"suffix"`
			TimeAgg string `json:"time_agg"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return &editing.CollapseLoops{Suffix: s.Suffix, TimeAgg: s.TimeAgg}, nil
	case "filter_events":
		var s struct {
			KeepNames []string `json:"keep_names"`
			DropNames []string `json:"drop_names"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		switch {
		case len(s.KeepNames) > 0 && len(s.DropNames) > 0:
			return nil, errors.New("filter_events: keep_names and drop_names are mutually exclusive")
		case len(s.KeepNames) > 0:
			return &editing.FilterEvents{Func: es.NameIn(s.KeepNames...)}, nil
		case len(s.DropNames) > 0:
			return &editing.FilterEvents{Func: es.Not(es.NameIn(s.DropNames...))}, nil
		default:
			return nil, errors.New("filter_events: one of keep_names and drop_names is required")
		}
	case "group_events":
		var s struct {
			EventName string   `json:"event_name"`
			EventType string   `json:"event_type"`
			Names     []string `json:"names"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return &editing.GroupEvents{
			EventName: s.EventName,
			EventType: s.EventType,
			Func:      es.NameIn(s.Names...),
		}, nil
	case "group_events_bulk":
		var s struct {
			Rules []struct {
				EventName string   `json:"event_name"`
				EventType string   `json:"event_type"`
				Names     []string `json:"names"`
			} `json:"rules"`
			IgnoreIntersections bool `json:"ignore_intersections"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		bulk := &editing.GroupEventsBulk{IgnoreIntersections: s.IgnoreIntersections}
		for _, r := range s.Rules {
			bulk.Rules = append(bulk.Rules, editing.GroupRule{
				EventName: r.EventName,
				EventType: r.EventType,
				Func:      es.NameIn(r.Names...),
			})
		}
		return bulk, nil
	case "rename":
		var s struct {
			Rules []struct {
				GroupName   string   `json:"group_name"`
				ChildEvents []string `json:"child_events"`
			} `json:"rules"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		p := &editing.RenameEvents{}
		for _, r := range s.Rules {
			p.Rules = append(p.Rules, editing.RenameRule{GroupName: r.GroupName, ChildEvents: r.ChildEvents})
		}
		return p, nil
	case "drop_paths":
		var s struct {
			MinSteps int        `json:"min_steps"`
			MinTime  *timeDelta `json:"min_time"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return &removing.DropPaths{MinSteps: s.MinSteps, MinTime: s.MinTime.toTimeDelta()}, nil
	case "truncate_paths":
		var s struct {
			DropBefore       string `json:"drop_before"`
			DropAfter        string `json:"drop_after"`
			OccurrenceBefore string `json:"occurrence_before"`
			OccurrenceAfter  string `json:"occurrence_after"`
			ShiftBefore      int    `json:"shift_before"`
			ShiftAfter       int    `json:"shift_after"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return &removing.TruncatePaths{
			DropBefore:       s.DropBefore,
			DropAfter:        s.DropAfter,
			OccurrenceBefore: s.OccurrenceBefore,
			OccurrenceAfter:  s.OccurrenceAfter,
			ShiftBefore:      s.ShiftBefore,
			ShiftAfter:       s.ShiftAfter,
		}, nil
	default:
		return nil, errors.Errorf("unknown step %q", name)
	}
}
