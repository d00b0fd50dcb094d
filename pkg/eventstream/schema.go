package eventstream

// Event type tags. Synthetic events carry a non-raw type and usually an
// event name equal to the type.
const (
	EventTypeRaw                  = "raw"
	EventTypePathStart            = "path_start"
	EventTypePathEnd              = "path_end"
	EventTypeNewUser              = "new_user"
	EventTypeExistingUser         = "existing_user"
	EventTypeSessionStart         = "session_start"
	EventTypeSessionEnd           = "session_end"
	EventTypeSessionStartTrunc    = "session_start_truncated"
	EventTypeSessionEndTrunc      = "session_end_truncated"
	EventTypeGroupAlias           = "group_alias"
	EventTypePositiveTarget       = "positive_target"
	EventTypeNegativeTarget       = "negative_target"
	EventTypeLostUser             = "lost_user"
	EventTypeAbsentUser           = "absent_user"
	EventTypeTruncatedLeft        = "truncated_left"
	EventTypeTruncatedRight       = "truncated_right"
	EventTypeSynthetic            = "synthetic"
)

// DefaultEventsOrder is the priority list used to break ties between
// events sharing a timestamp. Lower index sorts earlier; types absent
// from the list sort after all listed ones. Downstream step matrices and
// sankey layouts depend on this exact order.
func DefaultEventsOrder() []string {
	return []string{
		"profile",
		EventTypePathStart,
		EventTypeNewUser,
		EventTypeExistingUser,
		EventTypeTruncatedLeft,
		EventTypeSessionStart,
		EventTypeSessionStartTrunc,
		EventTypeGroupAlias,
		EventTypeRaw,
		"raw_sleep",
		EventTypeSynthetic,
		"synthetic_sleep",
		EventTypePositiveTarget,
		EventTypeNegativeTarget,
		EventTypeSessionEndTrunc,
		EventTypeSessionEnd,
		"session_sleep",
		EventTypeTruncatedRight,
		EventTypeAbsentUser,
		EventTypeLostUser,
		EventTypePathEnd,
	}
}

// Prefixes for auxiliary frame columns.
const (
	RawColPrefix = "raw_"
	RefColPrefix = "ref_"
	DeletedCol   = "_deleted"
)

// Schema names the canonical columns of an event stream plus the
// analyst-declared custom columns that ride along with every
// transformation.
type Schema struct {
	EventID        string
	EventType      string
	EventName      string
	EventTimestamp string
	UserID         string
	EventIndex     string
	CustomCols     []string
}

func DefaultSchema() Schema {
	return Schema{
		EventID:        "event_id",
		EventType:      "event_type",
		EventName:      "event",
		EventTimestamp: "timestamp",
		UserID:         "user_id",
		EventIndex:     "event_index",
	}
}

func (s Schema) Copy() Schema {
	out := s
	out.CustomCols = append([]string(nil), s.CustomCols...)
	return out
}

// Equal reports whether the canonical columns of two schemas match.
// Custom columns do not take part in the comparison; appends and joins
// retain their union.
func (s Schema) Equal(other Schema) bool {
	return s.EventID == other.EventID &&
		s.EventType == other.EventType &&
		s.EventName == other.EventName &&
		s.EventTimestamp == other.EventTimestamp &&
		s.UserID == other.UserID &&
		s.EventIndex == other.EventIndex
}

// Cols returns the canonical columns followed by the custom columns.
func (s Schema) Cols() []string {
	cols := []string{s.EventID, s.EventType, s.EventName, s.EventTimestamp, s.UserID, s.EventIndex}
	return append(cols, s.CustomCols...)
}

// HasCustomCol reports whether name is a declared custom column.
func (s Schema) HasCustomCol(name string) bool {
	for _, c := range s.CustomCols {
		if c == name {
			return true
		}
	}
	return false
}

// ToRawSchema translates the canonical schema into a raw-data schema with
// identity-mapped custom columns.
func (s Schema) ToRawSchema() RawSchema {
	raw := RawSchema{
		EventName:      s.EventName,
		EventTimestamp: s.EventTimestamp,
		UserID:         s.UserID,
		EventType:      s.EventType,
		EventID:        s.EventID,
		EventIndex:     s.EventIndex,
	}
	for _, c := range s.CustomCols {
		raw.CustomCols = append(raw.CustomCols, RawCustomCol{RawDataCol: c, CustomCol: c})
	}
	return raw
}

// mergeCustomCols returns the union of two custom column lists,
// preserving the order of first appearance.
func mergeCustomCols(a, b []string) []string {
	out := append([]string(nil), a...)
	seen := make(map[string]struct{}, len(a))
	for _, c := range a {
		seen[c] = struct{}{}
	}
	for _, c := range b {
		if _, ok := seen[c]; !ok {
			out = append(out, c)
			seen[c] = struct{}{}
		}
	}
	return out
}

// mergeRawCustomCols keeps the raw schema in step with a custom-col
// union: custom columns it does not know yet join as identity mappings.
func mergeRawCustomCols(dst []RawCustomCol, cols []string) []RawCustomCol {
	have := make(map[string]struct{}, len(dst))
	for _, cc := range dst {
		have[cc.CustomCol] = struct{}{}
	}
	for _, c := range cols {
		if _, ok := have[c]; !ok {
			dst = append(dst, RawCustomCol{RawDataCol: c, CustomCol: c})
			have[c] = struct{}{}
		}
	}
	return dst
}

// RawCustomCol maps a raw input column onto a declared custom column.
type RawCustomCol struct {
	RawDataCol string
	CustomCol  string
}

// RawSchema maps raw input columns onto canonical fields. EventType,
// EventID and EventIndex are optional in the input.
type RawSchema struct {
	EventName      string
	EventTimestamp string
	UserID         string
	EventType      string
	EventID        string
	EventIndex     string
	CustomCols     []RawCustomCol
}

func DefaultRawSchema() RawSchema {
	return RawSchema{
		EventName:      "event",
		EventTimestamp: "timestamp",
		UserID:         "user_id",
		EventType:      "event_type",
		EventID:        "event_id",
		EventIndex:     "event_index",
	}
}

func (s RawSchema) Copy() RawSchema {
	out := s
	out.CustomCols = append([]RawCustomCol(nil), s.CustomCols...)
	return out
}

// mapped reports whether a raw column name is claimed by the schema.
func (s RawSchema) mapped(name string) bool {
	if name == s.EventName || name == s.EventTimestamp || name == s.UserID {
		return true
	}
	if name != "" && (name == s.EventType || name == s.EventID || name == s.EventIndex) {
		return true
	}
	for _, cc := range s.CustomCols {
		if cc.RawDataCol == name {
			return true
		}
	}
	return false
}
