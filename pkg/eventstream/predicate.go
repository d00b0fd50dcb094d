package eventstream

// Mask is a per-row boolean selection over a frame.
type Mask []bool

// Predicate selects rows of a frame. Analyst-supplied callables are the
// escape hatch; the combinators below form a small typed alternative.
type Predicate func(f *Frame, s Schema) (Mask, error)

// NameIn selects rows whose event name is one of names.
func NameIn(names ...string) Predicate {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(f *Frame, s Schema) (Mask, error) {
		m := make(Mask, f.Rows())
		for r := range m {
			if v, ok := f.StringAt(r, s.EventName); ok {
				_, m[r] = set[v]
			}
		}
		return m, nil
	}
}

// TypeIs selects rows whose event type is one of types.
func TypeIs(types ...string) Predicate {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return func(f *Frame, s Schema) (Mask, error) {
		m := make(Mask, f.Rows())
		for r := range m {
			if v, ok := f.StringAt(r, s.EventType); ok {
				_, m[r] = set[v]
			}
		}
		return m, nil
	}
}

// ColEquals selects rows where a string column equals value.
func ColEquals(col, value string) Predicate {
	return func(f *Frame, s Schema) (Mask, error) {
		m := make(Mask, f.Rows())
		for r := range m {
			if v, ok := f.StringAt(r, col); ok {
				m[r] = v == value
			}
		}
		return m, nil
	}
}

// And combines predicates conjunctively.
func And(ps ...Predicate) Predicate {
	return func(f *Frame, s Schema) (Mask, error) {
		out := make(Mask, f.Rows())
		for i := range out {
			out[i] = true
		}
		for _, p := range ps {
			m, err := p(f, s)
			if err != nil {
				return nil, err
			}
			for i := range out {
				out[i] = out[i] && m[i]
			}
		}
		return out, nil
	}
}

// Or combines predicates disjunctively.
func Or(ps ...Predicate) Predicate {
	return func(f *Frame, s Schema) (Mask, error) {
		out := make(Mask, f.Rows())
		for _, p := range ps {
			m, err := p(f, s)
			if err != nil {
				return nil, err
			}
			for i := range out {
				out[i] = out[i] || m[i]
			}
		}
		return out, nil
	}
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return func(f *Frame, s Schema) (Mask, error) {
		m, err := p(f, s)
		if err != nil {
			return nil, err
		}
		out := make(Mask, len(m))
		for i := range m {
			out[i] = !m[i]
		}
		return out, nil
	}
}
