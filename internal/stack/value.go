package stack

import "strings"

// Value holds the current selection for one field: a scalar for
// single-valued fields, a member list for set-valued fields.
//
// Values are immutable. Mutating helpers return a new Value and never
// touch the receiver's backing slice.
type Value struct {
	scalar string
	set    []string
	multi  bool
}

// Scalar creates a single-valued Value.
func Scalar(s string) Value {
	return Value{scalar: s}
}

// Bool creates a boolean Value. Boolean fields are scalar fields whose
// domain is exactly {"true", "false"}.
func Bool(b bool) Value {
	if b {
		return Value{scalar: "true"}
	}
	return Value{scalar: "false"}
}

// Members creates a set Value from the given members. The slice is copied.
// Member order is canonicalized by Registry accessors, not here.
func Members(members ...string) Value {
	set := make([]string, len(members))
	copy(set, members)
	return Value{set: set, multi: true}
}

// EmptySet is the empty set Value.
func EmptySet() Value {
	return Value{set: []string{}, multi: true}
}

// IsSet reports whether this is a set-valued Value.
func (v Value) IsSet() bool { return v.multi }

// AsScalar returns the scalar value. Empty string for set values.
func (v Value) AsScalar() string { return v.scalar }

// AsBool interprets a scalar Value as a boolean.
func (v Value) AsBool() bool { return v.scalar == "true" }

// AsMembers returns a copy of the member list. Nil for scalar values.
func (v Value) AsMembers() []string {
	if !v.multi {
		return nil
	}
	out := make([]string, len(v.set))
	copy(out, v.set)
	return out
}

// Has reports whether member is present in a set Value.
func (v Value) Has(member string) bool {
	for _, m := range v.set {
		if m == member {
			return true
		}
	}
	return false
}

// With returns a set Value with member added (no-op if already present).
func (v Value) With(member string) Value {
	if v.Has(member) {
		return v
	}
	set := make([]string, 0, len(v.set)+1)
	set = append(set, v.set...)
	set = append(set, member)
	return Value{set: set, multi: true}
}

// Without returns a set Value with member removed.
func (v Value) Without(member string) Value {
	set := make([]string, 0, len(v.set))
	for _, m := range v.set {
		if m != member {
			set = append(set, m)
		}
	}
	return Value{set: set, multi: true}
}

// Equal compares two Values. Set comparison is order-insensitive so that
// a decoded or hand-built set compares equal to its canonical form.
func (v Value) Equal(o Value) bool {
	if v.multi != o.multi {
		return false
	}
	if !v.multi {
		return v.scalar == o.scalar
	}
	if len(v.set) != len(o.set) {
		return false
	}
	for _, m := range v.set {
		if !o.Has(m) {
			return false
		}
	}
	return true
}

// String renders the Value for messages and flag serialization:
// the scalar itself, or the comma-joined member list. An empty set
// renders as the "none" sentinel so it is distinguishable from an
// omitted field.
func (v Value) String() string {
	if !v.multi {
		return v.scalar
	}
	if len(v.set) == 0 {
		return None
	}
	return strings.Join(v.set, ",")
}
