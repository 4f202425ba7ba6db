package stack

// Config is the current mapping of every stack field to its selected
// value(s). It is immutable by convention: With returns a copy, and no
// accessor exposes the backing map. One Config is live per session.
type Config struct {
	m map[FieldID]Value
}

// ValueOf returns the current value for a field. The zero Value is
// returned for unknown fields.
func (c Config) ValueOf(id FieldID) Value {
	return c.m[id]
}

// ScalarOf is shorthand for ValueOf(id).AsScalar().
func (c Config) ScalarOf(id FieldID) string {
	return c.m[id].AsScalar()
}

// BoolOf is shorthand for ValueOf(id).AsBool().
func (c Config) BoolOf(id FieldID) bool {
	return c.m[id].AsBool()
}

// MembersOf is shorthand for ValueOf(id).AsMembers().
func (c Config) MembersOf(id FieldID) []string {
	return c.m[id].AsMembers()
}

// Has reports set membership for a set-valued field.
func (c Config) Has(id FieldID, member string) bool {
	return c.m[id].Has(member)
}

// HasAny reports whether any of the given members is selected.
func (c Config) HasAny(id FieldID, members ...string) bool {
	for _, m := range members {
		if c.m[id].Has(m) {
			return true
		}
	}
	return false
}

// With returns a copy of the configuration with one field replaced.
func (c Config) With(id FieldID, v Value) Config {
	m := make(map[FieldID]Value, len(c.m)+1)
	for k, val := range c.m {
		m[k] = val
	}
	m[id] = v
	return Config{m: m}
}

// Equal compares two configurations field by field.
func (c Config) Equal(o Config) bool {
	if len(c.m) != len(o.m) {
		return false
	}
	for k, v := range c.m {
		if !v.Equal(o.m[k]) {
			return false
		}
	}
	return true
}

// Len returns the number of fields carried by the configuration.
func (c Config) Len() int { return len(c.m) }
