package stack

import (
	"fmt"
	"strings"
)

// FieldID identifies one configuration field.
type FieldID string

// The stack fields, in registry (and prompt) order.
const (
	FieldBackend        FieldID = "backend"
	FieldRuntime        FieldID = "runtime"
	FieldDatabase       FieldID = "database"
	FieldORM            FieldID = "orm"
	FieldAuth           FieldID = "auth"
	FieldDBSetup        FieldID = "db-setup"
	FieldAPI            FieldID = "api"
	FieldFrontend       FieldID = "frontend"
	FieldAddons         FieldID = "addons"
	FieldExamples       FieldID = "examples"
	FieldWebDeploy      FieldID = "web-deploy"
	FieldPackageManager FieldID = "package-manager"
	FieldGit            FieldID = "git"
	FieldInstall        FieldID = "install"
)

// None is the shared "explicitly nothing" domain value. For set-valued
// fields it doubles as the empty-set sentinel on the command line.
const None = "none"

// Arity distinguishes single-valued from set-valued fields.
type Arity int

const (
	Single Arity = iota
	Multi
)

// MemberGroup names a mutually exclusive subgroup of a set-valued field's
// domain. Toggling a member on removes any other member of the same group,
// mirroring single-select behavior inside a multi-select field.
type MemberGroup string

const (
	// GroupWeb covers web frontends: at most one per configuration.
	GroupWeb MemberGroup = "web"
	// GroupNative covers native frontends: at most one per configuration.
	GroupNative MemberGroup = "native"
)

// Field is the static metadata for one configuration field.
type Field struct {
	ID         FieldID
	Arity      Arity
	Domain     []string // legal values, in display order
	Bool       bool     // boolean field (domain is {"true","false"})
	AllowEmpty bool     // set-valued fields only: empty set is legal
	Flag       string   // long CLI flag name

	// Groups maps set members to their exclusive group, if any.
	Groups map[string]MemberGroup

	// Default is the static default. When defaultFn is set the effective
	// default depends on the rest of the configuration; use
	// Registry.DefaultFor, never Default directly.
	Default   Value
	defaultFn func(Config) Value
}

// Registry holds the full field table. It is immutable after construction;
// every session clones the default snapshot via Defaults or Merge.
type Registry struct {
	fields []Field
	index  map[FieldID]int
}

// DomainError reports a value outside its field's declared domain.
type DomainError struct {
	Field FieldID
	Value string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: unsupported value %q", e.Field, e.Value)
}

// NewRegistry builds the standard mkstack field table.
//
// The ORM default is conditional on the selected database: drizzle for
// sqlite, prisma for postgres/mysql, mongoose for mongodb, none when no
// database is selected. This is what lets cascade rules "reset to default"
// without hardcoding values.
func NewRegistry() *Registry {
	boolDomain := []string{"true", "false"}

	fields := []Field{
		{
			ID:      FieldBackend,
			Domain:  []string{"hono", "express", "fastify", "elysia", "next", "convex", None},
			Flag:    "backend",
			Default: Scalar("hono"),
		},
		{
			ID:      FieldRuntime,
			Domain:  []string{"bun", "node", "workers", None},
			Flag:    "runtime",
			Default: Scalar("bun"),
		},
		{
			ID:      FieldDatabase,
			Domain:  []string{"sqlite", "postgres", "mysql", "mongodb", None},
			Flag:    "database",
			Default: Scalar("sqlite"),
		},
		{
			ID:      FieldORM,
			Domain:  []string{"drizzle", "prisma", "mongoose", None},
			Flag:    "orm",
			Default: Scalar("drizzle"),
			defaultFn: func(c Config) Value {
				switch c.ScalarOf(FieldDatabase) {
				case "sqlite":
					return Scalar("drizzle")
				case "postgres", "mysql":
					return Scalar("prisma")
				case "mongodb":
					return Scalar("mongoose")
				default:
					return Scalar(None)
				}
			},
		},
		{
			ID:      FieldAuth,
			Domain:  boolDomain,
			Bool:    true,
			Flag:    "auth",
			Default: Bool(true),
		},
		{
			ID:      FieldDBSetup,
			Domain:  []string{"turso", "neon", "prisma-postgres", "mongodb-atlas", "supabase", "docker", None},
			Flag:    "db-setup",
			Default: Scalar(None),
		},
		{
			ID:      FieldAPI,
			Domain:  []string{"trpc", "orpc", None},
			Flag:    "api",
			Default: Scalar("trpc"),
		},
		{
			ID:         FieldFrontend,
			Arity:      Multi,
			AllowEmpty: true,
			Domain: []string{
				"tanstack-router", "react-router", "tanstack-start", "next",
				"nuxt", "svelte", "solid", "native-nativewind", "native-unistyles",
			},
			Groups: map[string]MemberGroup{
				"tanstack-router":   GroupWeb,
				"react-router":      GroupWeb,
				"tanstack-start":    GroupWeb,
				"next":              GroupWeb,
				"nuxt":              GroupWeb,
				"svelte":            GroupWeb,
				"solid":             GroupWeb,
				"native-nativewind": GroupNative,
				"native-unistyles":  GroupNative,
			},
			Flag:    "frontend",
			Default: Members("tanstack-router"),
		},
		{
			ID:         FieldAddons,
			Arity:      Multi,
			AllowEmpty: true,
			Domain:     []string{"pwa", "tauri", "starlight", "biome", "husky", "turborepo"},
			Flag:       "addons",
			Default:    Members("turborepo"),
		},
		{
			ID:         FieldExamples,
			Arity:      Multi,
			AllowEmpty: true,
			Domain:     []string{"todo", "ai"},
			Flag:       "examples",
			Default:    Members("todo"),
		},
		{
			ID:      FieldWebDeploy,
			Domain:  []string{"workers", None},
			Flag:    "web-deploy",
			Default: Scalar(None),
		},
		{
			ID:      FieldPackageManager,
			Domain:  []string{"npm", "pnpm", "bun"},
			Flag:    "package-manager",
			Default: Scalar("bun"),
		},
		{
			ID:      FieldGit,
			Domain:  boolDomain,
			Bool:    true,
			Flag:    "git",
			Default: Bool(true),
		},
		{
			ID:      FieldInstall,
			Domain:  boolDomain,
			Bool:    true,
			Flag:    "install",
			Default: Bool(true),
		},
	}

	index := make(map[FieldID]int, len(fields))
	for i, f := range fields {
		index[f.ID] = i
	}
	return &Registry{fields: fields, index: index}
}

// Fields returns the field table in registry order.
func (r *Registry) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Lookup finds a field by id.
func (r *Registry) Lookup(id FieldID) (Field, bool) {
	i, ok := r.index[id]
	if !ok {
		return Field{}, false
	}
	return r.fields[i], true
}

// ByFlag finds a field by its long flag name.
func (r *Registry) ByFlag(flag string) (Field, bool) {
	for _, f := range r.fields {
		if f.Flag == flag {
			return f, true
		}
	}
	return Field{}, false
}

// DefaultFor returns the effective default for a field given the rest of
// the configuration. Conditional defaults (ORM) consult cfg; everything
// else is static.
func (r *Registry) DefaultFor(id FieldID, cfg Config) Value {
	f, ok := r.Lookup(id)
	if !ok {
		return Value{}
	}
	if f.defaultFn != nil {
		return r.Canonical(id, f.defaultFn(cfg))
	}
	return r.Canonical(id, f.Default)
}

// Defaults builds a fresh default configuration snapshot. Conditional
// defaults are evaluated in registry order, so a field's default may
// depend only on fields declared before it.
func (r *Registry) Defaults() Config {
	cfg := Config{m: make(map[FieldID]Value, len(r.fields))}
	for _, f := range r.fields {
		cfg.m[f.ID] = r.DefaultFor(f.ID, cfg)
	}
	return cfg
}

// Merge overlays user-provided values on a fresh default snapshot.
// Provided values win; unset fields take their (possibly conditional)
// default evaluated against the merged state so far. Domain violations
// are collected, not fail-fast, so a caller can report all of them.
func (r *Registry) Merge(partial map[FieldID]Value) (Config, []*DomainError) {
	var errs []*DomainError
	cfg := Config{m: make(map[FieldID]Value, len(r.fields))}
	for _, f := range r.fields {
		v, ok := partial[f.ID]
		if !ok {
			cfg.m[f.ID] = r.DefaultFor(f.ID, cfg)
			continue
		}
		if err := r.Validate(f.ID, v); err != nil {
			errs = append(errs, err)
			cfg.m[f.ID] = r.DefaultFor(f.ID, cfg)
			continue
		}
		cfg.m[f.ID] = r.Canonical(f.ID, v)
	}
	for id := range partial {
		if _, ok := r.index[id]; !ok {
			errs = append(errs, &DomainError{Field: id, Value: partial[id].String()})
		}
	}
	return cfg, errs
}

// Validate checks a value against its field's declared domain.
func (r *Registry) Validate(id FieldID, v Value) *DomainError {
	f, ok := r.Lookup(id)
	if !ok {
		return &DomainError{Field: id, Value: v.String()}
	}
	if f.Arity == Single {
		if v.IsSet() {
			return &DomainError{Field: id, Value: v.String()}
		}
		if !contains(f.Domain, v.AsScalar()) {
			return &DomainError{Field: id, Value: v.AsScalar()}
		}
		return nil
	}
	if !v.IsSet() {
		return &DomainError{Field: id, Value: v.String()}
	}
	members := v.AsMembers()
	if len(members) == 0 && !f.AllowEmpty {
		return &DomainError{Field: id, Value: None}
	}
	for _, m := range members {
		if !contains(f.Domain, m) {
			return &DomainError{Field: id, Value: m}
		}
	}
	return nil
}

// Canonical normalizes a set value into domain order and drops duplicate
// members. Scalar values pass through. Every write path goes through here
// so that equal configurations are structurally identical.
func (r *Registry) Canonical(id FieldID, v Value) Value {
	if !v.IsSet() {
		return v
	}
	f, ok := r.Lookup(id)
	if !ok {
		return v
	}
	ordered := make([]string, 0, len(v.set))
	for _, d := range f.Domain {
		if v.Has(d) && !contains(ordered, d) {
			ordered = append(ordered, d)
		}
	}
	return Value{set: ordered, multi: true}
}

// Toggle applies a field's own selection semantics for candidate:
// scalar fields replace their value, set fields flip membership, and
// toggling on a grouped member evicts any same-group sibling.
func (r *Registry) Toggle(cfg Config, id FieldID, candidate string) Config {
	f, ok := r.Lookup(id)
	if !ok {
		return cfg
	}
	if f.Arity == Single {
		return cfg.With(id, Scalar(candidate))
	}
	cur := cfg.ValueOf(id)
	if cur.Has(candidate) {
		return cfg.With(id, r.Canonical(id, cur.Without(candidate)))
	}
	if g, grouped := f.Groups[candidate]; grouped {
		for _, m := range cur.AsMembers() {
			if f.Groups[m] == g {
				cur = cur.Without(m)
			}
		}
	}
	return cfg.With(id, r.Canonical(id, cur.With(candidate)))
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// ParseValue parses a raw string into a Value for the given field,
// honoring the "none" empty-set sentinel and comma-joined member lists
// for set-valued fields. The result is canonicalized but not validated.
func (r *Registry) ParseValue(id FieldID, raw string) Value {
	f, ok := r.Lookup(id)
	if !ok || f.Arity == Single {
		return Scalar(raw)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == None {
		return EmptySet()
	}
	parts := strings.Split(raw, ",")
	members := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			members = append(members, p)
		}
	}
	return r.Canonical(id, Members(members...))
}
