// Package resolver is the fixpoint engine that keeps a stack
// configuration internally consistent.
//
// The engine evaluates the priority-ordered rule table in passes: every
// rule whose predicate holds contributes a patch, each applied mutation
// marks the pass dirty, and passes repeat until one is clean. Rule order
// within a pass is fixed at construction (priority descending, then rule
// id), which together with the registry's canonical value forms makes
// resolution deterministic.
//
// Two operating contracts share the same loop:
//
//   - Adaptive never fails: forced changes are applied and recorded, and
//     the dependent field always yields toward its registry default,
//     never the field the user just changed.
//   - Strict never silently overrides an explicitly provided input: the
//     first patch that touches an explicit field aborts resolution with a
//     conflict naming both inputs.
//
// The engine performs no I/O and holds no per-call state, so resolving on
// every UI event is safe; idempotence (a second resolve records zero
// changes) is the contract that prevents correction loops.
package resolver

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/mkstack/mkstack/internal/rules"
	"github.com/mkstack/mkstack/internal/stack"
)

// DefaultMaxPasses bounds the fixpoint iteration. A correctly authored
// rule table converges in two or three passes; hitting the guard is a
// FaultError.
const DefaultMaxPasses = 10

// Change records one Adaptive-mode auto-correction.
type Change struct {
	Rule     string        `json:"rule"`
	Category stack.FieldID `json:"category"` // the rule's driving field
	Field    stack.FieldID `json:"field"`    // the field that was overridden
	From     string        `json:"from"`
	To       string        `json:"to"`
	Message  string        `json:"message"`
}

// Result is the outcome of a resolve pass.
type Result struct {
	Config  stack.Config
	Changes []Change
	// Notes groups change messages by overridden field, for per-field
	// advisory display in the builder.
	Notes map[stack.FieldID][]string
}

// Resolver owns an immutable registry snapshot and a validated,
// priority-sorted rule table.
type Resolver struct {
	reg       *stack.Registry
	table     []rules.Rule
	maxPasses int
	logger    *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the diagnostic logger. Resolution logs only at debug
// level; faults log at error level.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithMaxPasses overrides the iteration guard. Tests use low values to
// exercise fault handling.
func WithMaxPasses(n int) Option {
	return func(r *Resolver) { r.maxPasses = n }
}

// New validates the rule table and returns a Resolver. Table validation
// (unknown fields, duplicate ids, same-tier cycles) happens here, at
// process start, never per resolve call.
func New(reg *stack.Registry, table []rules.Rule, opts ...Option) (*Resolver, error) {
	if err := rules.Validate(reg, table); err != nil {
		return nil, fmt.Errorf("rule table rejected: %w", err)
	}

	sorted := make([]rules.Rule, len(table))
	copy(sorted, table)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].ID < sorted[j].ID
	})

	r := &Resolver{
		reg:       reg,
		table:     sorted,
		maxPasses: DefaultMaxPasses,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Registry exposes the field registry the resolver was built with.
func (r *Resolver) Registry() *stack.Registry { return r.reg }

// Rules returns the priority-sorted rule table.
func (r *Resolver) Rules() []rules.Rule {
	out := make([]rules.Rule, len(r.table))
	copy(out, r.table)
	return out
}

// Resolve runs the Adaptive contract: it always converges to a valid
// configuration, recording a Change for every overridden field. The only
// possible error is a FaultError.
func (r *Resolver) Resolve(cfg stack.Config) (Result, error) {
	return r.run(cfg, nil)
}

// ResolveStrict runs the Strict contract. explicit is the set of fields
// the user actually supplied (an explicitly defaulted value counts);
// resolution stops at the first rule patch that would override one of
// them, returning a ConflictError naming both inputs. Patches to
// non-explicit fields are applied as in Adaptive mode, so a single flag
// like --backend convex still yields a fully consistent result.
func (r *Resolver) ResolveStrict(cfg stack.Config, explicit map[stack.FieldID]bool) (Result, error) {
	if explicit == nil {
		explicit = map[stack.FieldID]bool{}
	}
	return r.run(cfg, explicit)
}

func (r *Resolver) run(cfg stack.Config, explicit map[stack.FieldID]bool) (Result, error) {
	res := Result{
		Config: cfg,
		Notes:  make(map[stack.FieldID][]string),
	}

	for pass := 1; pass <= r.maxPasses; pass++ {
		dirty := false
		for _, rule := range r.table {
			if !rule.When(res.Config) {
				continue
			}
			for _, mut := range rule.Patch(r.reg, res.Config) {
				from := res.Config.ValueOf(mut.Field)
				if from.Equal(mut.Value) {
					continue
				}
				if explicit != nil && explicit[mut.Field] {
					return res, r.conflict(res.Config, rule, mut.Field, from)
				}
				res.Config = res.Config.With(mut.Field, mut.Value)
				change := Change{
					Rule:     rule.ID,
					Category: rule.Driving,
					Field:    mut.Field,
					From:     from.String(),
					To:       mut.Value.String(),
					Message:  fmt.Sprintf("%s changed from %s to %s: %s", mut.Field, from, mut.Value, rule.Note),
				}
				res.Changes = append(res.Changes, change)
				res.Notes[mut.Field] = append(res.Notes[mut.Field], change.Message)
				r.logger.Debug("rule fired",
					"rule", rule.ID, "field", mut.Field,
					"from", change.From, "to", change.To, "pass", pass)
				dirty = true
			}
		}
		if !dirty {
			return res, nil
		}
	}

	err := &FaultError{Passes: r.maxPasses}
	r.logger.Error("resolver fault", "passes", r.maxPasses, "error", err)
	return res, err
}

// conflict builds the Strict-mode error naming the rule's driving input
// and the explicitly provided field its patch would have overridden.
func (r *Resolver) conflict(cfg stack.Config, rule rules.Rule, target stack.FieldID, current stack.Value) error {
	driving := cfg.ValueOf(rule.Driving)
	return &ConflictError{
		Errors: []ValidationError{{
			Code: CodeFlagConflict,
			Message: fmt.Sprintf("%s %s is incompatible with %s %s: %s",
				rule.Driving, driving, target, current, rule.Note),
			Fields: []stack.FieldID{rule.Driving, target},
		}},
	}
}
