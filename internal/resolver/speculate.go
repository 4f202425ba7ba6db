package resolver

import "github.com/mkstack/mkstack/internal/stack"

// IsCompatible reports whether candidate would survive resolution if the
// user selected it now. It clones the configuration, applies the field's
// own toggle semantics for candidate, resolves adaptively, and checks
// whether the candidate is still selected afterwards.
//
// Pure and side-effect-free: used to grey out options before they are
// chosen, both in the prompt chain and the visual builder. Deselecting a
// set member is always allowed.
func (r *Resolver) IsCompatible(cfg stack.Config, id stack.FieldID, candidate string) bool {
	f, ok := r.reg.Lookup(id)
	if !ok {
		return false
	}
	if f.Arity == stack.Multi && cfg.Has(id, candidate) {
		return true
	}

	res, err := r.Resolve(r.reg.Toggle(cfg, id, candidate))
	if err != nil {
		return false
	}
	if f.Arity == stack.Multi {
		return res.Config.Has(id, candidate)
	}
	return res.Config.ScalarOf(id) == candidate
}

// OptionMatrix evaluates IsCompatible for every domain value of every
// field against the given configuration. The builder uses it to render
// greyed-out options after each edit.
func (r *Resolver) OptionMatrix(cfg stack.Config) map[stack.FieldID]map[string]bool {
	matrix := make(map[stack.FieldID]map[string]bool)
	for _, f := range r.reg.Fields() {
		row := make(map[string]bool, len(f.Domain))
		for _, candidate := range f.Domain {
			row[candidate] = r.IsCompatible(cfg, f.ID, candidate)
		}
		matrix[f.ID] = row
	}
	return matrix
}
