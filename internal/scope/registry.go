package scope

import "strings"

// Scope identifies one execution context: environment × venue × strategy
// family × market. It is the unit of isolation for summaries, trade ledgers,
// and ML/reconciliation state on disk.
type Scope struct {
	Env    string // "paper" or "live"
	Venue  string
	Family string
	Market string
}

// Dir returns the canonical on-disk directory name for the scope.
func (s Scope) Dir() string {
	return strings.Join([]string{s.Env, s.Venue, s.Family, s.Market}, "-")
}

// String returns the canonical name, same as Dir.
func (s Scope) String() string { return s.Dir() }

// Registry resolves scope names. It holds the canonical scopes plus a short
// alias table so every reader and the analyzer share one mapping instead of
// each keeping its own copy.
type Registry struct {
	scopes  map[string]Scope // canonical dir name -> scope
	aliases map[string]string
}

// NewRegistry builds a registry over the given scopes and aliases. Alias keys
// are lowercased; values must be canonical dir names of registered scopes
// (unknown targets are kept but resolve to nothing, matching the
// absent-not-error contract).
func NewRegistry(scopes []Scope, aliases map[string]string) *Registry {
	r := &Registry{
		scopes:  make(map[string]Scope, len(scopes)),
		aliases: make(map[string]string, len(aliases)),
	}
	for _, s := range scopes {
		r.scopes[s.Dir()] = s
	}
	for alias, canonical := range aliases {
		r.aliases[strings.ToLower(strings.TrimSpace(alias))] = canonical
	}
	return r
}

// Resolve maps a canonical name or alias to its scope. The second return is
// false when the name is unknown; callers treat that as an empty stream, never
// as an error.
func (r *Registry) Resolve(name string) (Scope, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := r.aliases[key]; ok {
		key = canonical
	}
	s, ok := r.scopes[key]
	return s, ok
}

// Scopes returns all registered scopes in no particular order.
func (r *Registry) Scopes() []Scope {
	out := make([]Scope, 0, len(r.scopes))
	for _, s := range r.scopes {
		out = append(out, s)
	}
	return out
}
