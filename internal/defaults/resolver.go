// Package defaults fills template slots the caller left empty. Strategies
// are consulted in order and the first to accept a slot supplies its value;
// the final fallback accepts everything, so resolution never fails.
package defaults

import (
	"time"

	"stratforge/internal/logging"
	"stratforge/internal/naming"
	"stratforge/internal/params"
	"stratforge/internal/slots"
)

// Env is what a strategy may consult. It carries the caller's values and
// the configured table, never values produced by other strategies.
type Env struct {
	Caller params.Set
	Table  params.Set
	Rules  naming.Rules
	Now    time.Time
}

// Strategy proposes a value for a single slot.
type Strategy interface {
	Name() string
	Attempt(slot string, env Env) (any, bool)
}

// Resolver runs a chain of strategies.
type Resolver struct {
	strategies []Strategy
	table      params.Set
	rules      naming.Rules
	now        func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTable sets the configured default table.
func WithTable(table map[string]any) Option {
	return func(r *Resolver) { r.table = params.Set(table).Clone() }
}

// WithRules sets the naming rules used by identifier generators.
func WithRules(rules naming.Rules) Option {
	return func(r *Resolver) { r.rules = rules }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithStrategies replaces the built-in chain.
func WithStrategies(strategies ...Strategy) Option {
	return func(r *Resolver) { r.strategies = strategies }
}

// DefaultChain is generators, then the table, then name heuristics, then
// the literal fallback.
func DefaultChain() []Strategy {
	return []Strategy{Generators{}, Table{}, Heuristics{}, Fallback{}}
}

// New builds a resolver with the default chain.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		strategies: DefaultChain(),
		table:      params.Set{},
		rules:      naming.ProjectRules,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a value for every slot in required that caller does not
// already provide, and nothing else.
func (r *Resolver) Resolve(required slots.Set, caller params.Set) params.Set {
	log := logging.Get(logging.CategoryDefaults)
	env := Env{Caller: caller, Table: r.table, Rules: r.rules, Now: r.now()}

	gap := required.Minus(caller.Has)
	out := make(params.Set, len(gap))
	for _, slot := range gap.Names() {
		value, by := r.attempt(slot, env)
		out[slot] = value
		log.Debug("slot %s resolved by %s", slot, by)
	}
	return out
}

func (r *Resolver) attempt(slot string, env Env) (any, string) {
	for _, s := range r.strategies {
		if v, ok := s.Attempt(slot, env); ok {
			return v, s.Name()
		}
	}
	v, _ := Fallback{}.Attempt(slot, env)
	return v, Fallback{}.Name()
}
