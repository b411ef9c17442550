// Package solver implements the explicit constraint/worklist engine spec
// §4.4 names: a dirty-set of state variables, constraints that are
// monotone transfers from a set of source variables to one destination,
// and a fixpoint loop that joins each constraint's result into its
// destination, re-enqueueing only when the join actually changed
// something. The shape is deliberately generic over the lattice domains
// internal/absint supplies (AbVSet/AbFSet/AbLocals/AbMethod), so this
// package has no dependency on absint at all — it only knows about
// Value, the join-with-changed-flag contract spec §9 asks for in place
// of a by-reference `modifies` boolean.
package solver

// Value is anything the solver can store at a state variable and fold
// constraint results into. Join must be commutative, associative, and
// idempotent, with changed true iff the result differs from the
// receiver (spec §8's lattice laws).
type Value interface {
	JoinV(Value) (Value, bool)
}

// Context tags a StateVar to allow call-site sensitivity (spec §4.4).
// The default, zero-value Context is the empty, context-insensitive tag.
type Context interface{}

// EmptyContext is the default context-insensitive tag.
type EmptyContext struct{}

// StateVar identifies one slot of solver state: a field-set entry, a
// method summary, or a per-pc locals environment, each optionally tagged
// by a Context. Kind disambiguates which of field_dom/method_dom/pc_dom
// this slot lives in; the remaining fields are interpreted per Kind by
// whatever builds the constraint graph.
type StateVar struct {
	Kind  string
	Class string
	Sig   string
	PC    int
	Extra int
	Ctx   Context
}

// Constraint is one monotone transfer: Eval reads whatever sources it
// needs via get and produces a value to be joined into Dest. Sources
// lists every StateVar Eval may read, so the solver knows which
// constraints to re-run when one of them changes.
type Constraint struct {
	Sources []StateVar
	Dest    StateVar
	Eval    func(get func(StateVar) Value) Value
}

// Solver holds the current value of every state variable and the
// constraint graph relating them.
type Solver struct {
	values   map[StateVar]Value
	bySource map[StateVar][]*Constraint

	dirty   []StateVar
	onQueue map[StateVar]bool
}

func New() *Solver {
	return &Solver{
		values:   make(map[StateVar]Value),
		bySource: make(map[StateVar][]*Constraint),
		onQueue:  make(map[StateVar]bool),
	}
}

// Get returns the current value at v, or nil if nothing has reached it
// yet (the solver's notion of that state variable's Bot).
func (s *Solver) Get(v StateVar) Value { return s.values[v] }

// Seed sets v's initial value directly, marking it dirty so every
// constraint reading it gets a first chance to run. Use for entry-point
// facts (e.g. a method's initial AbLocals from its argument types).
func (s *Solver) Seed(v StateVar, val Value) {
	s.values[v] = val
	s.markDirty(v)
}

// AddConstraint registers c under every one of its declared sources.
func (s *Solver) AddConstraint(c *Constraint) {
	for _, src := range c.Sources {
		s.bySource[src] = append(s.bySource[src], c)
		if _, ok := s.values[src]; !ok {
			// Nothing is written here: a source not yet seeded or
			// reached reads as nil through Get, the solver's Bot.
		}
	}
}

func (s *Solver) markDirty(v StateVar) {
	if s.onQueue[v] {
		return
	}
	s.onQueue[v] = true
	s.dirty = append(s.dirty, v)
}

// Run drains the dirty-set to a fixpoint (spec §4.4's four-step loop).
// Order among equally-dirty variables is unspecified beyond FIFO; per
// spec §5 the result is order-independent by monotonicity.
func (s *Solver) Run() {
	for len(s.dirty) > 0 {
		v := s.dirty[0]
		s.dirty = s.dirty[1:]
		s.onQueue[v] = false

		for _, c := range s.bySource[v] {
			out := c.Eval(s.Get)
			if out == nil {
				continue
			}
			old := s.values[c.Dest]
			var merged Value
			var changed bool
			if old == nil {
				merged, changed = out, true
			} else {
				merged, changed = old.JoinV(out)
			}
			if changed {
				s.values[c.Dest] = merged
				s.markDirty(c.Dest)
			}
		}
	}
}
