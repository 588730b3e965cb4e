// Package automaton builds the canonical collection of LR(1) item sets for a
// grammar: CLOSURE, GOTO, and the worklist fixed-point that turns those two
// into a full set of states and transitions. This does not reuse a general
// regex-style DFA/NFA engine - the states here are item sets, not character
// classes, and the construction is the one in Algorithm 4.56 of the purple
// dragon book, not subset construction.
package automaton

import (
	"sort"

	"github.com/dekarrin/grammarlab/internal/grammar"
	"github.com/dekarrin/grammarlab/internal/util"
)

// State is one node of the canonical collection: an immutable, sorted set of
// LR(1) items. Two States with the same items in the same order are the same
// state - Key is what callers should compare or index by.
type State struct {
	Items []grammar.Item
}

// Key returns a canonical string encoding of the state, stable regardless of
// the order items were added in closure/goto construction (Items is always
// kept sorted, but Key is cheap insurance for anything that builds a State
// by hand).
func (s State) Key() string {
	sorted := make([]grammar.Item, len(s.Items))
	copy(sorted, s.Items)
	sort.Slice(sorted, func(i, j int) bool { return grammar.CompareItems(sorted[i], sorted[j]) })

	out := ""
	for _, it := range sorted {
		out += it.Key() + "|"
	}
	return out
}

func newState(items map[grammar.Item]bool) State {
	s := State{Items: make([]grammar.Item, 0, len(items))}
	for it := range items {
		s.Items = append(s.Items, it)
	}
	sort.Slice(s.Items, func(i, j int) bool { return grammar.CompareItems(s.Items[i], s.Items[j]) })
	return s
}

// Closure computes CLOSURE(I) for a kernel set of items I: repeatedly, for
// every item [A -> α • Bβ, a] in the set where B is a nonterminal, add
// [B -> • γ, b] for every production B -> γ and every b in FIRST(βa), until
// no more items can be added. This is Fig. 4.40 of the purple dragon book.
func Closure(g grammar.Grammar, first grammar.FirstSets, kernel []grammar.Item) State {
	items := util.NewKeySet[grammar.Item]()
	for _, it := range kernel {
		items.Add(it)
	}

	changed := true
	for changed {
		changed = false

		for _, it := range items.Elements() {
			sym, ok := it.NextSymbol(g)
			if !ok || !g.IsNonTerminal(sym) {
				continue
			}

			body := g.Productions[it.Production].Body
			beta := body[it.Dot+1:]
			lookaheads := first.OfSequence(append(append([]string{}, beta...), it.Lookahead))

			for prodIdx, p := range g.Productions {
				if p.Head != sym {
					continue
				}
				for b := range lookaheads {
					if b == grammar.Epsilon {
						continue
					}
					newItem := grammar.Item{Production: prodIdx, Dot: 0, Lookahead: b}
					if !items.Has(newItem) {
						items.Add(newItem)
						changed = true
					}
				}
			}
		}
	}

	return newState(items)
}

// Goto computes GOTO(I, X): advance the dot over X in every item of I that
// has X immediately after the dot, then take the closure of the result. An
// empty kernel (no item in I has X next) yields an empty State; callers
// should treat that as "no transition on X".
func Goto(g grammar.Grammar, first grammar.FirstSets, state State, x string) State {
	var kernel []grammar.Item
	for _, it := range state.Items {
		sym, ok := it.NextSymbol(g)
		if ok && sym == x {
			kernel = append(kernel, it.Advanced(g))
		}
	}
	if len(kernel) == 0 {
		return State{}
	}
	return Closure(g, first, kernel)
}

// Transition is one edge of the canonical collection: from State Key() From,
// on symbol Symbol, to State Key() To.
type Transition struct {
	From   string
	Symbol string
	To     string
}

// Collection is the canonical collection of LR(1) item sets for an augmented
// grammar: every reachable state keyed by State.Key(), the start state's
// key, and the GOTO transitions between them.
type Collection struct {
	States      map[string]State
	Start       string
	Transitions []Transition
}

// StateKeys returns every state key in the collection, sorted, for
// deterministic iteration by callers such as package table and package
// present.
func (c Collection) StateKeys() []string {
	keys := make([]string, 0, len(c.States))
	for k := range c.States {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TransitionsFrom returns, sorted by symbol, every transition out of the
// state keyed by from.
func (c Collection) TransitionsFrom(from string) []Transition {
	var out []Transition
	for _, t := range c.Transitions {
		if t.From == from {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Build constructs the canonical collection of sets of LR(1) items for g.
// g is augmented first if it is not already (Augmented is idempotent, so
// callers may pass either form). The worklist starts from the closure of
// the single kernel item [S' -> • S, $] and repeatedly computes GOTO over
// every symbol for every state discovered so far, until a pass adds no new
// state and no new transition - the textbook fixed point, since the set of
// reachable item sets is finite and GOTO is monotone in the states it can
// produce.
func Build(g grammar.Grammar) Collection {
	g = g.Augmented()
	first := g.First()

	startProd := len(g.Productions) - 1
	startState := Closure(g, first, []grammar.Item{{Production: startProd, Dot: 0, Lookahead: grammar.End}})

	states := map[string]State{startState.Key(): startState}
	var transitions []Transition

	changed := true
	for changed {
		changed = false

		for _, key := range orderedKeys(states) {
			state := states[key]
			for _, sym := range g.Symbols() {
				next := Goto(g, first, state, sym)
				if len(next.Items) == 0 {
					continue
				}

				nextKey := next.Key()
				if _, ok := states[nextKey]; !ok {
					states[nextKey] = next
					changed = true
				}

				if !hasTransition(transitions, key, sym, nextKey) {
					transitions = append(transitions, Transition{From: key, Symbol: sym, To: nextKey})
					changed = true
				}
			}
		}
	}

	return Collection{States: states, Start: startState.Key(), Transitions: transitions}
}

func orderedKeys(states map[string]State) []string {
	keys := make([]string, 0, len(states))
	for k := range states {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func hasTransition(transitions []Transition, from, symbol, to string) bool {
	for _, t := range transitions {
		if t.From == from && t.Symbol == symbol && t.To == to {
			return true
		}
	}
	return false
}
