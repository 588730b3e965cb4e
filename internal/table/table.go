// Package table builds the ACTION/GOTO parsing table from a grammar's
// canonical LR(1) collection, following Algorithm 4.56 of the purple dragon
// book. Unlike the teacher's lazy, per-query table, Build computes every
// ACTION and GOTO cell once, up front, and returns a fully-populated Table -
// callers that want to know whether a grammar is LR(1) need the complete
// conflict list in one pass, not discovered cell by cell.
package table

import (
	"fmt"
	"sort"

	"github.com/dekarrin/grammarlab/internal/analyzerr"
	"github.com/dekarrin/grammarlab/internal/automaton"
	"github.com/dekarrin/grammarlab/internal/grammar"
)

// Kind distinguishes the three shapes an ACTION cell can take.
type Kind int

const (
	Shift Kind = iota
	Reduce
	Accept
)

func (k Kind) String() string {
	switch k {
	case Shift:
		return "shift"
	case Reduce:
		return "reduce"
	case Accept:
		return "accept"
	default:
		return "unknown"
	}
}

// Action is one ACTION table cell: a shift names the destination state, a
// reduce names the production to reduce by, and accept carries neither.
type Action struct {
	Kind       Kind
	State      int
	Production int
}

func (a Action) String(g grammar.Grammar) string {
	switch a.Kind {
	case Shift:
		return fmt.Sprintf("s%d", a.State)
	case Reduce:
		return fmt.Sprintf("r(%s)", g.Productions[a.Production].String())
	case Accept:
		return "acc"
	default:
		return "?"
	}
}

// Equal reports whether two actions denote the same cell content.
func (a Action) Equal(b Action) bool {
	return a == b
}

// Table is the complete ACTION/GOTO table for a grammar, indexed by integer
// state number rather than by the raw item-set keys automaton.Collection
// uses internally. States[i] is the item-set key for state i; State 0 is
// always the start state.
type Table struct {
	Grammar    grammar.Grammar
	Collection automaton.Collection
	States     []string

	action map[int]map[string]Action
	goTo   map[int]map[string]int

	// Conflicts records every ACTION cell where a second action attempted to
	// claim a cell already set by an earlier one. The earlier entry always
	// wins; this is informational, recorded rather than fatal, so a
	// non-LR(1) grammar still yields a usable (if inexact) table.
	Conflicts []analyzerr.Conflict
}

// Build constructs the canonical LR(1) ACTION/GOTO table for g. The returned
// error is non-nil only when one or more ACTION conflicts were recorded
// during construction (an *analyzerr.GrammarAmbiguityError); the returned
// Table is always complete and usable even when err is non-nil; the earlier
// action set at each conflicting cell is the one retained.
func Build(g grammar.Grammar) (*Table, error) {
	gPrime := g.Augmented()
	collection := automaton.Build(gPrime)

	stateKeys := collection.StateKeys()
	index := make(map[string]int, len(stateKeys))
	for i, k := range stateKeys {
		index[k] = i
	}
	startIdx := index[collection.Start]

	// Build() orders state keys lexicographically for determinism, but
	// state 0 by convention is the start state - swap it into place.
	if startIdx != 0 {
		stateKeys[0], stateKeys[startIdx] = stateKeys[startIdx], stateKeys[0]
		index[stateKeys[0]] = 0
		index[stateKeys[startIdx]] = startIdx
	}

	tbl := &Table{
		Grammar:    gPrime,
		Collection: collection,
		States:     stateKeys,
		action:     map[int]map[string]Action{},
		goTo:       map[int]map[string]int{},
	}

	augStart := gPrime.StartSymbol()
	origStart := g.StartSymbol()

	for i, key := range stateKeys {
		state := collection.States[key]

		for _, trans := range collection.TransitionsFrom(key) {
			j := index[trans.To]
			if gPrime.IsTerminal(trans.Symbol) {
				tbl.setAction(i, trans.Symbol, Action{Kind: Shift, State: j})
			} else {
				if tbl.goTo[i] == nil {
					tbl.goTo[i] = map[string]int{}
				}
				tbl.goTo[i][trans.Symbol] = j
			}
		}

		for _, it := range state.Items {
			if !it.AtEnd(gPrime) {
				continue
			}

			p := gPrime.Productions[it.Production]
			if p.Head == augStart && len(p.Body) == 1 && p.Body[0] == origStart && it.Lookahead == grammar.End {
				tbl.setAction(i, grammar.End, Action{Kind: Accept})
				continue
			}

			tbl.setAction(i, it.Lookahead, Action{Kind: Reduce, Production: it.Production})
		}
	}

	return tbl, analyzerr.NewGrammarAmbiguity(tbl.Conflicts)
}

// FromCache reconstructs a Table directly from a previously built table's
// cells and canonical collection, skipping the CLOSURE/GOTO fixed-point and
// the per-state ACTION/GOTO derivation Build performs - this is what lets a
// decoded persisted cache answer ACTION/GOTO/item-set queries as a cache
// hit rather than a recompute. g must be the same (augmented) grammar the
// cells were built against.
func FromCache(g grammar.Grammar, collection automaton.Collection, states []string, action map[int]map[string]Action, goTo map[int]map[string]int, conflicts []analyzerr.Conflict) *Table {
	return &Table{
		Grammar:    g,
		Collection: collection,
		States:     states,
		action:     action,
		goTo:       goTo,
		Conflicts:  conflicts,
	}
}

func (t *Table) setAction(state int, terminal string, act Action) {
	if t.action[state] == nil {
		t.action[state] = map[string]Action{}
	}

	existing, ok := t.action[state][terminal]
	if !ok {
		t.action[state][terminal] = act
		return
	}
	if existing.Equal(act) {
		return
	}

	t.Conflicts = append(t.Conflicts, analyzerr.Conflict{
		State:     state,
		Terminal:  terminal,
		Existing:  existing.String(t.Grammar),
		Attempted: act.String(t.Grammar),
	})
}

// Action returns the ACTION table entry for (state, terminal), or false if
// none is set - the caller's cue to reject the input.
func (t *Table) Action(state int, terminal string) (Action, bool) {
	row, ok := t.action[state]
	if !ok {
		return Action{}, false
	}
	act, ok := row[terminal]
	return act, ok
}

// Goto returns the GOTO table entry for (state, nonterminal), or false if
// none is set.
func (t *Table) Goto(state int, nonterminal string) (int, bool) {
	row, ok := t.goTo[state]
	if !ok {
		return 0, false
	}
	s, ok := row[nonterminal]
	return s, ok
}

// ActionTerminals returns the terminals (plus End) that have some ACTION
// entry in the given state, sorted - used by presentation and by the
// driver's "expected one of" error messages.
func (t *Table) ActionTerminals(state int) []string {
	row := t.action[state]
	out := make([]string, 0, len(row))
	for term := range row {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}
