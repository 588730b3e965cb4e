package service

import (
	"errors"

	"github.com/dekarrin/grammarlab/internal/analyzerr"
	"github.com/dekarrin/grammarlab/internal/automaton"
	"github.com/dekarrin/grammarlab/internal/grammar"
	"github.com/dekarrin/grammarlab/internal/table"
	"github.com/dekarrin/rezi"
)

var errEmptyCache = errors.New("no cached table data")

// cachedItem is the flat, REZI-encodable form of one grammar.Item.
type cachedItem struct {
	Production int
	Dot        int
	Lookahead  string
}

// cachedState is the flat, REZI-encodable form of one automaton.State, keyed
// the same way the live collection keys it.
type cachedState struct {
	Key   string
	Items []cachedItem
}

// cachedTransition is the flat, REZI-encodable form of one automaton.Transition.
type cachedTransition struct {
	From   string
	Symbol string
	To     string
}

// cachedConflict is the flat, REZI-encodable form of analyzerr.Conflict.
type cachedConflict struct {
	State     int
	Terminal  string
	Existing  string
	Attempted string
}

// cachedAction is the flat, REZI-encodable form of one table.Action,
// addressed by state and terminal rather than stored in a nested map - REZI
// encodes structs and slices of them cleanly, but this package has no local
// example of it round-tripping a map of maps, so the cache sticks to the
// shapes this codebase's persistence layer is already known to encode.
type cachedAction struct {
	State      int
	Terminal   string
	Kind       int
	NextState  int
	Production int
}

// cachedGoto is the flat, REZI-encodable form of one GOTO cell.
type cachedGoto struct {
	State       int
	NonTerminal string
	NextState   int
}

// cachedTables is a snapshot of a built table.Table complete enough to
// reconstruct it without repeating canonical-collection construction or
// ACTION/GOTO derivation: the collection's states and transitions, the
// state-index order, and the derived cells and conflicts. Decoding this and
// handing it to table.FromCache is what makes re-analyzing an already-seen
// grammar a cache hit, not a recompute.
type cachedTables struct {
	StateKeys   []string
	Start       string
	States      []cachedState
	Transitions []cachedTransition
	Actions     []cachedAction
	Gotos       []cachedGoto
	Conflicts   []cachedConflict
}

// buildCache snapshots tbl into its flat cache form.
func buildCache(tbl *table.Table) cachedTables {
	c := cachedTables{
		StateKeys: append([]string{}, tbl.States...),
		Start:     tbl.Collection.Start,
	}

	for _, key := range tbl.States {
		state := tbl.Collection.States[key]
		items := make([]cachedItem, len(state.Items))
		for i, it := range state.Items {
			items[i] = cachedItem{Production: it.Production, Dot: it.Dot, Lookahead: it.Lookahead}
		}
		c.States = append(c.States, cachedState{Key: key, Items: items})

		for _, trans := range tbl.Collection.TransitionsFrom(key) {
			c.Transitions = append(c.Transitions, cachedTransition{From: trans.From, Symbol: trans.Symbol, To: trans.To})
		}
	}

	for i := range tbl.States {
		for _, term := range tbl.ActionTerminals(i) {
			act, _ := tbl.Action(i, term)
			c.Actions = append(c.Actions, cachedAction{
				State:      i,
				Terminal:   term,
				Kind:       int(act.Kind),
				NextState:  act.State,
				Production: act.Production,
			})
		}
	}

	for i := range tbl.States {
		for _, nt := range tbl.Grammar.NonTerminals() {
			if s, ok := tbl.Goto(i, nt); ok {
				c.Gotos = append(c.Gotos, cachedGoto{State: i, NonTerminal: nt, NextState: s})
			}
		}
	}

	for _, conf := range tbl.Conflicts {
		c.Conflicts = append(c.Conflicts, cachedConflict{
			State:     conf.State,
			Terminal:  conf.Terminal,
			Existing:  conf.Existing,
			Attempted: conf.Attempted,
		})
	}

	return c
}

// encodeCache REZI-encodes a built table into the blob stored alongside an
// analysis run, following this codebase's established rezi.EncBinary /
// rezi.DecBinary round-trip for binary-encoded persisted blobs.
func encodeCache(tbl *table.Table) []byte {
	c := buildCache(tbl)
	return rezi.EncBinary(c)
}

// decodeCache reverses encodeCache.
func decodeCache(data []byte) (cachedTables, error) {
	var c cachedTables
	_, err := rezi.DecBinary(data, &c)
	return c, err
}

// rebuildTable reconstructs a *table.Table from a decoded cache against g,
// the freshly re-parsed grammar the cache was built from - it never repeats
// CLOSURE/GOTO construction or ACTION/GOTO derivation.
func rebuildTable(g grammar.Grammar, c cachedTables) *table.Table {
	gPrime := g.Augmented()

	states := make(map[string]automaton.State, len(c.States))
	for _, cs := range c.States {
		items := make([]grammar.Item, len(cs.Items))
		for i, ci := range cs.Items {
			items[i] = grammar.Item{Production: ci.Production, Dot: ci.Dot, Lookahead: ci.Lookahead}
		}
		states[cs.Key] = automaton.State{Items: items}
	}

	transitions := make([]automaton.Transition, len(c.Transitions))
	for i, ct := range c.Transitions {
		transitions[i] = automaton.Transition{From: ct.From, Symbol: ct.Symbol, To: ct.To}
	}

	collection := automaton.Collection{States: states, Start: c.Start, Transitions: transitions}

	action := map[int]map[string]table.Action{}
	for _, ca := range c.Actions {
		if action[ca.State] == nil {
			action[ca.State] = map[string]table.Action{}
		}
		action[ca.State][ca.Terminal] = table.Action{
			Kind:       table.Kind(ca.Kind),
			State:      ca.NextState,
			Production: ca.Production,
		}
	}

	goTo := map[int]map[string]int{}
	for _, cg := range c.Gotos {
		if goTo[cg.State] == nil {
			goTo[cg.State] = map[string]int{}
		}
		goTo[cg.State][cg.NonTerminal] = cg.NextState
	}

	conflicts := make([]analyzerr.Conflict, len(c.Conflicts))
	for i, cc := range c.Conflicts {
		conflicts[i] = analyzerr.Conflict{
			State:     cc.State,
			Terminal:  cc.Terminal,
			Existing:  cc.Existing,
			Attempted: cc.Attempted,
		}
	}

	return table.FromCache(gPrime, collection, c.StateKeys, action, goTo, conflicts)
}

// decodeTable decodes a cache blob and rebuilds a *table.Table from it
// against g. A non-nil error means the blob was empty, malformed, or absent
// entirely - the caller's cue to fall back to table.Build.
func decodeTable(g grammar.Grammar, data []byte) (*table.Table, error) {
	if len(data) == 0 {
		return nil, errEmptyCache
	}
	c, err := decodeCache(data)
	if err != nil {
		return nil, err
	}
	return rebuildTable(g, c), nil
}
