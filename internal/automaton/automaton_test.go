package automaton

import (
	"testing"

	"github.com/dekarrin/grammarlab/internal/grammar"
	"github.com/stretchr/testify/assert"
)

func mustParse(t *testing.T, text string) grammar.Grammar {
	t.Helper()
	g, err := grammar.ParseText(text)
	if err != nil {
		t.Fatalf("parsing test grammar: %v", err)
	}
	return g
}

func TestClosure_StartItem(t *testing.T) {
	assert := assert.New(t)

	g := mustParse(t, `
		S -> C C
		C -> c C | d
	`)
	g = g.Augmented()
	first := g.First()

	startProd := len(g.Productions) - 1
	state := Closure(g, first, []grammar.Item{{Production: startProd, Dot: 0, Lookahead: grammar.End}})

	// CLOSURE of [S' -> . S, $] must also contain [S -> . C C, $] and both
	// C alternatives with lookahead in FIRST(C$) = {c, d}.
	assert.Contains(state.Items, grammar.Item{Production: startProd, Dot: 0, Lookahead: grammar.End})

	found := map[string]bool{}
	for _, it := range state.Items {
		found[it.String(g)] = true
	}
	assert.True(found["[S -> • C C, $]"], "expected S -> . C C, $ in closure, got %v", state.Items)
}

func TestBuild_DragonBookExample455(t *testing.T) {
	assert := assert.New(t)

	// S -> C C ; C -> c C | d, purple dragon book's canonical running
	// example, whose canonical LR(1) collection has exactly 10 states.
	g := mustParse(t, `
		S -> C C
		C -> c C | d
	`)

	collection := Build(g)

	assert.Len(collection.States, 10)
	assert.Contains(collection.States, collection.Start)

	// every non-start state must be reachable via some recorded transition
	reachable := map[string]bool{collection.Start: true}
	for _, tr := range collection.Transitions {
		reachable[tr.To] = true
	}
	for key := range collection.States {
		assert.True(reachable[key], "state %q unreachable by any transition", key)
	}
}

func TestGoto_NoTransitionOnUnrelatedSymbol(t *testing.T) {
	assert := assert.New(t)

	g := mustParse(t, `
		S -> C C
		C -> c C | d
	`)
	g = g.Augmented()
	first := g.First()

	startProd := len(g.Productions) - 1
	start := Closure(g, first, []grammar.Item{{Production: startProd, Dot: 0, Lookahead: grammar.End}})

	next := Goto(g, first, start, "nonexistent-symbol")
	assert.Empty(next.Items)
}
