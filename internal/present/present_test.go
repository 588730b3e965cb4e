package present

import (
	"strings"
	"testing"

	"github.com/dekarrin/grammarlab/internal/driver"
	"github.com/dekarrin/grammarlab/internal/grammar"
	"github.com/dekarrin/grammarlab/internal/table"
	"github.com/stretchr/testify/assert"
)

func buildTable(t *testing.T, text string) (grammar.Grammar, *table.Table) {
	t.Helper()
	g, err := grammar.ParseText(text)
	if err != nil {
		t.Fatalf("parsing test grammar: %v", err)
	}
	tbl, err := table.Build(g)
	if err != nil {
		t.Fatalf("building table: %v", err)
	}
	return tbl.Grammar, tbl
}

func TestFirstFollow_OneRowPerNonTerminal(t *testing.T) {
	assert := assert.New(t)

	g, err := grammar.ParseText(`
		S -> C C
		C -> c C | d
	`)
	assert.NoError(err)

	first := g.First()
	follow := g.Follow(first)

	rows := FirstFollow(g, first, follow)
	assert.Len(rows, 2)

	bySymbol := map[string]FirstFollowRow{}
	for _, r := range rows {
		bySymbol[r.Symbol] = r
	}

	assert.ElementsMatch([]string{"c", "d"}, bySymbol["C"].First)
	assert.ElementsMatch([]string{"c", "d"}, bySymbol["S"].First)
	assert.ElementsMatch([]string{"$"}, bySymbol["S"].Follow)
	assert.ElementsMatch([]string{"$"}, bySymbol["C"].Follow)
}

func TestActionGotoTable_Shape(t *testing.T) {
	assert := assert.New(t)

	_, tbl := buildTable(t, `
		S -> C C
		C -> c C | d
	`)

	actionRows := ActionTable(tbl)
	gotoRows := GotoTable(tbl)

	assert.Len(actionRows, len(tbl.States))
	assert.Len(gotoRows, len(tbl.States))

	// state 0 must have shift entries for both terminals and a goto entry
	// for both nonterminals (S and C are both derivable from state 0's
	// closure).
	assert.NotEmpty(actionRows[0].Cells)
	assert.Contains(gotoRows[0].Cells, "C")
}

func TestActionColumns_TerminalsSortedThenEnd(t *testing.T) {
	assert := assert.New(t)

	g, err := grammar.ParseText(`
		S -> C C
		C -> c C | d
	`)
	assert.NoError(err)

	cols := ActionColumns(g)
	assert.Equal([]string{"c", "d", "$"}, cols)
}

func TestTablesText_RendersWithoutPanicking(t *testing.T) {
	_, tbl := buildTable(t, `
		E -> E + T | T
		T -> T * F | F
		F -> ( E ) | id
	`)

	out := TablesText(tbl)
	assert.Contains(t, out, "STATE")
	assert.Contains(t, out, "A:id")
	assert.Contains(t, out, "G:E")
}

func TestItemSets_CoversEveryState(t *testing.T) {
	assert := assert.New(t)

	_, tbl := buildTable(t, `
		S -> C C
		C -> c C | d
	`)

	listings := ItemSets(tbl)
	assert.Len(listings, len(tbl.States))

	// state 0's listing must include the augmented start item with the
	// dot before S and lookahead $.
	found := false
	for _, line := range listings[0].Items {
		if strings.Contains(line, "S' ->") && strings.Contains(line, "$") {
			found = true
		}
	}
	assert.True(found, "expected augmented start item in state 0, got %v", listings[0].Items)
}

func TestDOT_RendersOneNodePerTreeNode(t *testing.T) {
	assert := assert.New(t)

	root := &driver.Tree{
		Symbol: "S",
		Children: []*driver.Tree{
			{Symbol: "C", Children: []*driver.Tree{
				{Terminal: true, Symbol: "c"},
				{Terminal: true, Symbol: "C", Children: []*driver.Tree{{Terminal: true, Symbol: "d"}}},
			}},
		},
	}

	out := DOT(root)
	assert.True(strings.HasPrefix(out, "digraph G {"))
	assert.Contains(out, `label="S"`)
	assert.Contains(out, "n1 -> n2")
}

func TestDOT_NilTreeRendersEmptyGraph(t *testing.T) {
	out := DOT(nil)
	assert.Equal(t, "digraph G {\n\tnode [shape=ellipse];\n}\n", out)
}
