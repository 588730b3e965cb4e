package driver

import (
	"testing"

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

func TestRun_AcceptsDragonBookExample(t *testing.T) {
	assert := assert.New(t)

	g, tbl := buildTable(t, `
		S -> C C
		C -> c C | d
	`)

	result := Run(g, tbl, []string{"c", "c", "d", "d"})
	assert.True(result.Accepted())

	root := result.Tree
	assert.Equal("S", root.Symbol)
	assert.False(root.Terminal)
	assert.Len(root.Children, 2)

	// last frame is a validity marker, preceded by ACCEPT
	assert.Equal("VALID", result.Trace[len(result.Trace)-1].Action)
	assert.Equal("ACCEPT", result.Trace[len(result.Trace)-2].Action)
}

func TestRun_RejectsOnMissingAction(t *testing.T) {
	assert := assert.New(t)

	g, tbl := buildTable(t, `
		S -> C C
		C -> c C | d
	`)

	// "c c" alone is an incomplete CC derivation; a followng c with no d to
	// terminate it runs the input out before a reduction completes.
	result := Run(g, tbl, []string{"c", "c"})
	assert.False(result.Accepted())
	assert.Nil(result.Tree)

	last := result.Trace[len(result.Trace)-1]
	assert.Equal("REJECT", last.Action)

	secondToLast := result.Trace[len(result.Trace)-2]
	assert.Contains(secondToLast.Action, "no ACTION")
}

func TestRun_ParseTreeShape(t *testing.T) {
	assert := assert.New(t)

	g, tbl := buildTable(t, `
		S -> C C
		C -> c C | d
	`)

	result := Run(g, tbl, []string{"d", "d"})
	assert.True(result.Accepted())

	root := result.Tree
	assert.Equal("S", root.Symbol)
	assert.Len(root.Children, 2)
	for _, child := range root.Children {
		assert.Equal("C", child.Symbol)
		assert.Len(child.Children, 1)
		assert.True(child.Children[0].Terminal)
		assert.Equal("d", child.Children[0].Symbol)
	}
}

func TestRun_ExpressionGrammarPrecedence(t *testing.T) {
	assert := assert.New(t)

	g, tbl := buildTable(t, `
		E -> E + T | T
		T -> T * F | F
		F -> id
	`)

	// "id + id * id" must tree as id + (id * id): the outer node is the +,
	// with * nested under its right child, reflecting T's tighter binding
	// and the grammar's left recursion giving + left-associativity.
	result := Run(g, tbl, []string{"id", "+", "id", "*", "id"})
	assert.True(result.Accepted())

	root := result.Tree
	assert.Equal("E", root.Symbol)
	assert.Len(root.Children, 3)

	left := root.Children[0]
	plus := root.Children[1]
	right := root.Children[2]

	assert.Equal("E", left.Symbol)
	assert.True(plus.Terminal)
	assert.Equal("+", plus.Symbol)
	assert.Equal("T", right.Symbol)

	// the right operand of + is the T -> T * F subtree, not a bare F, since
	// * must have already reduced id * id before + can fire.
	assert.Len(right.Children, 3)
	assert.Equal("T", right.Children[0].Symbol)
	assert.True(right.Children[1].Terminal)
	assert.Equal("*", right.Children[1].Symbol)
	assert.Equal("F", right.Children[2].Symbol)
}

func TestRun_AcceptsEmptyInputAgainstEpsilonDerivingStart(t *testing.T) {
	assert := assert.New(t)

	g, tbl := buildTable(t, `
		S -> A
		A -> a A | ε
	`)

	result := Run(g, tbl, nil)
	assert.True(result.Accepted())

	root := result.Tree
	assert.Equal("S", root.Symbol)
	assert.Len(root.Children, 1)

	a := root.Children[0]
	assert.Equal("A", a.Symbol)
	assert.Empty(a.Children)
}

func TestFrame_RemainingInputIncludesEndSentinel(t *testing.T) {
	assert := assert.New(t)

	g, tbl := buildTable(t, `S -> a`)
	result := Run(g, tbl, []string{"a"})
	assert.True(result.Accepted())

	first := result.Trace[0]
	assert.Equal([]string{"a", grammar.End}, first.RemainingInput)
	assert.Equal([]int{0}, first.StateStack)
	assert.Empty(first.SymbolStack)
}
