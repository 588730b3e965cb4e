package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItem_AdvancedAndAtEnd(t *testing.T) {
	assert := assert.New(t)

	g := New([]Production{
		{Head: "S", Body: []string{"a", "b"}},
	}, "S")

	it := Item{Production: 0, Dot: 0, Lookahead: End}
	assert.False(it.AtEnd(g))

	sym, ok := it.NextSymbol(g)
	assert.True(ok)
	assert.Equal("a", sym)

	it = it.Advanced(g)
	assert.Equal(1, it.Dot)
	it = it.Advanced(g)
	assert.True(it.AtEnd(g))

	_, ok = it.NextSymbol(g)
	assert.False(ok)
}

func TestItem_AdvancedPanicsAtEnd(t *testing.T) {
	g := New([]Production{{Head: "S", Body: []string{"a"}}}, "S")
	it := Item{Production: 0, Dot: 1, Lookahead: End}

	assert.Panics(t, func() { it.Advanced(g) })
}

func TestItem_String(t *testing.T) {
	assert := assert.New(t)

	g := New([]Production{{Head: "S", Body: []string{"a", "b"}}}, "S")
	it := Item{Production: 0, Dot: 1, Lookahead: "c"}

	assert.Equal("[S -> a • b, c]", it.String(g))
}

func TestCompareItems_Ordering(t *testing.T) {
	assert := assert.New(t)

	a := Item{Production: 0, Dot: 0, Lookahead: "x"}
	b := Item{Production: 0, Dot: 1, Lookahead: "a"}
	c := Item{Production: 1, Dot: 0, Lookahead: "a"}

	assert.True(CompareItems(a, b))
	assert.True(CompareItems(b, c))
	assert.False(CompareItems(c, a))
}
