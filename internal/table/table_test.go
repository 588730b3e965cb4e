package table

import (
	"strings"
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

func TestBuild_DragonBookExample_NoConflicts(t *testing.T) {
	assert := assert.New(t)

	g := mustParse(t, `
		S -> C C
		C -> c C | d
	`)

	tbl, err := Build(g)
	assert.NoError(err)
	assert.Empty(tbl.Conflicts)
	assert.Len(tbl.States, 10)

	// state 0 accepts a shift on both terminals that can start C
	act, ok := tbl.Action(0, "c")
	assert.True(ok)
	assert.Equal(Shift, act.Kind)

	act, ok = tbl.Action(0, "d")
	assert.True(ok)
	assert.Equal(Shift, act.Kind)
}

func TestBuild_ReduceReduceConflict(t *testing.T) {
	assert := assert.New(t)

	// S derives 'a' two distinct ways with the same lookahead ($), an
	// unavoidable reduce/reduce conflict for any LR(k) table.
	g := mustParse(t, `
		S -> A | B
		A -> a
		B -> a
	`)

	tbl, err := Build(g)
	assert.Error(err)
	assert.NotEmpty(tbl.Conflicts)

	ambig, ok := err.(interface{ Error() string })
	assert.True(ok)
	assert.Contains(ambig.Error(), "not LR(1)")
}

func TestBuild_ShiftReduceConflict_DanglingElse(t *testing.T) {
	assert := assert.New(t)

	// the classic dangling-else grammar: on lookahead e in the state reached
	// after "i E t S", the table can either shift e (attaching it to the
	// nearest S) or reduce S -> i E t S. Both are valid per the grammar, so
	// this is an unavoidable shift/reduce conflict; the earlier-registered
	// shift wins and the reduce loses, giving the conventional "else binds to
	// the nearest unmatched if" resolution.
	g := mustParse(t, `
		S -> i E t S | i E t S e S | a
		E -> b
	`)

	tbl, err := Build(g)
	assert.Error(err)
	assert.NotEmpty(tbl.Conflicts)

	ambig, ok := err.(interface{ Error() string })
	assert.True(ok)
	assert.Contains(ambig.Error(), "not LR(1)")

	foundShiftReduce := false
	for _, c := range tbl.Conflicts {
		if strings.Contains(c.Existing, "s") && strings.Contains(c.Attempted, "r(") {
			foundShiftReduce = true
		}
		if strings.Contains(c.Attempted, "s") && strings.Contains(c.Existing, "r(") {
			foundShiftReduce = true
		}
	}
	assert.True(foundShiftReduce, "expected at least one shift/reduce conflict, got %+v", tbl.Conflicts)
}

func TestBuild_AcceptOnAugmentedStart(t *testing.T) {
	assert := assert.New(t)

	g := mustParse(t, `S -> a`)
	tbl, err := Build(g)
	assert.NoError(err)

	// find the state reached after shifting 'a' from the start state, and
	// confirm it accepts on End.
	startGoto, ok := tbl.Goto(0, "S")
	assert.True(ok)

	act, ok := tbl.Action(startGoto, grammar.End)
	assert.True(ok)
	assert.Equal(Accept, act.Kind)
}
