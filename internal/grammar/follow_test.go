package grammar

import (
	"testing"

	"github.com/dekarrin/grammarlab/internal/util"
	"github.com/stretchr/testify/assert"
)

func TestFollow_ExpressionGrammar(t *testing.T) {
	assert := assert.New(t)

	g, err := ParseText(`
		E -> T E2
		E2 -> + T E2 | ε
		T -> F T2
		T2 -> * F T2 | ε
		F -> ( E ) | id
	`)
	assert.NoError(err)

	first := g.First()
	follow := g.Follow(first)

	assert.Equal(util.StringSet{End: true, ")": true}, follow["E"])
	assert.Equal(util.StringSet{End: true, ")": true}, follow["E2"])
	assert.Equal(util.StringSet{"+": true, End: true, ")": true}, follow["T"])
	assert.Equal(util.StringSet{"+": true, End: true, ")": true}, follow["T2"])
	assert.Equal(util.StringSet{"+": true, "*": true, End: true, ")": true}, follow["F"])
}
