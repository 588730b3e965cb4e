package grammar

import "fmt"

// Item is an LR(1) item: a production, a dot position within its body, and
// a single lookahead terminal (or End). Items are value-equal and usable as
// map keys directly - dot is in [0, len(body)].
type Item struct {
	Production int
	Dot        int
	Lookahead  string
}

// Key returns a canonical string encoding of the item, used to intern item
// sets independent of iteration order (see the design notes on state
// canonicalization).
func (it Item) Key() string {
	return fmt.Sprintf("%d.%d.%s", it.Production, it.Dot, it.Lookahead)
}

// AtEnd returns whether the dot has reached the end of the production's
// body, i.e. this item reduces.
func (it Item) AtEnd(g Grammar) bool {
	return it.Dot >= len(g.Productions[it.Production].Body)
}

// NextSymbol returns the symbol immediately after the dot and true, or ""
// and false if the dot is at the end of the body.
func (it Item) NextSymbol(g Grammar) (string, bool) {
	body := g.Productions[it.Production].Body
	if it.Dot >= len(body) {
		return "", false
	}
	return body[it.Dot], true
}

// Advanced returns a copy of it with the dot moved one position to the
// right. It panics if the dot is already at the end.
func (it Item) Advanced(g Grammar) Item {
	if it.AtEnd(g) {
		panic("cannot advance an item whose dot is already at the end")
	}
	return Item{Production: it.Production, Dot: it.Dot + 1, Lookahead: it.Lookahead}
}

// String renders the item as "[A -> α • β, a]".
func (it Item) String(g Grammar) string {
	p := g.Productions[it.Production]
	left := p.Body[:it.Dot]
	right := p.Body[it.Dot:]

	out := p.Head + " ->"
	for _, sym := range left {
		out += " " + sym
	}
	out += " •"
	for _, sym := range right {
		out += " " + sym
	}

	return fmt.Sprintf("[%s, %s]", out, it.Lookahead)
}

// CompareItems imposes the total order required by the design notes (triple
// lexicographic on production index, dot, lookahead) so that item sets can
// be rendered and canonicalized deterministically.
func CompareItems(a, b Item) bool {
	if a.Production != b.Production {
		return a.Production < b.Production
	}
	if a.Dot != b.Dot {
		return a.Dot < b.Dot
	}
	return a.Lookahead < b.Lookahead
}
