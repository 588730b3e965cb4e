// Package grammar parses context-free grammars from a plain-text notation
// and provides the classification, augmentation, and FIRST/FOLLOW analysis
// that the LR(1) construction in package table builds on.
package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/grammarlab/internal/analyzerr"
	"github.com/dekarrin/grammarlab/internal/util"
)

// Epsilon is the empty-string marker. It appears only in FIRST sets and
// grammar bodies that explicitly derive the empty string.
const Epsilon = "ε"

// End is the end-of-input sentinel, used as a lookahead and as the final
// column of the ACTION table. It is never a grammar symbol.
const End = "$"

// Production is a single alternative: a nonterminal head and an ordered
// body. A nil or empty Body denotes an ε-production.
type Production struct {
	Head string
	Body []string
}

// IsEpsilon returns whether p is an ε-production.
func (p Production) IsEpsilon() bool {
	return len(p.Body) == 0
}

func (p Production) String() string {
	if p.IsEpsilon() {
		return fmt.Sprintf("%s -> %s", p.Head, Epsilon)
	}
	return fmt.Sprintf("%s -> %s", p.Head, strings.Join(p.Body, " "))
}

// Grammar is a set of productions together with a start symbol and the
// terminal/nonterminal partition derived from them. A symbol is a
// nonterminal if and only if it appears as the head of some production;
// every other symbol appearing in a body is a terminal. Once built, a
// Grammar is read-only.
type Grammar struct {
	Productions []Production
	Start       string

	nonTerminals util.StringSet
	terminals    util.StringSet
}

// New builds a Grammar from an ordered production list and a start symbol,
// computing the terminal/nonterminal partition. The first production's head
// is not assumed to be the start symbol; callers must supply it explicitly.
func New(productions []Production, start string) Grammar {
	g := Grammar{
		Productions: productions,
		Start:       start,
	}
	g.classify()
	return g
}

func (g *Grammar) classify() {
	g.nonTerminals = util.NewStringSet()
	g.terminals = util.NewStringSet()

	for _, p := range g.Productions {
		g.nonTerminals.Add(p.Head)
	}

	for _, p := range g.Productions {
		for _, sym := range p.Body {
			if !g.nonTerminals.Has(sym) {
				g.terminals.Add(sym)
			}
		}
	}
}

// IsNonTerminal returns whether sym is ever the head of a production.
func (g Grammar) IsNonTerminal(sym string) bool {
	return g.nonTerminals.Has(sym)
}

// IsTerminal returns whether sym appears in some body and is never a head.
func (g Grammar) IsTerminal(sym string) bool {
	return g.terminals.Has(sym)
}

// Terminals returns all terminal symbols, sorted lexicographically.
func (g Grammar) Terminals() []string {
	return sortedElements(g.terminals)
}

// NonTerminals returns all nonterminal symbols, sorted lexicographically.
func (g Grammar) NonTerminals() []string {
	return sortedElements(g.nonTerminals)
}

// Symbols returns every terminal and nonterminal, sorted lexicographically.
// This is the total order §4.5 and §9 require canonical-collection and
// presentation iteration to use.
func (g Grammar) Symbols() []string {
	all := g.terminals.Union(g.nonTerminals)
	return sortedElements(all)
}

func sortedElements(s util.ISet[string]) []string {
	elements := s.Elements()
	sort.Strings(elements)
	return elements
}

// augmentedHead is the synthetic start symbol appended on augmentation.
func augmentedHead(start string) string {
	return start + "'"
}

// IsAugmented returns whether g already has the synthetic start production
// S' -> S as its last entry, at the largest index.
func (g Grammar) IsAugmented() bool {
	if len(g.Productions) == 0 {
		return false
	}
	last := g.Productions[len(g.Productions)-1]
	return last.Head == augmentedHead(g.Start) &&
		len(last.Body) == 1 && last.Body[0] == g.Start
}

// Augmented returns the grammar extended with a synthetic production
// S' -> S appended at the end, where S is the original start symbol and S'
// is a fresh symbol formed by appending a prime. If g is already augmented
// (its last production is exactly that shape, at the last index), Augmented
// is a no-op and returns g unchanged - re-augmenting is idempotent.
func (g Grammar) Augmented() Grammar {
	if g.IsAugmented() {
		return g
	}

	newStart := augmentedHead(g.Start)
	prods := make([]Production, len(g.Productions), len(g.Productions)+1)
	copy(prods, g.Productions)
	prods = append(prods, Production{Head: newStart, Body: []string{g.Start}})

	return New(prods, newStart)
}

// StartSymbol returns the grammar's original start symbol (before any
// augmentation was applied to produce this Grammar value).
func (g Grammar) StartSymbol() string {
	return g.Start
}

// ProductionsFor returns, in source order, every production whose head is
// nt.
func (g Grammar) ProductionsFor(nt string) []Production {
	var found []Production
	for _, p := range g.Productions {
		if p.Head == nt {
			found = append(found, p)
		}
	}
	return found
}

// ParseText parses a multi-line grammar text of the form
//
//	HEAD -> alt1 | alt2 | ... | altN
//
// one rule per non-empty line, where each alternative is a
// whitespace-separated sequence of symbols. A single alternative consisting
// of exactly the ε marker denotes an empty body. The head of the first rule
// encountered becomes the start symbol; a head repeated across lines has its
// alternatives appended, in the order they are encountered.
//
// ParseText performs no semantic validation of symbol names; it returns a
// *analyzerr.GrammarFormatError if a line is missing "->", has an empty
// head, or yields zero alternatives. A mixed alternative containing ε
// alongside other symbols (e.g. "A -> ε x") is rejected rather than silently
// treated as literal, per the open question in the design notes.
func ParseText(text string) (Grammar, error) {
	var start string
	var seenStart bool
	var order []string
	bodies := map[string][]Production{}

	lines := strings.Split(text, "\n")
	for lineNo, rawLine := range lines {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		arrowIdx := strings.Index(line, "->")
		if arrowIdx < 0 {
			return Grammar{}, analyzerr.NewGrammarFormat(
				fmt.Sprintf("line %d: missing '->': %q", lineNo+1, rawLine))
		}

		head := strings.TrimSpace(line[:arrowIdx])
		if head == "" {
			return Grammar{}, analyzerr.NewGrammarFormat(
				fmt.Sprintf("line %d: empty head", lineNo+1))
		}

		altsText := line[arrowIdx+2:]
		altStrings := strings.Split(altsText, "|")

		var alts []Production
		for _, altStr := range altStrings {
			fields := strings.Fields(altStr)
			if len(fields) == 0 {
				return Grammar{}, analyzerr.NewGrammarFormat(
					fmt.Sprintf("line %d: alternative of %q has no symbols", lineNo+1, head))
			}

			if len(fields) == 1 && fields[0] == Epsilon {
				alts = append(alts, Production{Head: head})
				continue
			}

			for _, sym := range fields {
				if sym == Epsilon {
					return Grammar{}, analyzerr.NewGrammarFormat(
						fmt.Sprintf("line %d: %q mixes ε with other symbols in one alternative", lineNo+1, head))
				}
			}
			alts = append(alts, Production{Head: head, Body: fields})
		}

		if len(alts) == 0 {
			return Grammar{}, analyzerr.NewGrammarFormat(
				fmt.Sprintf("line %d: %q has no alternatives", lineNo+1, head))
		}

		if !seenStart {
			start = head
			seenStart = true
		}
		if _, ok := bodies[head]; !ok {
			order = append(order, head)
		}
		bodies[head] = append(bodies[head], alts...)
	}

	if !seenStart {
		return Grammar{}, analyzerr.NewGrammarFormat("grammar text has no rules")
	}

	var productions []Production
	for _, head := range order {
		productions = append(productions, bodies[head]...)
	}

	return New(productions, start), nil
}
