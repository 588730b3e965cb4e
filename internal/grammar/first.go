package grammar

import "github.com/dekarrin/grammarlab/internal/util"

// FirstSets is a computed FIRST mapping: every grammar symbol plus End maps
// to the set of terminals (and possibly Epsilon) that can begin a string
// derived from it.
type FirstSets map[string]util.StringSet

func (f FirstSets) add(symbol, member string) bool {
	set, ok := f[symbol]
	if !ok {
		set = util.NewStringSet()
		f[symbol] = set
	}
	if set.Has(member) {
		return false
	}
	set.Add(member)
	return true
}

func (f FirstSets) hasEpsilon(symbol string) bool {
	return f[symbol].Has(Epsilon)
}

// First computes FIRST for every terminal, every nonterminal, and End.
//
// FIRST[t] = {t} for every terminal t, and FIRST[$] = {$}. Epsilon is in
// FIRST[A] if some production A -> β has every symbol of β deriving the
// empty string (vacuously true for an ε-production). The computation is a
// textbook fixed-point iteration over all productions until no FIRST set
// grows further, which terminates because the sets are monotone and
// bounded by the finite symbol alphabet.
func (g Grammar) First() FirstSets {
	first := FirstSets{}

	for _, t := range g.Terminals() {
		first[t] = util.StringSetOf([]string{t})
	}
	first[End] = util.StringSetOf([]string{End})

	for _, nt := range g.NonTerminals() {
		if _, ok := first[nt]; !ok {
			first[nt] = util.NewStringSet()
		}
	}

	changed := true
	for changed {
		changed = false

		for _, p := range g.Productions {
			if p.IsEpsilon() {
				if first.add(p.Head, Epsilon) {
					changed = true
				}
				continue
			}

			allDeriveEpsilon := true
			for _, sym := range p.Body {
				for member := range first[sym] {
					if member != Epsilon {
						if first.add(p.Head, member) {
							changed = true
						}
					}
				}
				if !first.hasEpsilon(sym) {
					allDeriveEpsilon = false
					break
				}
			}
			if allDeriveEpsilon {
				if first.add(p.Head, Epsilon) {
					changed = true
				}
			}
		}
	}

	return first
}

// OfSequence computes FIRST of a sequence of symbols: consume left to right,
// accumulating FIRST(symbol) minus Epsilon, stopping at the first symbol
// whose FIRST set does not contain Epsilon. If every symbol's FIRST set
// contained Epsilon, Epsilon is added to the result. A End appearing in the
// sequence contributes End and terminates immediately, since it is a hard
// terminal lookahead that never derives anything further - this is what
// makes CLOSURE's FIRST(βa) computation correct when β is empty.
func (f FirstSets) OfSequence(seq []string) util.StringSet {
	result := util.NewStringSet()

	allEpsilon := true
	for _, sym := range seq {
		if sym == End {
			result.Add(End)
			allEpsilon = false
			break
		}

		for member := range f[sym] {
			if member != Epsilon {
				result.Add(member)
			}
		}

		if !f.hasEpsilon(sym) {
			allEpsilon = false
			break
		}
	}

	if allEpsilon {
		result.Add(Epsilon)
	}

	return result
}
