package grammar

import "github.com/dekarrin/grammarlab/internal/util"

// FollowSets is a computed FOLLOW mapping: every nonterminal maps to the set
// of terminals (and possibly End) that can immediately follow it in some
// derivation from the start symbol.
type FollowSets map[string]util.StringSet

// Follow computes FOLLOW for every nonterminal. FOLLOW is diagnostic only -
// the LR(1) construction in package automaton never consumes it, since
// lookaheads there come from FIRST(βa) at each item, not from FOLLOW.
//
// FOLLOW[start] always contains End. For every production A -> αBβ,
// FOLLOW[B] gains FIRST(β) minus Epsilon; if β derives Epsilon (or β is
// empty), FOLLOW[B] also gains FOLLOW[A]. This is computed to a fixed point.
func (g Grammar) Follow(first FirstSets) FollowSets {
	follow := FollowSets{}
	for _, nt := range g.NonTerminals() {
		follow[nt] = util.NewStringSet()
	}
	follow[g.Start].Add(End)

	changed := true
	for changed {
		changed = false

		for _, p := range g.Productions {
			for i, sym := range p.Body {
				if !g.IsNonTerminal(sym) {
					continue
				}

				beta := p.Body[i+1:]
				betaFirst := first.OfSequence(beta)

				for member := range betaFirst {
					if member == Epsilon {
						continue
					}
					if !follow[sym].Has(member) {
						follow[sym].Add(member)
						changed = true
					}
				}

				if betaFirst.Has(Epsilon) || len(beta) == 0 {
					for member := range follow[p.Head] {
						if !follow[sym].Has(member) {
							follow[sym].Add(member)
							changed = true
						}
					}
				}
			}
		}
	}

	return follow
}
