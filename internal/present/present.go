// Package present holds the thin, stateless adaptors that shape the core's
// immutable outputs - FIRST/FOLLOW, ACTION/GOTO, item sets, and parse trees -
// into the tabular and DOT forms a caller (the CLI or the HTTP API) actually
// renders. None of these functions compute anything the core hasn't already
// computed; they only reorder and format it, deterministically, the way
// §4.8 of the design requires.
package present

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/grammarlab/internal/automaton"
	"github.com/dekarrin/grammarlab/internal/driver"
	"github.com/dekarrin/grammarlab/internal/grammar"
	"github.com/dekarrin/grammarlab/internal/table"
	"github.com/dekarrin/grammarlab/internal/util"
	"github.com/dekarrin/rosed"
)

// FirstFollowRow is one line of the FIRST/FOLLOW report: a nonterminal and
// the terminals (plus possibly ε or $) in its FIRST and FOLLOW sets,
// alphabetized for reproducible display.
type FirstFollowRow struct {
	Symbol string
	First  []string
	Follow []string
}

// FirstFollow projects first and follow into one row per nonterminal of g,
// sorted by symbol name. first and follow are already util.StringSet, the
// same set type the core's determinism relies on for symbol enumeration
// elsewhere in this package; this just alphabetizes each row's members for
// reproducible display.
func FirstFollow(g grammar.Grammar, first grammar.FirstSets, follow grammar.FollowSets) []FirstFollowRow {
	var rows []FirstFollowRow
	for _, nt := range g.NonTerminals() {
		rows = append(rows, FirstFollowRow{
			Symbol: nt,
			First:  sortedElements(first[nt]),
			Follow: sortedElements(follow[nt]),
		})
	}
	return rows
}

func sortedElements(s util.StringSet) []string {
	out := s.Elements()
	sort.Strings(out)
	return out
}

// FirstFollowText renders rows as a two-column table (FIRST, FOLLOW) with
// one row per nonterminal, using the same rosed table layout the teacher's
// table-construction code uses for its own textual dumps.
func FirstFollowText(rows []FirstFollowRow) string {
	data := [][]string{{"SYMBOL", "FIRST", "FOLLOW"}}
	for _, r := range rows {
		data = append(data, []string{r.Symbol, strings.Join(r.First, " "), strings.Join(r.Follow, " ")})
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

// ActionRow is one row of the rendered ACTION table: the state index and,
// for every terminal column that has an entry, its cell text (`s<n>`,
// `r<n>`, or `acc`).
type ActionRow struct {
	State int
	Cells map[string]string
}

// GotoRow is one row of the rendered GOTO table: the state index and, for
// every nonterminal column that has an entry, the destination state index.
type GotoRow struct {
	State int
	Cells map[string]int
}

// ActionColumns returns the ACTION table's column order: every terminal of
// g sorted lexicographically, followed by $, per §4.8.
func ActionColumns(g grammar.Grammar) []string {
	cols := append([]string{}, g.Terminals()...)
	cols = append(cols, grammar.End)
	return cols
}

// GotoColumns returns the GOTO table's column order: every nonterminal of g
// sorted lexicographically.
func GotoColumns(g grammar.Grammar) []string {
	return g.NonTerminals()
}

// ActionTable projects tbl's ACTION entries into one row per state.
func ActionTable(tbl *table.Table) []ActionRow {
	rows := make([]ActionRow, len(tbl.States))
	for i := range tbl.States {
		cells := map[string]string{}
		for _, term := range tbl.ActionTerminals(i) {
			act, _ := tbl.Action(i, term)
			cells[term] = act.String(tbl.Grammar)
		}
		rows[i] = ActionRow{State: i, Cells: cells}
	}
	return rows
}

// GotoTable projects tbl's GOTO entries into one row per state.
func GotoTable(tbl *table.Table) []GotoRow {
	rows := make([]GotoRow, len(tbl.States))
	for i := range tbl.States {
		cells := map[string]int{}
		for _, nt := range GotoColumns(tbl.Grammar) {
			if s, ok := tbl.Goto(i, nt); ok {
				cells[nt] = s
			}
		}
		rows[i] = GotoRow{State: i, Cells: cells}
	}
	return rows
}

// TablesText renders the ACTION and GOTO tables side by side as a single
// rosed table, with a "|" divider column, the same layout the CLR(1) table
// construction this package's tests are grounded on uses for its own
// String() method.
func TablesText(tbl *table.Table) string {
	terminals := ActionColumns(tbl.Grammar)
	nonTerminals := GotoColumns(tbl.Grammar)

	header := []string{"STATE", "|"}
	for _, t := range terminals {
		header = append(header, "A:"+t)
	}
	header = append(header, "|")
	for _, nt := range nonTerminals {
		header = append(header, "G:"+nt)
	}

	data := [][]string{header}

	actionRows := ActionTable(tbl)
	gotoRows := GotoTable(tbl)

	for i := range tbl.States {
		row := []string{fmt.Sprintf("%d", i), "|"}
		for _, t := range terminals {
			row = append(row, actionRows[i].Cells[t])
		}
		row = append(row, "|")
		for _, nt := range nonTerminals {
			if s, ok := gotoRows[i].Cells[nt]; ok {
				row = append(row, fmt.Sprintf("%d", s))
			} else {
				row = append(row, "")
			}
		}
		data = append(data, row)
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

// StateListing is the pretty-printed form of one canonical-collection
// state: its index and every item in it, rendered `[A -> α • β, a]`.
type StateListing struct {
	Index int
	Items []string
}

// ItemSets renders every state of tbl's collection, in state-index order,
// using grammar.Item.String for the per-item `[A -> α • β, a]` form.
func ItemSets(tbl *table.Table) []StateListing {
	listings := make([]StateListing, len(tbl.States))
	for i, key := range tbl.States {
		state := tbl.Collection.States[key]
		items := make([]string, len(state.Items))
		for j, it := range state.Items {
			items[j] = it.String(tbl.Grammar)
		}
		listings[i] = StateListing{Index: i, Items: items}
	}
	return listings
}

// ItemSetsText renders ItemSets as a line-per-state, line-per-item report,
// e.g. "I3:\n  [A -> a . B, c]\n  ...".
func ItemSetsText(listings []StateListing) string {
	var sb strings.Builder
	for _, l := range listings {
		fmt.Fprintf(&sb, "I%d:\n", l.Index)
		for _, it := range l.Items {
			sb.WriteString("  ")
			sb.WriteString(it)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// State is a convenience formatter for a single raw automaton.State, used
// by callers (such as tests) that have a State outside of a built Table.
func State(g grammar.Grammar, s automaton.State) []string {
	items := make([]string, len(s.Items))
	for i, it := range s.Items {
		items[i] = it.String(g)
	}
	return items
}

// DOT renders root as a Graphviz DOT digraph: one node per tree node with a
// unique id assigned in depth-first pre-order, and one edge per parent-child
// relationship, per §4.8's export grammar.
func DOT(root *driver.Tree) string {
	var sb strings.Builder
	sb.WriteString("digraph G {\n")
	sb.WriteString("\tnode [shape=ellipse];\n")

	nextID := 1
	var walk func(t *driver.Tree) int
	walk = func(t *driver.Tree) int {
		id := nextID
		nextID++
		fmt.Fprintf(&sb, "\tn%d [label=%q];\n", id, t.Symbol)

		for _, child := range t.Children {
			childID := walk(child)
			fmt.Fprintf(&sb, "\tn%d -> n%d;\n", id, childID)
		}
		return id
	}

	if root != nil {
		walk(root)
	}

	sb.WriteString("}\n")
	return sb.String()
}
