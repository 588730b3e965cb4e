// Package driver runs the shift-reduce simulation described by a grammar's
// ACTION/GOTO table against a token sequence, producing both a step-by-step
// trace and, on acceptance, a parse tree. It never returns an error: a
// rejected input is reported entirely through the trace, ending in a
// rejection frame, with a nil tree - the same "no exceptions for expected
// outcomes" split the rest of this codebase uses for its driver layer.
package driver

import (
	"fmt"
	"strings"

	"github.com/dekarrin/grammarlab/internal/grammar"
	"github.com/dekarrin/grammarlab/internal/table"
	"github.com/dekarrin/grammarlab/internal/util"
)

// Frame is one step of the shift-reduce trace: a snapshot taken before the
// action fires, the remaining input at that point, and a description of the
// action taken.
type Frame struct {
	// StateStack and SymbolStack are pre-action snapshots, bottom to top.
	StateStack  []int
	SymbolStack []string

	// RemainingInput is every token from the cursor onward, including the
	// trailing End sentinel.
	RemainingInput []string

	// Action describes what happened this step, e.g. "shift -> s4",
	// "reduce C -> c C; goto s2", "ACCEPT", or "no ACTION[3, d]".
	Action string
}

func (f Frame) String() string {
	return fmt.Sprintf("states=%v symbols=%v input=%s | %s",
		f.StateStack, f.SymbolStack, strings.Join(f.RemainingInput, " "), f.Action)
}

// Result is the outcome of a driver run: the full trace, and the parse-tree
// root on acceptance (nil on rejection).
type Result struct {
	Trace []Frame
	Tree  *Tree
}

// Accepted reports whether the run ended in acceptance.
func (r Result) Accepted() bool {
	return r.Tree != nil
}

// Run simulates the shift-reduce driver over tokens against tbl, per
// Algorithm 4.44 of the purple dragon book. tokens must not include the
// trailing End sentinel; Run appends it. Run never errors; a rejected input
// is signaled by Result.Tree being nil and the trace's final frame
// describing the missing ACTION or GOTO entry.
func Run(g grammar.Grammar, tbl *table.Table, tokens []string) Result {
	input := make([]string, len(tokens)+1)
	copy(input, tokens)
	input[len(tokens)] = grammar.End

	states := util.Stack[int]{Of: []int{0}}
	symbols := util.Stack[string]{}
	nodes := util.Stack[*Tree]{}

	cursor := 0
	var trace []Frame

	snapshot := func(action string) Frame {
		return Frame{
			StateStack:     append([]int{}, states.Of...),
			SymbolStack:    append([]string{}, symbols.Of...),
			RemainingInput: append([]string{}, input[cursor:]...),
			Action:         action,
		}
	}

	for {
		s := states.Peek()
		a := input[cursor]

		act, ok := tbl.Action(s, a)
		if !ok {
			trace = append(trace, snapshot(fmt.Sprintf("no ACTION[%d, %s]", s, a)))
			trace = append(trace, snapshot("REJECT"))
			return Result{Trace: trace}
		}

		switch act.Kind {
		case table.Shift:
			trace = append(trace, snapshot(fmt.Sprintf("shift -> s%d", act.State)))

			states.Push(act.State)
			symbols.Push(a)
			nodes.Push(&Tree{Terminal: true, Symbol: a})
			cursor++

		case table.Reduce:
			p := g.Productions[act.Production]
			k := len(p.Body)

			children := make([]*Tree, k)
			for i := k - 1; i >= 0; i-- {
				children[i] = nodes.Pop()
				states.Pop()
				symbols.Pop()
			}
			node := &Tree{Symbol: p.Head, Children: children}

			t := states.Peek()
			goTo, ok := tbl.Goto(t, p.Head)
			if !ok {
				trace = append(trace, snapshot(fmt.Sprintf("no GOTO[%d, %s]", t, p.Head)))
				trace = append(trace, snapshot("REJECT"))
				return Result{Trace: trace}
			}

			bodyStr := p.String()[strings.Index(p.String(), "->")+3:]
			trace = append(trace, snapshot(fmt.Sprintf("reduce %s -> %s; goto s%d", p.Head, bodyStr, goTo)))

			states.Push(goTo)
			symbols.Push(p.Head)
			nodes.Push(node)

		case table.Accept:
			trace = append(trace, snapshot("ACCEPT"))
			trace = append(trace, snapshot("VALID"))
			return Result{Trace: trace, Tree: nodes.Peek()}
		}
	}
}
