/*
Lranalyze builds and inspects the LR(1) analysis of a grammar.

It reads a grammar file, builds the FIRST/FOLLOW sets and the canonical
ACTION/GOTO table, reports any conflicts found, and optionally runs the
shift-reduce driver against a token string, printing the trace and a DOT
export of the resulting parse tree.

Usage:

	lranalyze [flags] GRAMMAR_FILE

The flags are:

	-v, --version
		Give the current version of grammarlab and then exit.

	-i, --input TOKENS
		Run the driver against the given whitespace-separated token string and
		print the trace and parse tree.

	-f, --first-follow
		Print the FIRST/FOLLOW table.

	-t, --tables
		Print the ACTION/GOTO tables.

	-s, --states
		Print the canonical collection's item sets.

	-d, --dot
		Print the DOT export of the parse tree produced by -i. Has no effect
		without -i, and prints nothing if the input was rejected.

	-r, --repl
		After performing any requested one-shot actions, drop into an
		interactive loop that reads token strings from stdin and reports
		acceptance, trace, and (with -d) DOT for each, until EOF or "QUIT".
*/
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dekarrin/grammarlab/internal/driver"
	"github.com/dekarrin/grammarlab/internal/grammar"
	"github.com/dekarrin/grammarlab/internal/input"
	"github.com/dekarrin/grammarlab/internal/present"
	"github.com/dekarrin/grammarlab/internal/table"
	"github.com/dekarrin/grammarlab/internal/version"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitUsageError indicates an unsuccessful program execution due to
	// missing or malformed arguments.
	ExitUsageError

	// ExitGrammarError indicates an unsuccessful program execution due to a
	// grammar that failed to parse.
	ExitGrammarError
)

var (
	returnCode      int     = ExitSuccess
	flagVersion     *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	inputTokens     *string = pflag.StringP("input", "i", "", "Run the driver against the given whitespace-separated token string")
	showFirstFollow *bool   = pflag.BoolP("first-follow", "f", false, "Print the FIRST/FOLLOW table")
	showTables      *bool   = pflag.BoolP("tables", "t", false, "Print the ACTION/GOTO tables")
	showStates      *bool   = pflag.BoolP("states", "s", false, "Print the canonical collection's item sets")
	showDOT         *bool   = pflag.BoolP("dot", "d", false, "Print the DOT export of the parse tree produced by -i")
	repl            *bool   = pflag.BoolP("repl", "r", false, "Drop into an interactive loop after any one-shot actions")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	args := pflag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "ERROR: exactly one GRAMMAR_FILE argument is required")
		returnCode = ExitUsageError
		return
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitUsageError
		return
	}

	g, err := grammar.ParseText(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitGrammarError
		return
	}

	tbl, buildErr := table.Build(g)
	if buildErr != nil {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", buildErr.Error())
	}

	if *showFirstFollow {
		first := g.First()
		follow := g.Follow(first)
		fmt.Println(present.FirstFollowText(present.FirstFollow(g, first, follow)))
	}

	if *showStates {
		fmt.Println(present.ItemSetsText(present.ItemSets(tbl)))
	}

	if *showTables {
		fmt.Println(present.TablesText(tbl))
	}

	if *inputTokens != "" {
		runOnce(g, tbl, *inputTokens, *showDOT)
	}

	if *repl {
		runREPL(g, tbl, *showDOT)
	}
}

func runOnce(g grammar.Grammar, tbl *table.Table, tokenInput string, showDOT bool) {
	tokens := strings.Fields(tokenInput)
	result := driver.Run(g, tbl, tokens)

	for _, frame := range result.Trace {
		fmt.Println(frame.String())
	}

	if result.Accepted() {
		fmt.Println("ACCEPTED")
		if showDOT {
			fmt.Println(present.DOT(result.Tree))
		}
	} else {
		fmt.Println("REJECTED")
	}
}

func runREPL(g grammar.Grammar, tbl *table.Table, showDOT bool) {
	reader, err := input.NewInteractiveReader()
	if err != nil {
		runREPLLoop(input.NewDirectReader(os.Stdin), g, tbl, showDOT)
		return
	}
	defer reader.Close()
	runREPLLoop(reader, g, tbl, showDOT)
}

type commandReader interface {
	ReadCommand() (string, error)
}

func runREPLLoop(reader commandReader, g grammar.Grammar, tbl *table.Table, showDOT bool) {
	fmt.Println("Enter a whitespace-separated token string, or QUIT to exit.")
	for {
		line, err := reader.ReadCommand()
		if err != nil {
			if err != io.EOF {
				fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			}
			return
		}

		if strings.EqualFold(strings.TrimSpace(line), "QUIT") {
			return
		}

		runOnce(g, tbl, line, showDOT)
	}
}
