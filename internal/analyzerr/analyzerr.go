// Package analyzerr holds the error kinds raised by the grammar/table/driver
// pipeline. Each carries both a human-facing message and, where it wraps one,
// a more technical cause, following the same split this codebase uses
// elsewhere for user-facing errors.
package analyzerr

import "fmt"

// GrammarFormatError signals a malformed grammar text: a missing "->", an
// empty head, or a line with zero alternatives. It is fatal to the ingest
// call that produced it.
type GrammarFormatError struct {
	human string
	wrap  error
}

func (e *GrammarFormatError) Error() string {
	return e.human
}

func (e *GrammarFormatError) Unwrap() error {
	return e.wrap
}

// NewGrammarFormat returns a GrammarFormatError with the given message.
func NewGrammarFormat(msg string) error {
	return &GrammarFormatError{human: msg}
}

// WrapGrammarFormat returns a GrammarFormatError wrapping cause.
func WrapGrammarFormat(msg string, cause error) error {
	return &GrammarFormatError{human: msg, wrap: cause}
}

// Conflict describes one ACTION table entry that two different productions
// or actions attempted to claim, naming the state, the terminal column, and
// both competing values (rendered as strings by the caller, since the
// concrete action type lives in package table and would otherwise create an
// import cycle).
type Conflict struct {
	State     int
	Terminal  string
	Existing  string
	Attempted string
}

func (c Conflict) String() string {
	return fmt.Sprintf("state %d, on %q: %s already set, %s was also attempted", c.State, c.Terminal, c.Existing, c.Attempted)
}

// GrammarAmbiguityError reports that table construction recorded one or more
// ACTION conflicts. It is informational, not fatal: the table is still built
// (earlier entry wins at each conflicting cell), and this error exists so
// callers such as the CLI or HTTP API can surface "this grammar is not
// LR(1)" distinctly from a hard failure.
type GrammarAmbiguityError struct {
	Conflicts []Conflict
}

func (e *GrammarAmbiguityError) Error() string {
	return fmt.Sprintf("grammar is not LR(1): %d conflict(s)", len(e.Conflicts))
}

// NewGrammarAmbiguity returns a GrammarAmbiguityError for the given
// conflicts. It returns nil if conflicts is empty, so callers can always
// write `if err := analyzerr.NewGrammarAmbiguity(conflicts); err != nil`.
func NewGrammarAmbiguity(conflicts []Conflict) error {
	if len(conflicts) == 0 {
		return nil
	}
	return &GrammarAmbiguityError{Conflicts: conflicts}
}

// ParseRejectError describes why a driver run rejected its input: either no
// ACTION entry for (state, lookahead), or no GOTO entry after a reduction.
// The driver itself never returns this - per the error-handling design, it
// always returns a well-formed (trace, nil-tree) pair - but the CLI and HTTP
// layers construct one from the trace's final frame to give a structured
// reason for a rejection.
type ParseRejectError struct {
	human string
}

func (e *ParseRejectError) Error() string {
	return e.human
}

// NewParseReject returns a ParseRejectError with the given message.
func NewParseReject(msg string) error {
	return &ParseRejectError{human: msg}
}

// NewParseRejectf is like NewParseReject but accepts a format string.
func NewParseRejectf(format string, a ...interface{}) error {
	return NewParseReject(fmt.Sprintf(format, a...))
}
