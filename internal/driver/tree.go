package driver

import (
	"fmt"
	"strings"
)

const (
	treeLevelEmpty               = "        "
	treeLevelOngoing             = "  |     "
	treeLevelPrefix              = "  |%s: "
	treeLevelPrefixLast          = `  \%s: `
	treeLevelPrefixNamePadChar   = '-'
	treeLevelPrefixNamePadAmount = 3
)

func makeTreeLevelPrefix(msg string) string {
	for len([]rune(msg)) < treeLevelPrefixNamePadAmount {
		msg = string(treeLevelPrefixNamePadChar) + msg
	}
	return fmt.Sprintf(treeLevelPrefix, msg)
}

func makeTreeLevelPrefixLast(msg string) string {
	for len([]rune(msg)) < treeLevelPrefixNamePadAmount {
		msg = string(treeLevelPrefixNamePadChar) + msg
	}
	return fmt.Sprintf(treeLevelPrefixLast, msg)
}

// Tree is a parse tree node: either a terminal leaf holding one input token,
// or a nonterminal interior node produced by a reduction, with children in
// original left-to-right production order.
type Tree struct {
	Terminal bool
	Symbol   string
	Children []*Tree
}

// String returns a prettified representation suitable for line-by-line
// comparison; two trees are equal in the sense Equal checks if and only if
// they produce the same String output.
func (t Tree) String() string {
	return t.leveledStr("", "")
}

func (t Tree) leveledStr(firstPrefix, contPrefix string) string {
	var sb strings.Builder

	sb.WriteString(firstPrefix)
	if t.Terminal {
		sb.WriteString(fmt.Sprintf("(TERM %q)", t.Symbol))
	} else {
		sb.WriteString(fmt.Sprintf("( %s )", t.Symbol))
	}

	for i := range t.Children {
		sb.WriteRune('\n')
		var leveledFirstPrefix, leveledContPrefix string
		if i+1 < len(t.Children) {
			leveledFirstPrefix = contPrefix + makeTreeLevelPrefix("")
			leveledContPrefix = contPrefix + treeLevelOngoing
		} else {
			leveledFirstPrefix = contPrefix + makeTreeLevelPrefixLast("")
			leveledContPrefix = contPrefix + treeLevelEmpty
		}
		sb.WriteString(t.Children[i].leveledStr(leveledFirstPrefix, leveledContPrefix))
	}

	return sb.String()
}

// Equal reports whether t and o have the same structure: same terminal-ness,
// same symbol at every node, and equal children in the same order.
func (t Tree) Equal(o *Tree) bool {
	if o == nil {
		return false
	}
	if t.Terminal != o.Terminal || t.Symbol != o.Symbol {
		return false
	}
	if len(t.Children) != len(o.Children) {
		return false
	}
	for i := range t.Children {
		if !t.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}
