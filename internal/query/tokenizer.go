package query

import "strings"

const (
	quote      = '"'
	space      = ' '
	openParen  = '('
	closeParen = ')'
)

// Tree is one nesting level of a parsed query. Tokens are the words found
// at this level, Children the parenthesized groups in the order their
// opening parenthesis appeared.
//
// End and Remainder record where parsing of this level stopped: the offset
// of the closing parenthesis and the text after it, or len(query) and ""
// when the input ran out. Normalize drops them.
type Tree struct {
	Tokens    []string
	Children  []*Tree
	End       int
	Remainder string
}

// Parse splits query into a tree of tokens. It never fails: a group that is
// never closed runs to the end of input, and a stray closing parenthesis
// ends the top level.
//
// Words are separated by single unquoted spaces, so adjacent, leading and
// trailing spaces yield empty tokens. Quotes are dropped and spaces between
// them are kept literally. Parentheses group even inside quotes, and each
// group starts unquoted.
func Parse(query string) *Tree {
	return parseLevel(query, 0)
}

func parseLevel(query string, start int) *Tree {
	tree := &Tree{}
	var buf strings.Builder
	inQuote := false

	for pos := start; pos < len(query); pos++ {
		c := query[pos]
		switch {
		case c == openParen:
			// the buffer survives the group, "a(b)c" is the token "ac"
			child := parseLevel(query, pos+1)
			tree.Children = append(tree.Children, child)
			pos = child.End
		case c == closeParen:
			if buf.Len() > 0 {
				tree.Tokens = append(tree.Tokens, buf.String())
			}
			tree.End = pos
			tree.Remainder = query[pos+1:]
			return tree
		case c == quote:
			inQuote = !inQuote
		case inQuote:
			buf.WriteByte(c)
		case c == space:
			tree.Tokens = append(tree.Tokens, buf.String())
			buf.Reset()
		default:
			buf.WriteByte(c)
		}
	}

	if buf.Len() > 0 {
		tree.Tokens = append(tree.Tokens, buf.String())
	}
	tree.End = len(query)
	return tree
}
