package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	require.Equal(t, &Tree{
		Tokens: []string{"and"},
		Children: []*Tree{
			{
				Tokens:   []string{"or", "b=b"},
				Children: []*Tree{{Tokens: []string{"a=a"}}},
			},
			{Tokens: []string{"or", "c=c", "d=d"}},
		},
	}, Normalize(Parse("and (or (a=a) b=b) (or c=c d=d)")))
}

func TestNormalizeEmpty(t *testing.T) {
	for _, q := range []string{"", " ", "   ", "( )", "(  ) (())", `""`, `"" ""`} {
		require.Nil(t, Normalize(Parse(q)), q)
	}
	require.Nil(t, Normalize(nil))
}

func TestNormalizeKeepsGroupOnlyQuery(t *testing.T) {
	tree := Normalize(Parse("(file_size=1)"))
	require.Empty(t, tree.Tokens)
	require.Len(t, tree.Children, 1)
	require.Equal(t, []string{"file_size=1"}, tree.Children[0].Tokens)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	queries := []string{
		"a  b",
		"and (or (a=a) b=b) (or c=c d=d)",
		" ( ) x ( (y) ) ",
		`"a b" (c "d e")`,
		"or",
		"a (b c",
	}
	for _, q := range queries {
		once := Normalize(Parse(q))
		require.Equal(t, once, Normalize(once), q)
	}
}
