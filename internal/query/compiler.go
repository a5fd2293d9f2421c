package query

import (
	"slices"
	"strconv"
	"strings"

	ferrors "fileindex/internal/errors"
)

// orKeyword anywhere among a level's own tokens makes the level an OrMatcher.
const orKeyword = "or"

type operator int

const (
	opAnd operator = iota
	opOr
)

// CompileQuery parses, normalizes and compiles query. A query with nothing
// left after normalization is ErrEmptyQuery.
func CompileQuery(query string) (Matcher, error) {
	tree := Normalize(Parse(query))
	if tree == nil {
		return nil, ferrors.ErrEmptyQuery.GenWithStackByArgs(query)
	}
	return Compile(tree)
}

// Compile turns every level of tree into an AndMatcher or OrMatcher whose
// elements are the field matchers of the level's tokens, in order, then
// one compiled matcher per child.
func Compile(tree *Tree) (Matcher, error) {
	if tree == nil {
		return AndMatcher{}, nil
	}
	op := operatorFor(tree.Tokens)

	elements := make([]Matcher, 0, len(tree.Tokens)+len(tree.Children))
	for _, token := range tree.Tokens {
		leaf, ok, err := leafMatcher(token)
		if err != nil {
			return nil, err
		}
		if ok {
			elements = append(elements, leaf)
		}
	}
	for _, child := range tree.Children {
		m, err := Compile(child)
		if err != nil {
			return nil, err
		}
		elements = append(elements, m)
	}

	if op == opOr {
		return OrMatcher{Elements: elements}, nil
	}
	return AndMatcher{Elements: elements}, nil
}

func operatorFor(tokens []string) operator {
	if slices.Contains(tokens, orKeyword) {
		return opOr
	}
	return opAnd
}

// leafMatcher maps a field=value token to a FieldMatcher. Anything else,
// operator words included, is not a leaf.
func leafMatcher(token string) (Matcher, bool, error) {
	name, value, found := strings.Cut(token, "=")
	if !found {
		return nil, false, nil
	}
	field, known := ParseField(name)
	if !known {
		return nil, false, nil
	}

	switch field {
	case FieldFileName:
		return FileNameMatcher(value), true, nil
	case FieldFileSize:
		size, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, false, ferrors.ErrInvalidFieldValue.GenWithStackByArgs(value, name)
		}
		return FileSizeMatcher(size), true, nil
	case FieldContentType:
		return ContentTypeMatcher(value), true, nil
	}
	return nil, false, nil
}
