package query

// Normalize removes empty tokens and children that hold nothing, bottom
// up. It returns nil when nothing is left.
func Normalize(tree *Tree) *Tree {
	if tree == nil {
		return nil
	}

	var children []*Tree
	for _, child := range tree.Children {
		if normalized := Normalize(child); normalized != nil {
			children = append(children, normalized)
		}
	}

	var tokens []string
	for _, token := range tree.Tokens {
		if token != "" {
			tokens = append(tokens, token)
		}
	}

	if len(tokens) == 0 && len(children) == 0 {
		return nil
	}
	return &Tree{Tokens: tokens, Children: children}
}
