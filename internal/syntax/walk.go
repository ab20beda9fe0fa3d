package syntax

// Action tells a walk how to proceed after visiting a node.
type Action int

const (
	// Continue descends into the node's children.
	Continue Action = iota
	// SkipChildren moves on to the next sibling.
	SkipChildren
	// Stop ends the whole walk.
	Stop
)

// Walk visits n and its descendants in document order. It returns false
// if visit stopped the walk.
func Walk(n Node, visit func(Node) Action) bool {
	switch visit(n) {
	case Stop:
		return false
	case SkipChildren:
		return true
	}
	for i := 0; i < n.ChildCount(); i++ {
		if !Walk(n.Child(i), visit) {
			return false
		}
	}
	return true
}

// Each feeds items to visit until it returns Stop. SkipChildren behaves
// like Continue. It is the flat counterpart of Walk used for candidate
// lists.
func Each[T any](items []T, visit func(T) Action) bool {
	for _, it := range items {
		if visit(it) == Stop {
			return false
		}
	}
	return true
}
