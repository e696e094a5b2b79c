package tmast

// WalkFunc is the callback signature for Walk. A non-nil error stops the
// walk immediately.
type WalkFunc func(n *Node) error

// Walk performs a pre-order traversal starting at root.
func Walk(root *Node, fn WalkFunc) error {
	if root == nil {
		return nil
	}
	if err := fn(root); err != nil {
		return err
	}
	for child := root.FirstChild; child != nil; child = child.Next {
		if err := Walk(child, fn); err != nil {
			return err
		}
	}
	return nil
}

// errStopWalk is a sentinel used by FindFirst to stop early.
type stopWalkError struct{}

func (*stopWalkError) Error() string { return "stop walk" }

var errStopWalk = &stopWalkError{}

// FindAll returns every node matching predicate, in pre-order.
func FindAll(root *Node, predicate func(*Node) bool) []*Node {
	var out []*Node
	_ = Walk(root, func(n *Node) error {
		if predicate(n) {
			out = append(out, n)
		}
		return nil
	})
	return out
}

// FindFirst returns the first node matching predicate, or nil.
func FindFirst(root *Node, predicate func(*Node) bool) *Node {
	var found *Node
	_ = Walk(root, func(n *Node) error {
		if predicate(n) {
			found = n
			return errStopWalk
		}
		return nil
	})
	return found
}

// FindByKind returns every node of the given kind.
func FindByKind(root *Node, kind NodeKind) []*Node {
	return FindAll(root, func(n *Node) bool { return n.Kind == kind })
}
