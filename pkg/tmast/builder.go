package tmast

// New creates a new node of the given kind with no parent, children, span,
// or attributes.
func New(kind NodeKind) *Node {
	return &Node{Kind: kind}
}

// NewDocument creates a new document root node.
func NewDocument() *Node {
	return New(NodeDocument)
}

// AppendChild appends child to parent, maintaining sibling pointers.
func AppendChild(parent, child *Node) {
	if parent == nil || child == nil {
		return
	}
	if child.Parent != nil {
		RemoveChild(child.Parent, child)
	}
	child.Parent = parent
	child.Prev = parent.LastChild
	child.Next = nil
	if parent.LastChild != nil {
		parent.LastChild.Next = child
	} else {
		parent.FirstChild = child
	}
	parent.LastChild = child
}

// PrependChild prepends child to parent.
func PrependChild(parent, child *Node) {
	if parent == nil || child == nil {
		return
	}
	if child.Parent != nil {
		RemoveChild(child.Parent, child)
	}
	child.Parent = parent
	child.Prev = nil
	child.Next = parent.FirstChild
	if parent.FirstChild != nil {
		parent.FirstChild.Prev = child
	} else {
		parent.LastChild = child
	}
	parent.FirstChild = child
}

// InsertAfter inserts newNode immediately after sibling. sibling must have
// a parent.
func InsertAfter(sibling, newNode *Node) {
	if sibling == nil || newNode == nil || sibling.Parent == nil {
		return
	}
	parent := sibling.Parent
	if newNode.Parent != nil {
		RemoveChild(newNode.Parent, newNode)
	}
	newNode.Parent = parent
	newNode.Prev = sibling
	newNode.Next = sibling.Next
	if sibling.Next != nil {
		sibling.Next.Prev = newNode
	} else {
		parent.LastChild = newNode
	}
	sibling.Next = newNode
}

// RemoveChild detaches child from parent.
func RemoveChild(parent, child *Node) {
	if parent == nil || child == nil || child.Parent != parent {
		return
	}
	if child.Prev != nil {
		child.Prev.Next = child.Next
	} else {
		parent.FirstChild = child.Next
	}
	if child.Next != nil {
		child.Next.Prev = child.Prev
	} else {
		parent.LastChild = child.Prev
	}
	child.Parent = nil
	child.Prev = nil
	child.Next = nil
}

// AppendChildren appends each of children to parent, in order.
func AppendChildren(parent *Node, children []*Node) {
	for _, c := range children {
		AppendChild(parent, c)
	}
}
