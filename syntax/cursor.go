package syntax

// Cursor walks a subtree. It never leaves the node it was created on.
type Cursor struct {
	root    *Node
	current *Node
}

// NewCursor returns a cursor positioned on n; n acts as the cursor's root.
func NewCursor(n *Node) *Cursor {
	return &Cursor{root: n, current: n}
}

func (c *Cursor) CurrentNode() *Node { return c.current }

func (c *Cursor) GotoFirstChild() bool {
	if len(c.current.children) == 0 {
		return false
	}
	c.current = c.current.children[0]
	return true
}

func (c *Cursor) GotoNextSibling() bool {
	if c.current == c.root {
		return false
	}
	next := c.current.NextSibling()
	if next == nil {
		return false
	}
	c.current = next
	return true
}

func (c *Cursor) GotoParent() bool {
	if c.current == c.root || c.current.parent == nil {
		return false
	}
	c.current = c.current.parent
	return true
}

// PostOrder visits every node of the subtree rooted at n, children before
// parents. The tree may be edited from inside visit; structure must not change.
func PostOrder(n *Node, visit func(*Node)) {
	c := NewCursor(n)
	var last *Node
	for {
		if c.GotoFirstChild() {
			continue
		}
		for {
			cur := c.CurrentNode()
			if cur != last {
				visit(cur)
				last = cur
			}
			if c.GotoNextSibling() {
				break
			}
			if !c.GotoParent() {
				return
			}
		}
	}
}
