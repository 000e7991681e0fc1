package cursor

// Role classifies a page node for hover detection
type Role uint8

const (
	RoleText Role = iota
	RoleLink
	RoleButton
	RoleSection
)

// Point is a screen cell coordinate
type Point struct {
	X, Y int
}

// Rect is a half-open cell rectangle
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether p lies inside r
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Node is a hit-testable element of the rendered page
// Children are positioned in screen coordinates and tested last-on-top
type Node struct {
	ID       string
	Role     Role
	Attrs    map[string]string
	Rect     Rect
	Parent   *Node
	Children []*Node
	Action   func()
}

// NewNode creates a detached node
func NewNode(id string, role Role, rect Rect) *Node {
	return &Node{ID: id, Role: role, Rect: rect}
}

// Add attaches child and returns it
func (n *Node) Add(child *Node) *Node {
	child.Parent = n
	n.Children = append(n.Children, child)
	return child
}

// WithAttr sets an attribute and returns the node
func (n *Node) WithAttr(key, value string) *Node {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[key] = value
	return n
}

// Interactive reports whether the node itself is a link, button or role="button"
func (n *Node) Interactive() bool {
	return n.Role == RoleLink || n.Role == RoleButton || n.Attrs["role"] == "button"
}

// HitTest returns the deepest node containing p, nil if outside
func (n *Node) HitTest(p Point) *Node {
	if n == nil || !n.Rect.Contains(p) {
		return nil
	}
	for i := len(n.Children) - 1; i >= 0; i-- {
		if hit := n.Children[i].HitTest(p); hit != nil {
			return hit
		}
	}
	return n
}

// InteractiveAncestor walks from target up the parent chain to the first interactive node
func InteractiveAncestor(target *Node) *Node {
	for n := target; n != nil; n = n.Parent {
		if n.Interactive() {
			return n
		}
	}
	return nil
}
