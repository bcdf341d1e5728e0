package tree

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
)

type rbNode[K infra.OrderedKey, V any] struct {
	parent *rbNode[K, V]
	left   *rbNode[K, V]
	right  *rbNode[K, V]
	key    K
	val    V
	color  RBColor
}

func (node *rbNode[K, V]) Key() K                    { return node.key }
func (node *rbNode[K, V]) Val() V                    { return node.val }
func (node *rbNode[K, V]) ValRef() *V                { return &node.val }
func (node *rbNode[K, V]) SetVal(val V)              { node.val = val }
func (node *rbNode[K, V]) Color() RBColor            { return node.color }
func (node *rbNode[K, V]) Parent() *rbNode[K, V]     { return node.parent }
func (node *rbNode[K, V]) Left() *rbNode[K, V]       { return node.left }
func (node *rbNode[K, V]) Right() *rbNode[K, V]      { return node.right }
func (node *rbNode[K, V]) SetParent(n *rbNode[K, V]) { node.parent = n }
func (node *rbNode[K, V]) SetLeft(n *rbNode[K, V])   { node.left = n }
func (node *rbNode[K, V]) SetRight(n *rbNode[K, V])  { node.right = n }

// Spawn creates a red leaf.
func (*rbNode[K, V]) Spawn(key K, val V, parent *rbNode[K, V]) *rbNode[K, V] {
	return &rbNode[K, V]{
		parent: parent,
		key:    key,
		val:    val,
		color:  Red,
	}
}

func (node *rbNode[K, V]) Clone() *rbNode[K, V] {
	return &rbNode[K, V]{
		key:   node.key,
		val:   node.val,
		color: node.color,
	}
}

func (node *rbNode[K, V]) String() string {
	return fmt.Sprintf("%v : %v [%s]", node.key, node.val, node.color)
}

func isRed[K infra.OrderedKey, V any](node *rbNode[K, V]) bool {
	return node != nil && node.color == Red
}

// Absent children are black leaves.
func isBlack[K infra.OrderedKey, V any](node *rbNode[K, V]) bool {
	return node == nil || node.color == Black
}

func (node *rbNode[K, V]) direction() Direction {
	if node.parent == nil {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *rbNode[K, V]) sibling() *rbNode[K, V] {
	switch node.direction() {
	case Left:
		return node.parent.right
	case Right:
		return node.parent.left
	default:
	}
	return nil
}

func (node *rbNode[K, V]) grandpa() *rbNode[K, V] {
	if node.parent == nil {
		return nil
	}
	return node.parent.parent
}

func (node *rbNode[K, V]) uncle() *rbNode[K, V] {
	if node.parent == nil {
		return nil
	}
	return node.parent.sibling()
}

func (node *rbNode[K, V]) maximum() *rbNode[K, V] {
	aux := node
	for ; aux.right != nil; aux = aux.right {
	}
	return aux
}

// replaceWith hangs n at node's position in node's parent. A nil n
// just unlinks node from its parent.
func (node *rbNode[K, V]) replaceWith(n *rbNode[K, V]) {
	p := node.parent
	if n != nil {
		n.parent = p
	}
	if p == nil {
		return
	}
	if p.left == node {
		p.left = n
	} else {
		p.right = n
	}
}

/*
 *       |                  |
 *       X                  Y
 *      / \                / \
 *     a   Y     ==>      X   c
 *        / \            / \
 *       b   c          a   b
 */
func (node *rbNode[K, V]) rotateLeft() {
	y := node.right
	if y == nil {
		panic( /* debug assertion */ "[rbtree] rotate left without right child")
	}
	node.replaceWith(y)
	node.right = y.left
	if y.left != nil {
		y.left.parent = node
	}
	y.left = node
	node.parent = y
}

/*
 *         |              |
 *         X              Y
 *        / \            / \
 *       Y   c   ==>    a   X
 *      / \                / \
 *     a   b              b   c
 */
func (node *rbNode[K, V]) rotateRight() {
	y := node.left
	if y == nil {
		panic( /* debug assertion */ "[rbtree] rotate right without left child")
	}
	node.replaceWith(y)
	node.left = y.right
	if y.right != nil {
		y.right.parent = node
	}
	y.right = node
	node.parent = y
}

func (node *rbNode[K, V]) rotate(dir Direction) {
	if dir == Left {
		node.rotateLeft()
		return
	}
	node.rotateRight()
}

// OnInserted runs the insertion fixup on a freshly attached red leaf,
// climbing while the uncle is red.
func (node *rbNode[K, V]) OnInserted() {
	x := node
	for {
		p := x.parent
		if p == nil {
			// Case 1: x is the root.
			x.color = Black
			return
		}
		if p.color == Black {
			// Case 2: nothing is violated.
			return
		}
		g := x.grandpa()
		if g == nil {
			// A red root, only reachable from a corrupted tree.
			p.color = Black
			return
		}
		if u := x.uncle(); isRed(u) {
			// Case 3: push the blackness down from the grandpa.
			p.color = Black
			u.color = Black
			g.color = Red
			x = g
			continue
		}

		// Case 4: align x with its parent first.
		//
		//      G             G
		//     /             /
		//    P     ==>     X
		//     \           /
		//      X         P
		side := p.direction()
		if x.direction() != side {
			p.rotate(side)
			x = p
			p = x.parent
		}
		p.color = Black
		g.color = Red
		if side == Left {
			g.rotateRight()
		} else {
			g.rotateLeft()
		}
		return
	}
}

// OnAboutToDelete detaches the node to drop. With two children the
// in-order predecessor's payload moves into node and the predecessor
// is dropped instead.
func (node *rbNode[K, V]) OnAboutToDelete() *rbNode[K, V] {
	if node.left != nil && node.right != nil {
		pred := node.left.maximum()
		node.key, node.val = pred.key, pred.val
		return pred.OnAboutToDelete()
	}

	child := node.left
	if child == nil {
		child = node.right
	}
	if child == nil {
		if node.color == Black {
			// Rebalance while node still stands in for the missing black.
			node.removalRebalance()
		}
		node.replaceWith(nil)
		return node
	}

	node.replaceWith(child)
	if node.color == Black {
		if child.color == Red {
			child.color = Black
		} else {
			child.removalRebalance()
		}
	}
	return node
}

// removalRebalance restores the black height of a subtree which is
// short of one black node compared to its sibling's subtree.
func (node *rbNode[K, V]) removalRebalance() {
	x := node
	for {
		p := x.parent
		if p == nil {
			// Case 1: x is the new root.
			return
		}
		dir := x.direction()
		s := x.sibling()
		if isRed(s) {
			// Case 2: turn the red sibling into x's grandpa.
			p.color = Red
			s.color = Black
			p.rotate(dir)
			s = x.sibling()
		}
		if s == nil {
			panic( /* debug assertion */ "[rbtree] short black subtree without sibling")
		}

		near, far := s.left, s.right
		if dir == Right {
			near, far = s.right, s.left
		}
		if isBlack(near) && isBlack(far) {
			s.color = Red
			if p.color == Black {
				// Case 3: the whole parent subtree is short now.
				x = p
				continue
			}
			// Case 4
			p.color = Black
			return
		}
		if isBlack(far) {
			// Case 5: move the red near nephew to the far side.
			s.color = Red
			near.color = Black
			if dir == Left {
				s.rotateRight()
			} else {
				s.rotateLeft()
			}
			s = x.sibling()
			far = s.right
			if dir == Right {
				far = s.left
			}
		}
		// Case 6
		s.color = p.color
		p.color = Black
		far.color = Black
		p.rotate(dir)
		return
	}
}

// Validate checks the root color, red adjacency and black heights of
// the subtree.
func (node *rbNode[K, V]) Validate() error {
	var merr error
	if node.parent == nil && node.color == Red {
		merr = fmt.Errorf("%w: %v", ErrRedRoot, node.key)
	}
	if node.blackHeight(&merr) < 0 {
		merr = multierr.Append(merr, fmt.Errorf("%w: below %v", ErrBlackViolation, node.key))
	}
	return merr
}

// blackHeight returns -1 once any two paths disagree.
func (node *rbNode[K, V]) blackHeight(merr *error) int64 {
	if node == nil {
		return 0
	}
	if node.color == Red && (isRed(node.left) || isRed(node.right)) {
		*merr = multierr.Append(*merr, fmt.Errorf("%w: %v", ErrRedViolation, node.key))
	}
	lh, rh := node.left.blackHeight(merr), node.right.blackHeight(merr)
	if lh < 0 || rh < 0 || lh != rh {
		return -1
	}
	if node.color == Black {
		return lh + 1
	}
	return lh
}
