package tree

import (
	"fmt"

	"github.com/benz9527/xtree/lib/infra"
)

// simpleNode never rebalances. Sorted input degrades it to a chain.
type simpleNode[K infra.OrderedKey, V any] struct {
	parent *simpleNode[K, V]
	left   *simpleNode[K, V]
	right  *simpleNode[K, V]
	key    K
	val    V
}

func (node *simpleNode[K, V]) Key() K                        { return node.key }
func (node *simpleNode[K, V]) Val() V                        { return node.val }
func (node *simpleNode[K, V]) ValRef() *V                    { return &node.val }
func (node *simpleNode[K, V]) SetVal(val V)                  { node.val = val }
func (node *simpleNode[K, V]) Parent() *simpleNode[K, V]     { return node.parent }
func (node *simpleNode[K, V]) Left() *simpleNode[K, V]       { return node.left }
func (node *simpleNode[K, V]) Right() *simpleNode[K, V]      { return node.right }
func (node *simpleNode[K, V]) SetParent(n *simpleNode[K, V]) { node.parent = n }
func (node *simpleNode[K, V]) SetLeft(n *simpleNode[K, V])   { node.left = n }
func (node *simpleNode[K, V]) SetRight(n *simpleNode[K, V])  { node.right = n }

func (*simpleNode[K, V]) Spawn(key K, val V, parent *simpleNode[K, V]) *simpleNode[K, V] {
	return &simpleNode[K, V]{parent: parent, key: key, val: val}
}

func (node *simpleNode[K, V]) Clone() *simpleNode[K, V] {
	return &simpleNode[K, V]{key: node.key, val: node.val}
}

func (node *simpleNode[K, V]) OnInserted() {}

// OnAboutToDelete splices the rightmost node of the left subtree, or
// else the leftmost of the right subtree, into node's position. The
// replacement is detached from its own position the same way first.
func (node *simpleNode[K, V]) OnAboutToDelete() *simpleNode[K, V] {
	var repl *simpleNode[K, V]
	switch {
	case node.left != nil:
		for repl = node.left; repl.right != nil; repl = repl.right {
		}
	case node.right != nil:
		for repl = node.right; repl.left != nil; repl = repl.left {
		}
	default:
	}

	if repl != nil {
		repl.OnAboutToDelete()
		// The detach above may have rewired node's children.
		repl.left, repl.right = node.left, node.right
		if repl.left != nil {
			repl.left.parent = repl
		}
		if repl.right != nil {
			repl.right.parent = repl
		}
	}

	p := node.parent
	if repl != nil {
		repl.parent = p
	}
	if p != nil {
		if p.left == node {
			p.left = repl
		} else {
			p.right = repl
		}
	}
	return node
}

func (node *simpleNode[K, V]) Validate() error { return nil }

func (node *simpleNode[K, V]) String() string {
	return fmt.Sprintf("%v : %v", node.key, node.val)
}

// SimpleTree is the unbalanced baseline.
type SimpleTree[K infra.OrderedKey, V any] struct {
	BaseTree[K, V, *simpleNode[K, V]]
}

var _ KeyValueTree[string, int] = (*SimpleTree[string, int])(nil)

func NewSimpleTree[K infra.OrderedKey, V any](opts ...TreeOption) *SimpleTree[K, V] {
	t := &SimpleTree[K, V]{}
	t.init(opts...)
	return t
}

func (t *SimpleTree[K, V]) Clone() *SimpleTree[K, V] {
	return &SimpleTree[K, V]{BaseTree: *t.BaseTree.Clone()}
}

func (t *SimpleTree[K, V]) CopyFrom(src *SimpleTree[K, V]) {
	if src == nil {
		return
	}
	t.BaseTree.CopyFrom(&src.BaseTree)
}

func (t *SimpleTree[K, V]) Move() *SimpleTree[K, V] {
	return &SimpleTree[K, V]{BaseTree: *t.BaseTree.Move()}
}

func (t *SimpleTree[K, V]) MoveFrom(src *SimpleTree[K, V]) {
	if src == nil {
		return
	}
	t.BaseTree.MoveFrom(&src.BaseTree)
}
