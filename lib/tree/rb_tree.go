package tree

import (
	"github.com/benz9527/xtree/lib/infra"
)

// RBTree is a red-black tree: every root to leaf path holds the same
// number of black nodes and no red node has a red child, so the depth
// stays within 2*log2(n+1).
type RBTree[K infra.OrderedKey, V any] struct {
	BaseTree[K, V, *rbNode[K, V]]
}

var _ KeyValueTree[string, int] = (*RBTree[string, int])(nil)

func NewRBTree[K infra.OrderedKey, V any](opts ...TreeOption) *RBTree[K, V] {
	t := &RBTree[K, V]{}
	t.init(opts...)
	return t
}

func (t *RBTree[K, V]) Clone() *RBTree[K, V] {
	return &RBTree[K, V]{BaseTree: *t.BaseTree.Clone()}
}

func (t *RBTree[K, V]) CopyFrom(src *RBTree[K, V]) {
	if src == nil {
		return
	}
	t.BaseTree.CopyFrom(&src.BaseTree)
}

func (t *RBTree[K, V]) Move() *RBTree[K, V] {
	return &RBTree[K, V]{BaseTree: *t.BaseTree.Move()}
}

func (t *RBTree[K, V]) MoveFrom(src *RBTree[K, V]) {
	if src == nil {
		return
	}
	t.BaseTree.MoveFrom(&src.BaseTree)
}
