package tree

import (
	"io"

	"github.com/benz9527/xtree/lib/infra"
)

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "black"
	case Red:
		return "red"
	default:
	}
	return "unknown"
}

// Direction is the side of a parent a node hangs on, or where a
// missing key would be attached. Root means the node itself.
type Direction int8

const (
	Left Direction = -1 + iota
	Root
	Right
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Root:
		return "root"
	case Right:
		return "right"
	default:
	}
	return "unknown"
}

// NodePolicy is the node type a BaseTree is parameterized with. The
// engine owns search, attach, detach and re-rooting; the policy owns
// the balancing state and the two lifecycle hooks.
//
// N is expected to be a pointer type whose zero value is the absent
// node. Spawn is invoked on that zero value and must not read the
// receiver.
type NodePolicy[K infra.OrderedKey, V any, N any] interface {
	comparable

	Key() K
	Val() V
	ValRef() *V
	SetVal(val V)

	Parent() N
	Left() N
	Right() N
	SetParent(n N)
	SetLeft(n N)
	SetRight(n N)

	// Spawn allocates a detached node hanging from parent.
	Spawn(key K, val V, parent N) N
	// Clone copies key, value and policy state but no links.
	Clone() N

	// OnInserted restores the policy invariants after the node has
	// been attached as a leaf.
	OnInserted()
	// OnAboutToDelete rewires the tree so that the returned node can
	// be dropped. The returned node is either the receiver or the
	// node whose payload has been moved into the receiver.
	OnAboutToDelete() N

	// Validate checks the policy invariants of the subtree rooted at
	// the receiver. The engine checks order and links itself.
	Validate() error
	String() string
}

// KeyValueTree is the ordered key-value container contract shared by
// every node policy.
type KeyValueTree[K infra.OrderedKey, V any] interface {
	// Index returns the value slot of key, attaching a zero value
	// first if the key is absent. The pointer is valid until the next
	// structural change.
	Index(key K) *V
	// Insert replaces the value of an existing key and reports false,
	// or attaches a new node and reports true.
	Insert(key K, val V) bool
	Find(key K) (V, bool)
	Contains(key K) bool
	Erase(key K) bool
	Clear()
	Len() int64
	// Depth is 0 for an empty tree, else the node count of the
	// longest root to leaf path.
	Depth() int64
	// Foreach visits the pairs in ascending key order until action
	// returns false.
	Foreach(action func(idx int64, key K, val V) bool)
	Validate() error
	Print(w io.Writer) error
}
