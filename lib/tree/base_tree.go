package tree

import (
	"io"

	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/xlog"
)

// BaseTree is a binary search tree whose balancing is delegated to
// the node policy N. The zero value is an empty tree ready to use.
// It is not safe for concurrent use.
type BaseTree[K infra.OrderedKey, V any, N NodePolicy[K, V, N]] struct {
	root            N
	count           int64
	checkInvariants bool
	logger          xlog.XLogger
}

var _ KeyValueTree[int, string] = (*BaseTree[int, string, *rbNode[int, string]])(nil)

func NewBaseTree[K infra.OrderedKey, V any, N NodePolicy[K, V, N]](opts ...TreeOption) *BaseTree[K, V, N] {
	t := &BaseTree[K, V, N]{}
	t.init(opts...)
	return t
}

func (t *BaseTree[K, V, N]) init(opts ...TreeOption) {
	cfg := &treeConfig{}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	t.checkInvariants = cfg.checkInvariants
	t.logger = cfg.logger
}

func (t *BaseTree[K, V, N]) Len() int64 {
	return t.count
}

// search descends from the root. It returns the node holding key with
// Root, or the last visited node with the side a new node for key
// would hang on. An empty tree returns the zero node.
func (t *BaseTree[K, V, N]) search(key K) (N, Direction) {
	var zero N
	x := t.root
	if x == zero {
		return zero, Root
	}
	for {
		switch infra.KeyCompare(key, x.Key()) {
		case 0:
			return x, Root
		case -1:
			if l := x.Left(); l != zero {
				x = l
				continue
			}
			return x, Left
		default:
			if r := x.Right(); r != zero {
				x = r
				continue
			}
			return x, Right
		}
	}
}

func (t *BaseTree[K, V, N]) insertAt(parent N, dir Direction, key K, val V) N {
	if infra.KeyIsNaN(key) {
		panic("[tree] NaN key")
	}
	var zero N
	n := zero.Spawn(key, val, parent)
	switch {
	case parent == zero:
		t.root = n
	case dir == Left:
		parent.SetLeft(n)
	case dir == Right:
		parent.SetRight(n)
	default:
		panic( /* debug assertion */ "[tree] attach to an occupied position")
	}
	t.count++
	n.OnInserted()
	t.root = climb[K, V](n)
	t.verify("insert")
	return n
}

func (t *BaseTree[K, V, N]) deleteAt(n N) {
	var zero N
	// Any node except the vacated one leads back to the new root.
	anchors := [4]N{t.root, n.Parent(), n.Left(), n.Right()}
	victim := n.OnAboutToDelete()
	victim.SetParent(zero)
	victim.SetLeft(zero)
	victim.SetRight(zero)
	t.count--

	t.root = zero
	for _, a := range anchors {
		if a != zero && a != victim {
			t.root = climb[K, V](a)
			break
		}
	}
	t.verify("erase")
}

func climb[K infra.OrderedKey, V any, N NodePolicy[K, V, N]](n N) N {
	var zero N
	for p := n.Parent(); p != zero; p = n.Parent() {
		n = p
	}
	return n
}

func (t *BaseTree[K, V, N]) Index(key K) *V {
	n, dir := t.search(key)
	var zero N
	if n != zero && dir == Root {
		return n.ValRef()
	}
	var val V
	return t.insertAt(n, dir, key, val).ValRef()
}

func (t *BaseTree[K, V, N]) Insert(key K, val V) bool {
	n, dir := t.search(key)
	var zero N
	if n != zero && dir == Root {
		n.SetVal(val)
		return false
	}
	t.insertAt(n, dir, key, val)
	return true
}

func (t *BaseTree[K, V, N]) Find(key K) (V, bool) {
	n, dir := t.search(key)
	var zero N
	if n == zero || dir != Root {
		var val V
		return val, false
	}
	return n.Val(), true
}

func (t *BaseTree[K, V, N]) Contains(key K) bool {
	_, ok := t.Find(key)
	return ok
}

func (t *BaseTree[K, V, N]) Erase(key K) bool {
	n, dir := t.search(key)
	var zero N
	if n == zero || dir != Root {
		return false
	}
	t.deleteAt(n)
	return true
}

// Clear unlinks every node so the old graph holds no references.
func (t *BaseTree[K, V, N]) Clear() {
	var zero N
	t.traverse(func(_ int64, n N) bool {
		n.SetParent(zero)
		n.SetLeft(zero)
		n.SetRight(zero)
		return true
	})
	t.root = zero
	t.count = 0
}

func (t *BaseTree[K, V, N]) Depth() int64 {
	return depthOf[K, V](t.root)
}

func depthOf[K infra.OrderedKey, V any, N NodePolicy[K, V, N]](n N) int64 {
	var zero N
	if n == zero {
		return 0
	}
	return 1 + max(depthOf[K, V](n.Left()), depthOf[K, V](n.Right()))
}

func (t *BaseTree[K, V, N]) Foreach(action func(idx int64, key K, val V) bool) {
	if action == nil {
		return
	}
	idx := int64(0)
	t.inorder(func(n N) bool {
		ok := action(idx, n.Key(), n.Val())
		idx++
		return ok
	})
}

func (t *BaseTree[K, V, N]) inorder(visit func(n N) bool) {
	var zero N
	stack := make([]N, 0, 32)
	for x := t.root; x != zero || len(stack) > 0; {
		for ; x != zero; x = x.Left() {
			stack = append(stack, x)
		}
		x = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(x) {
			return
		}
		x = x.Right()
	}
}

// traverse visits the nodes level by level, left before right. The
// children are queued before visit runs, so visit may unlink them.
func (t *BaseTree[K, V, N]) traverse(visit func(level int64, n N) bool) {
	var zero N
	if t.root == zero {
		return
	}
	type item struct {
		level int64
		node  N
	}
	queue := []item{{node: t.root}}
	for len(queue) > 0 {
		it := queue[0]
		queue[0] = item{}
		queue = queue[1:]
		if l := it.node.Left(); l != zero {
			queue = append(queue, item{level: it.level + 1, node: l})
		}
		if r := it.node.Right(); r != zero {
			queue = append(queue, item{level: it.level + 1, node: r})
		}
		if !visit(it.level, it.node) {
			return
		}
	}
}

// Print writes one line per node in level order.
func (t *BaseTree[K, V, N]) Print(w io.Writer) error {
	var err error
	t.traverse(func(_ int64, n N) bool {
		_, err = io.WriteString(w, n.String()+"\n")
		return err == nil
	})
	return err
}

// Clone returns a deep copy sharing no node with t.
func (t *BaseTree[K, V, N]) Clone() *BaseTree[K, V, N] {
	var zero N
	c := &BaseTree[K, V, N]{
		checkInvariants: t.checkInvariants,
		logger:          t.logger,
	}
	c.root = cloneSubtree[K, V](t.root, zero)
	c.count = t.count
	return c
}

func (t *BaseTree[K, V, N]) CopyFrom(src *BaseTree[K, V, N]) {
	if src == nil || src == t {
		return
	}
	var zero N
	t.Clear()
	t.root = cloneSubtree[K, V](src.root, zero)
	t.count = src.count
}

func cloneSubtree[K infra.OrderedKey, V any, N NodePolicy[K, V, N]](src, parent N) N {
	var zero N
	if src == zero {
		return zero
	}
	n := src.Clone()
	n.SetParent(parent)
	n.SetLeft(cloneSubtree[K, V](src.Left(), n))
	n.SetRight(cloneSubtree[K, V](src.Right(), n))
	return n
}

// Move hands the nodes over to a new tree and leaves t empty.
func (t *BaseTree[K, V, N]) Move() *BaseTree[K, V, N] {
	m := &BaseTree[K, V, N]{
		root:            t.root,
		count:           t.count,
		checkInvariants: t.checkInvariants,
		logger:          t.logger,
	}
	t.reset()
	return m
}

func (t *BaseTree[K, V, N]) MoveFrom(src *BaseTree[K, V, N]) {
	if src == nil || src == t {
		return
	}
	t.Clear()
	t.root, t.count = src.root, src.count
	src.reset()
}

func (t *BaseTree[K, V, N]) reset() {
	var zero N
	t.root = zero
	t.count = 0
}

func (t *BaseTree[K, V, N]) log() xlog.XLogger {
	if t.logger != nil {
		return t.logger
	}
	return defaultTreeLogger()
}

func (t *BaseTree[K, V, N]) verify(op string) {
	if !debugChecks && !t.checkInvariants {
		return
	}
	if err := t.Validate(); err != nil {
		t.log().ErrorStack(err, "[tree] invariant broken",
			zap.String("op", op),
			zap.Int64("len", t.count),
		)
		_ = t.log().Sync()
		panic(err)
	}
}
