package tree

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
)

var (
	ErrRedRoot        = errors.New("[tree] red root")
	ErrRedViolation   = errors.New("[tree] red node owns a red child")
	ErrBlackViolation = errors.New("[tree] black height mismatch")
	ErrOrderViolation = errors.New("[tree] keys out of order")
	ErrLinkViolation  = errors.New("[tree] parent link mismatch")
	ErrSizeMismatch   = errors.New("[tree] node count mismatch")
)

// Validate checks the key order, the parent links and the node count,
// then the policy invariants. All violations found are returned
// together; errors.Is matches each sentinel.
func (t *BaseTree[K, V, N]) Validate() error {
	var (
		zero N
		merr error
	)
	if t.root == zero {
		if t.count != 0 {
			merr = fmt.Errorf("%w: empty root with %d nodes", ErrSizeMismatch, t.count)
		}
		return infra.WrapErrorStackWithMessage(merr, "[tree] validation failed")
	}

	if t.root.Parent() != zero {
		merr = multierr.Append(merr, fmt.Errorf("%w: root %v has a parent", ErrLinkViolation, t.root.Key()))
	}
	var (
		visited int64
		prev    N
	)
	t.inorder(func(n N) bool {
		visited++
		if visited > t.count {
			// A cycle or a stale count, stop before looping forever.
			return false
		}
		if l := n.Left(); l != zero && l.Parent() != n {
			merr = multierr.Append(merr, fmt.Errorf("%w: left child of %v", ErrLinkViolation, n.Key()))
		}
		if r := n.Right(); r != zero && r.Parent() != n {
			merr = multierr.Append(merr, fmt.Errorf("%w: right child of %v", ErrLinkViolation, n.Key()))
		}
		if prev != zero && infra.KeyCompare(prev.Key(), n.Key()) >= 0 {
			merr = multierr.Append(merr, fmt.Errorf("%w: %v before %v", ErrOrderViolation, prev.Key(), n.Key()))
		}
		prev = n
		return true
	})
	if visited != t.count {
		merr = multierr.Append(merr, fmt.Errorf("%w: counted %d, reached at least %d", ErrSizeMismatch, t.count, visited))
	}
	if merr == nil {
		merr = t.root.Validate()
	}
	return infra.WrapErrorStackWithMessage(merr, "[tree] validation failed")
}
