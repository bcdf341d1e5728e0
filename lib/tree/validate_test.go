package tree

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/xlog"
)

func buildRBTree(keys ...int) *RBTree[int, int] {
	tree := NewRBTree[int, int]()
	for _, k := range keys {
		tree.Insert(k, k)
	}
	return tree
}

func TestValidate_Violations(t *testing.T) {
	testcases := []struct {
		name    string
		corrupt func(tree *RBTree[int, int])
		target  error
	}{
		{
			name:    "red root",
			corrupt: func(tree *RBTree[int, int]) { tree.root.color = Red },
			target:  ErrRedRoot,
		},
		{
			name:    "red red",
			corrupt: func(tree *RBTree[int, int]) { tree.root.left.color = Red },
			target:  ErrRedViolation,
		},
		{
			name:    "black height",
			corrupt: func(tree *RBTree[int, int]) { tree.root.left.left.color = Black },
			target:  ErrBlackViolation,
		},
		{
			name: "order",
			corrupt: func(tree *RBTree[int, int]) {
				tree.root.left.key, tree.root.right.key = tree.root.right.key, tree.root.left.key
			},
			target: ErrOrderViolation,
		},
		{
			name:    "parent link",
			corrupt: func(tree *RBTree[int, int]) { tree.root.left.parent = tree.root.right },
			target:  ErrLinkViolation,
		},
		{
			name:    "size",
			corrupt: func(tree *RBTree[int, int]) { tree.count++ },
			target:  ErrSizeMismatch,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			// 4B(2B(1R,3R),6B(5R,7R))
			tree := buildRBTree(4, 2, 6, 1, 3, 5, 7)
			require.NoError(tt, tree.Validate())

			tc.corrupt(tree)
			err := tree.Validate()
			require.Error(tt, err)
			require.ErrorIs(tt, err, tc.target)
			var es infra.ErrorStack
			require.True(tt, errors.As(err, &es))
			require.NotEmpty(tt, es.Frames())
		})
	}
}

func TestValidate_EmptyTreeWithCount(t *testing.T) {
	tree := NewSimpleTree[int, int]()
	require.NoError(t, tree.Validate())
	tree.count = 2
	require.ErrorIs(t, tree.Validate(), ErrSizeMismatch)
}

func TestValidate_CycleStops(t *testing.T) {
	tree := NewSimpleTree[int, int]()
	tree.Insert(2, 2)
	tree.Insert(3, 3)
	tree.root.right.right = tree.root
	require.ErrorIs(t, tree.Validate(), ErrSizeMismatch)
}

func TestInvariantCheck_PanicsAndLogs(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := xlog.NewXLogger(
		xlog.WithXLoggerLevel(xlog.LogLevelDebug),
		xlog.WithXLoggerWriteSyncer(zapcore.AddSync(buf)),
	)
	tree := NewRBTree[int, int](WithInvariantCheck(), WithTreeLogger(logger))
	tree.Insert(1, 1)
	tree.count = 10

	require.PanicsWithError(t, "[tree] validation failed: [tree] node count mismatch: counted 11, reached at least 2", func() {
		tree.Insert(2, 2)
	})
	require.Contains(t, buf.String(), "[tree] invariant broken")
	require.Contains(t, buf.String(), `"op":"insert"`)
	require.Contains(t, buf.String(), `"errorStack":[`)

	// Without the check the corruption goes unnoticed.
	unchecked := NewRBTree[int, int]()
	unchecked.Insert(1, 1)
	unchecked.count = 10
	if !debugChecks {
		require.NotPanics(t, func() { unchecked.Insert(2, 2) })
	}
}
