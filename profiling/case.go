package profiling

import (
	"context"

	"github.com/samber/lo"

	"github.com/benz9527/xtree/lib/hrtime"
	"github.com/benz9527/xtree/lib/tree"
)

const (
	InsertionCase       = "insertion"
	InsertionSortedCase = "insertion_sorted"
	DepthCase           = "depth"
	DepthSortedCase     = "depth_sorted"
	EraseCase           = "erase"
)

type CaseKind uint8

const (
	// KindTiming records nanoseconds per operation.
	KindTiming CaseKind = iota
	// KindDepth records the tree depth after each operation.
	KindDepth
)

func (k CaseKind) String() string {
	if k == KindTiming {
		return "timing"
	}
	return "depth"
}

type caseFunc func(t tree.KeyValueTree[int, int], clock hrtime.Clock) []int64

// Case is a measurement driven through the container contract only.
// With Iters above one the results are averaged element-wise.
type Case struct {
	Name  string
	Kind  CaseKind
	Iters int
	run   caseFunc
}

func NewCase(name string, kind CaseKind, iters int, run func(t tree.KeyValueTree[int, int], clock hrtime.Clock) []int64) Case {
	return Case{Name: name, Kind: kind, Iters: iters, run: run}
}

func (c Case) iterations() int {
	return max(c.Iters, 1)
}

// Perform runs the case on t, stopping between repetitions once ctx is
// done.
func (c Case) Perform(ctx context.Context, t tree.KeyValueTree[int, int], clock hrtime.Clock) ([]int64, error) {
	iters := c.iterations()
	sum := c.run(t, clock)
	for i := 1; i < iters; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := c.run(t, clock)
		for j := range sum {
			sum[j] += res[j]
		}
	}
	if iters == 1 {
		return sum, nil
	}
	return lo.Map(sum, func(v int64, _ int) int64 {
		return v / int64(iters)
	}), nil
}

func DefaultCases(size, iters int, seed uint64) []Case {
	sorted := SortedInput(size)
	shuffled := ShuffledInput(size, seed)
	return []Case{
		NewCase(InsertionCase, KindTiming, iters, func(t tree.KeyValueTree[int, int], clock hrtime.Clock) []int64 {
			return fillTree(t, shuffled, false, clock)
		}),
		NewCase(InsertionSortedCase, KindTiming, iters, func(t tree.KeyValueTree[int, int], clock hrtime.Clock) []int64 {
			return fillTree(t, sorted, false, clock)
		}),
		NewCase(DepthCase, KindDepth, 1, func(t tree.KeyValueTree[int, int], clock hrtime.Clock) []int64 {
			return fillTree(t, shuffled, true, clock)
		}),
		NewCase(DepthSortedCase, KindDepth, 1, func(t tree.KeyValueTree[int, int], clock hrtime.Clock) []int64 {
			return fillTree(t, sorted, true, clock)
		}),
		NewCase(EraseCase, KindTiming, iters, func(t tree.KeyValueTree[int, int], clock hrtime.Clock) []int64 {
			return drainTree(t, shuffled, clock)
		}),
	}
}

func SelectCases(cases []Case, names []string) ([]Case, error) {
	return selectByName(cases, func(c Case) string { return c.Name }, names, "cases")
}

func fillTree(t tree.KeyValueTree[int, int], input []int, depth bool, clock hrtime.Clock) []int64 {
	t.Clear()
	result := make([]int64, 0, len(input))
	for _, k := range input {
		if depth {
			t.Insert(k, 0)
			result = append(result, t.Depth())
			continue
		}
		begin := clock.Now()
		t.Insert(k, 0)
		result = append(result, int64(clock.Now()-begin))
	}
	return result
}

func drainTree(t tree.KeyValueTree[int, int], input []int, clock hrtime.Clock) []int64 {
	t.Clear()
	for _, k := range input {
		t.Insert(k, 0)
	}
	result := make([]int64, 0, len(input))
	for _, k := range input {
		begin := clock.Now()
		t.Erase(k)
		result = append(result, int64(clock.Now()-begin))
	}
	return result
}
