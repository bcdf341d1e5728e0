package profiling

import (
	"strings"

	"github.com/samber/lo"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
)

const (
	SimpleSubject   = "simple"
	RedBlackSubject = "red-black"
)

// Subject is a named tree implementation under measurement. Every job
// gets its own tree from New.
type Subject struct {
	Name string
	New  func() tree.KeyValueTree[int, int]
}

func DefaultSubjects(opts ...tree.TreeOption) []Subject {
	return []Subject{
		{
			Name: SimpleSubject,
			New:  func() tree.KeyValueTree[int, int] { return tree.NewSimpleTree[int, int](opts...) },
		},
		{
			Name: RedBlackSubject,
			New:  func() tree.KeyValueTree[int, int] { return tree.NewRBTree[int, int](opts...) },
		},
	}
}

// SelectSubjects keeps the subjects named in names, all of them for
// an empty filter.
func SelectSubjects(subjects []Subject, names []string) ([]Subject, error) {
	return selectByName(subjects, func(s Subject) string { return s.Name }, names, "subjects")
}

func selectByName[T any](items []T, nameOf func(T) string, names []string, what string) ([]T, error) {
	if len(names) == 0 {
		return items, nil
	}
	known := lo.Map(items, func(item T, _ int) string { return nameOf(item) })
	if unknown, _ := lo.Difference(names, known); len(unknown) > 0 {
		return nil, infra.NewErrorStack("unknown " + what + " " + strings.Join(unknown, ","))
	}
	return lo.Filter(items, func(item T, _ int) bool {
		return lo.Contains(names, nameOf(item))
	}), nil
}
