package profiling

import (
	"math/rand/v2"
)

const DefaultSeed uint64 = 1234

// SortedInput returns 1..n.
func SortedInput(n int) []int {
	input := make([]int, n)
	for i := range input {
		input[i] = i + 1
	}
	return input
}

// ShuffledInput returns 1..n shuffled with a generator seeded by seed,
// so runs are reproducible.
func ShuffledInput(n int, seed uint64) []int {
	input := SortedInput(n)
	r := rand.New(rand.NewPCG(seed, seed))
	r.Shuffle(len(input), func(i, j int) {
		input[i], input[j] = input[j], input[i]
	})
	return input
}
