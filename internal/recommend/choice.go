// Package recommend turns raw completion output into recommendation sets.
package recommend

import "math/rand"

// ChoiceFunc returns a value in [0, n). Inject a fixed function in tests.
type ChoiceFunc func(n int) int

// RandomChoice picks uniformly using the shared math/rand source.
func RandomChoice(n int) int {
	if n <= 1 {
		return 0
	}
	return rand.Intn(n)
}

func pick[T any](choose ChoiceFunc, items []T) T {
	if choose == nil {
		choose = RandomChoice
	}
	i := choose(len(items))
	if i < 0 || i >= len(items) {
		i = 0
	}
	return items[i]
}
