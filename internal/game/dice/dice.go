// Package dice provides the randomness abstraction behind every gacha draw.
package dice

// Source is the randomness provider for draws.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Between returns a uniformly distributed int in [min, max].
//
// Precondition: min <= max; src must be non-nil.
// Postcondition: min <= result <= max.
func Between(src Source, min, max int) int {
	if min > max {
		panic("dice: Between called with min > max")
	}
	return min + src.Intn(max-min+1)
}

// Chance reports whether a percent-probability event occurs.
//
// Precondition: src must be non-nil.
// Postcondition: percent <= 0 never hits; percent >= 100 always hits.
func Chance(src Source, percent int) bool {
	if percent <= 0 {
		return false
	}
	if percent >= 100 {
		return true
	}
	return src.Intn(100) < percent
}
