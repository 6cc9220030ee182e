// Package dice provides the randomness abstraction used by the battle engine
// for damage variance, enemy ability choice and enemy target choice.
package dice

// Source is the randomness provider for battle resolution.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Between returns a uniformly distributed int in [lo, hi].
//
// Precondition: hi >= lo; src must be non-nil.
// Postcondition: lo <= result <= hi.
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}
