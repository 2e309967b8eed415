package generator

// RandomGenerator builds N-back sequences with a fixed number of matches.
type RandomGenerator struct{}

// NewRandomGenerator returns a generator; it is stateless and safe to share.
func NewRandomGenerator() *RandomGenerator { return &RandomGenerator{} }

// Note: Generate lives in simple.go next to its helpers.
