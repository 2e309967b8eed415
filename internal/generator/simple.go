package generator

import (
	"context"
	"math/rand"

	"svw.info/nback/internal/domain"
)

func validate(length, gridSize, matches, n int) error {
	switch {
	case length < 1:
		return domain.Configf("length", "must be at least 1, got %d", length)
	case n < 1:
		return domain.Configf("n", "must be at least 1, got %d", n)
	case n >= length:
		return domain.Configf("n", "must be below length %d, got %d", length, n)
	case gridSize < 1:
		return domain.Configf("gridSize", "must be at least 1, got %d", gridSize)
	case matches < 0:
		return domain.Configf("matches", "must not be negative, got %d", matches)
	case matches > length-n:
		return domain.Configf("matches", "at most %d fit after n=%d, got %d", length-n, n, matches)
	case gridSize < 2 && matches < length-n:
		return domain.Configf("gridSize", "needs at least 2 stimuli to place non-matches")
	}
	return nil
}

// Generate returns length stimuli in [1, gridSize] where exactly matches
// positions at or after n repeat the stimulus n steps back. The result is
// deterministic for a given seed.
func (g *RandomGenerator) Generate(ctx context.Context, length, gridSize, matches, n int, seed int64) (domain.Sequence, error) {
	if err := validate(length, gridSize, matches, n); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))

	// 1) choose which positions match
	positions := make([]int, 0, length-n)
	for i := n; i < length; i++ {
		positions = append(positions, i)
	}
	rng.Shuffle(len(positions), func(i, j int) { positions[i], positions[j] = positions[j], positions[i] })
	match := make(map[int]bool, matches)
	for _, p := range positions[:matches] {
		match[p] = true
	}

	// 2) fill left to right so each position only depends on earlier ones
	seq := make(domain.Sequence, length)
	for i := 0; i < length; i++ {
		switch {
		case i < n:
			seq[i] = domain.Stimulus(rng.Intn(gridSize) + 1)
		case match[i]:
			seq[i] = seq[i-n]
		default:
			seq[i] = other(rng, gridSize, seq[i-n])
		}
	}
	return seq, nil
}

// other picks uniformly from [1, gridSize] without prev.
func other(rng *rand.Rand, gridSize int, prev domain.Stimulus) domain.Stimulus {
	v := domain.Stimulus(rng.Intn(gridSize-1) + 1)
	if v >= prev {
		v++
	}
	return v
}
