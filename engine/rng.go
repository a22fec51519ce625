package engine

import (
	"math/rand"
	"sort"
)

// RNG is a deterministic random source with position tracking. Every
// operation consumes exactly one draw from the underlying source, so an
// RNG restored from (seed, position) replays the sequence exactly.
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// NewRNG creates a deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{seed: seed, src: rand.New(rand.NewSource(seed))}
}

// RestoreRNG recreates the RNG that NewRNG(seed) would be after
// position operations.
func RestoreRNG(seed, position int64) *RNG {
	r := NewRNG(seed)
	for i := int64(0); i < position; i++ {
		r.src.Int63()
	}
	r.pos = position
	return r
}

// draw consumes one value from the source.
func (r *RNG) draw() int64 {
	r.pos++
	return r.src.Int63()
}

// Roll returns a die roll in [1, sides].
func (r *RNG) Roll(sides int) int {
	if sides <= 1 {
		r.draw()
		return 1
	}
	return int(r.draw()%int64(sides)) + 1
}

// Chance returns true with probability p.
func (r *RNG) Chance(p float64) bool {
	return float64(r.draw())/(1<<63) < p
}

// WeightedChoice picks a key with probability proportional to its
// weight. Keys are walked in sorted order so the same draw always picks
// the same key. Returns "" for an empty or weightless table.
func (r *RNG) WeightedChoice(weights map[string]float64) string {
	keys := make([]string, 0, len(weights))
	total := 0.0
	for k, w := range weights {
		if w <= 0 {
			continue
		}
		keys = append(keys, k)
		total += w
	}
	if len(keys) == 0 {
		r.draw()
		return ""
	}
	sort.Strings(keys)

	roll := float64(r.draw()) / (1 << 63) * total
	cumulative := 0.0
	for _, k := range keys {
		cumulative += weights[k]
		if roll < cumulative {
			return k
		}
	}
	return keys[len(keys)-1]
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 { return r.seed }

// Position returns the number of operations performed since creation.
func (r *RNG) Position() int64 { return r.pos }
