package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"

	"golang.org/x/exp/rand"
)

// DefaultBombChance is the per-round probability that bomb joins the bot's candidates.
const DefaultBombChance = 0.15

// Chooser picks the bot's move for a round.
// bombAvailable is false once the bot has played its bomb.
type Chooser interface {
	Choose(bombAvailable bool) Move
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(bombAvailable bool) Move

// Choose calls f.
func (f ChooserFunc) Choose(bombAvailable bool) Move { return f(bombAvailable) }

// Fixed always plays m.
func Fixed(m Move) Chooser {
	return ChooserFunc(func(bool) Move { return m })
}

// RandomChooser draws uniformly from rock, paper and scissors, adding bomb to the
// candidates with probability bombChance while the bot still has it.
// It keeps no memory of earlier rounds. Safe for concurrent use.
type RandomChooser struct {
	mu         sync.Mutex
	rng        *rand.Rand
	bombChance float64
}

// NewRandomChooser builds a chooser from seed. A bombChance outside [0,1] falls
// back to DefaultBombChance.
func NewRandomChooser(seed uint64, bombChance float64) *RandomChooser {
	if bombChance < 0 || bombChance > 1 {
		bombChance = DefaultBombChance
	}
	return &RandomChooser{
		rng:        rand.New(rand.NewSource(seed)),
		bombChance: bombChance,
	}
}

// Choose implements Chooser.
func (c *RandomChooser) Choose(bombAvailable bool) Move {
	c.mu.Lock()
	defer c.mu.Unlock()

	candidates := []Move{MoveRock, MovePaper, MoveScissors}
	if bombAvailable && c.rng.Float64() < c.bombChance {
		candidates = append(candidates, MoveBomb)
	}
	return candidates[c.rng.Intn(len(candidates))]
}

// NewSeed reads a seed from crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
