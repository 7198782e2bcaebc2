package roster

import (
	"math/rand/v2"
	"slices"
	"sync"

	"footybot/backend/internal/config"
	"footybot/backend/internal/models"

	"github.com/samber/lo"
)

// Partitioner shuffles players and slices them into teams of at most
// groupSize. One generator is seeded at construction and shared by all calls.
type Partitioner struct {
	mu        sync.Mutex
	rng       *rand.Rand
	groupSize int
	palette   []string
}

// NewPartitioner creates a Partitioner. A nil src seeds a PCG generator from
// the runtime's random source. groupSize below 1 falls back to the default.
func NewPartitioner(groupSize int, src rand.Source) *Partitioner {
	if groupSize < 1 {
		groupSize = config.DefaultGroupSize
	}
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Partitioner{
		rng:       rand.New(src),
		groupSize: groupSize,
		palette:   config.TeamPalette,
	}
}

// GroupSize returns the maximum team size.
func (p *Partitioner) GroupSize() int { return p.groupSize }

// Partition shuffles members uniformly and chunks them into teams in shuffle
// order. Every team but the last has exactly GroupSize members. The input
// slice is not modified.
func (p *Partitioner) Partition(members []models.Member) []models.Team {
	if len(members) == 0 {
		return []models.Team{}
	}

	shuffled := slices.Clone(members)
	p.mu.Lock()
	p.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	p.mu.Unlock()

	return lo.Map(lo.Chunk(shuffled, p.groupSize), func(chunk []models.Member, i int) models.Team {
		return models.Team{Label: p.Label(i), Members: chunk}
	})
}

// Label returns the display label of the team at position i.
func (p *Partitioner) Label(i int) string {
	return p.palette[i%len(p.palette)]
}
