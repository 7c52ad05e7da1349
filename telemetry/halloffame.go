package telemetry

import (
	"encoding/json"
	"math/rand/v2"
	"sort"

	"github.com/pthm-cable/liquidevo/genome"
)

// Fitness weights.
const (
	childWeight    = 1.0
	survivalWeight = 1.0 / 60 // per second lived
	eatenWeight    = 0.01
)

// Candidate is a dead creature offered to the hall of fame.
type Candidate struct {
	ID          uint32
	Seed        string
	Genome      genome.Genome
	Generation  int
	Children    int
	Eaten       int
	SurvivalSec float32
}

// HallEntry is a proven genome and the record that earned its place.
type HallEntry struct {
	Genome     genome.Genome `json:"genome"`
	Fitness    float32       `json:"fitness"`
	CreatureID uint32        `json:"creature_id"`
	Generation int           `json:"generation"`
	Children   int           `json:"children"`
	Eaten      int           `json:"eaten"`
	Survival   float32       `json:"survival_sec"`
}

// HallOfFame stores proven genomes for reseeding when the population crashes.
// Halls are indexed by founder seed name so every lineage keeps its own bank.
type HallOfFame struct {
	halls       map[string][]HallEntry
	maxSize     int
	minChildren int
	rng         *rand.Rand
}

// NewHallOfFame creates a hall holding up to maxSize entries per seed.
func NewHallOfFame(maxSize, minChildren int, rng *rand.Rand) *HallOfFame {
	return &HallOfFame{
		halls:       make(map[string][]HallEntry),
		maxSize:     maxSize,
		minChildren: minChildren,
		rng:         rng,
	}
}

// Consider evaluates a dead creature for hall of fame entry.
// Returns true if the creature was added.
func (hof *HallOfFame) Consider(c Candidate) bool {
	if c.Children < hof.minChildren {
		return false
	}

	entry := HallEntry{
		Genome:     c.Genome,
		Fitness:    fitness(c),
		CreatureID: c.ID,
		Generation: c.Generation,
		Children:   c.Children,
		Eaten:      c.Eaten,
		Survival:   c.SurvivalSec,
	}

	hof.halls[c.Seed] = hof.insertEntry(hof.halls[c.Seed], entry)
	return hof.contains(c.Seed, c.ID)
}

func fitness(c Candidate) float32 {
	return float32(c.Children)*childWeight + c.SurvivalSec*survivalWeight + float32(c.Eaten)*eatenWeight
}

func (hof *HallOfFame) contains(seed string, id uint32) bool {
	for _, e := range hof.halls[seed] {
		if e.CreatureID == id {
			return true
		}
	}
	return false
}

// insertEntry adds an entry to the hall, maintaining sorted order by fitness.
// If the hall is full, the lowest-fitness entry is removed.
func (hof *HallOfFame) insertEntry(hall []HallEntry, entry HallEntry) []HallEntry {
	idx := sort.Search(len(hall), func(i int) bool {
		return hall[i].Fitness < entry.Fitness
	})

	if len(hall) >= hof.maxSize && idx >= hof.maxSize {
		return hall
	}

	hall = append(hall, HallEntry{})
	copy(hall[idx+1:], hall[idx:])
	hall[idx] = entry

	if len(hall) > hof.maxSize {
		hall = hall[:hof.maxSize]
	}
	return hall
}

// Sample selects a genome from the seed's hall using tournament selection.
// Returns false if the hall is empty.
func (hof *HallOfFame) Sample(seed string) (HallEntry, bool) {
	hall := hof.halls[seed]
	if len(hall) == 0 {
		return HallEntry{}, false
	}

	const tournamentSize = 3
	best := -1
	for i := 0; i < tournamentSize; i++ {
		idx := hof.rng.IntN(len(hall))
		if best < 0 || hall[idx].Fitness > hall[best].Fitness {
			best = idx
		}
	}
	return hall[best], true
}

// Size returns the number of entries banked for a seed.
func (hof *HallOfFame) Size(seed string) int {
	return len(hof.halls[seed])
}

// TopFitness returns the highest fitness banked for a seed, or 0.
func (hof *HallOfFame) TopFitness(seed string) float32 {
	hall := hof.halls[seed]
	if len(hall) == 0 {
		return 0
	}
	return hall[0].Fitness
}

// MarshalJSON serializes the hall of fame keyed by seed name.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(hof.halls, "", "  ")
}
