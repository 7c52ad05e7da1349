package genome

import "math/rand/v2"

// StructuralOp is a chunk-level rearrangement.
type StructuralOp uint8

const (
	OpDeletion StructuralOp = iota
	OpDuplication
	OpTranslocation

	numStructuralOps
)

func (op StructuralOp) String() string {
	switch op {
	case OpDeletion:
		return "deletion"
	case OpDuplication:
		return "duplication"
	case OpTranslocation:
		return "translocation"
	default:
		return "unknown"
	}
}

// StructuralCounts tallies the operations that took effect in one pass.
type StructuralCounts struct {
	Deletions      int
	Duplications   int
	Translocations int
}

// StructuralMutate rearranges the chunks of g. Each chunk, visited in the
// current (not original) order, is hit with probability rate by a deletion,
// duplication or translocation drawn uniformly. The header is never touched
// and the last remaining chunk is never deleted.
func StructuralMutate(g Genome, rate float64, rng *rand.Rand) (Genome, error) {
	out, _, err := structuralMutate(g, rate, rng)
	return out, err
}

func structuralMutate(g Genome, rate float64, rng *rand.Rand) (Genome, StructuralCounts, error) {
	var counts StructuralCounts
	if err := checkRate(rate); err != nil {
		return g, counts, err
	}

	header, chunks := split(string(g))
	if len(chunks) == 0 {
		return g, counts, &MutationError{Pos: len(header), Err: ErrNoChunks}
	}

	for i := 0; i < len(chunks); {
		if rate == 0 || rng.Float64() > rate {
			i++
			continue
		}

		switch StructuralOp(rng.IntN(int(numStructuralOps))) {
		case OpDeletion:
			if len(chunks) == 1 {
				i++
				continue
			}
			chunks = append(chunks[:i], chunks[i+1:]...)
			counts.Deletions++
			// i now points at the chunk that followed the deleted one

		case OpDuplication:
			chunks = append(chunks, "")
			copy(chunks[i+2:], chunks[i+1:])
			chunks[i+1] = chunks[i]
			counts.Duplications++
			i += 2

		case OpTranslocation:
			if len(chunks) > 1 {
				j := rng.IntN(len(chunks) - 1)
				if j >= i {
					j++
				}
				chunks[i], chunks[j] = chunks[j], chunks[i]
				counts.Translocations++
			}
			i++
		}
	}

	return join(header, chunks), counts, nil
}
