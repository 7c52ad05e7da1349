// Package telemetry provides population health tracking, lineage logging,
// bookmarking, and genome snapshots.
package telemetry

import "github.com/pthm-cable/liquidevo/genome"

// BirthRecord is one row of the lineage log.
type BirthRecord struct {
	Tick           int32  `csv:"tick"`
	ChildID        uint32 `csv:"child"`
	ParentID       uint32 `csv:"parent"` // 0 for founders and respawns
	Generation     int    `csv:"generation"`
	Seed           string `csv:"seed"`
	Chunks         int    `csv:"chunks"`
	Deletions      int    `csv:"deletions"`
	Duplications   int    `csv:"duplications"`
	Translocations int    `csv:"translocations"`
	Perturbed      int    `csv:"perturbed"`
	Genome         string `csv:"genome"`
}

// NewBirthRecord creates a lineage row for a child produced by mutation.
func NewBirthRecord(tick int32, childID, parentID uint32, generation int, seed string, g genome.Genome, report genome.Report) BirthRecord {
	return BirthRecord{
		Tick:           tick,
		ChildID:        childID,
		ParentID:       parentID,
		Generation:     generation,
		Seed:           seed,
		Chunks:         g.ChunkCount(),
		Deletions:      report.Deletions,
		Duplications:   report.Duplications,
		Translocations: report.Translocations,
		Perturbed:      report.Perturbed,
		Genome:         g.String(),
	}
}

// NewFounderRecord creates a lineage row for a creature spawned from a seed
// or the hall of fame.
func NewFounderRecord(tick int32, id uint32, generation int, seed string, g genome.Genome) BirthRecord {
	return BirthRecord{
		Tick:       tick,
		ChildID:    id,
		Generation: generation,
		Seed:       seed,
		Chunks:     g.ChunkCount(),
		Genome:     g.String(),
	}
}
