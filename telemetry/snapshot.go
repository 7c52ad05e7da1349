package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/liquidevo/genome"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the living population's genomes for replay.
// Physics state is not captured; bodies are re-decoded from the genomes.
type Snapshot struct {
	Version int    `json:"version"`
	RNGSeed uint64 `json:"rng_seed"`

	WorldSize float64 `json:"world_size"`

	Tick int32 `json:"tick"`

	Creatures []CreatureState `json:"creatures"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// CreatureState holds one creature's lineage, health and genome.
type CreatureState struct {
	ID         uint32        `json:"id"`
	ParentID   uint32        `json:"parent_id"`
	Generation int           `json:"generation"`
	Seed       string        `json:"seed"`
	Health     float32       `json:"health"`
	BornTick   int32         `json:"born_tick"`
	Children   int           `json:"children"`
	Eaten      int           `json:"eaten"`
	X          float32       `json:"x"`
	Y          float32       `json:"y"`
	Genome     genome.Genome `json:"genome"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
