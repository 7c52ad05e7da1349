package game

import (
	"log/slog"

	"github.com/pthm-cable/liquidevo/genome"
	"github.com/pthm-cable/liquidevo/physics"
	"github.com/pthm-cable/liquidevo/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sample())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		slog.Info("perf", "window_end", stats.WindowEndTick, "stats", perfStats)
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
		if err := g.outputManager.WriteBirths(g.births); err != nil {
			slog.Error("failed to write births", "error", err)
		}
	}
	g.births = g.births[:0]

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}

		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}

		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// sample collects the population distributions for a stats window.
func (g *Game) sample() telemetry.Sample {
	s := telemetry.Sample{Pellets: g.pellets}
	distinct := make(map[genome.Genome]struct{})

	query := g.creatureFilter.Query()
	for query.Next() {
		c, h, _ := query.Get()
		if !c.Alive {
			continue
		}
		s.Population++
		s.Health = append(s.Health, float64(c.Health))
		s.Chunks = append(s.Chunks, float64(h.Genome.ChunkCount()))
		s.Generations = append(s.Generations, float64(c.Generation))
		distinct[h.Genome] = struct{}{}
	}
	s.DistinctGenomes = len(distinct)

	return s
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	snapshot := g.createSnapshot(bookmark)

	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// createSnapshot builds a snapshot from the current state.
func (g *Game) createSnapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:   telemetry.SnapshotVersion,
		RNGSeed:   g.rngSeed,
		WorldSize: g.cfg.World.Size,
		Tick:      g.tick,
		Bookmark:  bookmark,
	}

	query := g.creatureFilter.Query()
	for query.Next() {
		c, h, pos := query.Get()
		if !c.Alive {
			continue
		}
		snapshot.Creatures = append(snapshot.Creatures, telemetry.CreatureState{
			ID:         uint32(c.ID),
			ParentID:   uint32(c.ParentID),
			Generation: c.Generation,
			Seed:       h.Seed,
			Health:     c.Health,
			BornTick:   c.BornTick,
			Children:   c.Children,
			Eaten:      c.Eaten,
			X:          pos.X,
			Y:          pos.Y,
			Genome:     h.Genome,
		})
	}

	return snapshot
}

// restoreSnapshot re-decodes a saved population. Creature ids and lineage
// are kept; bodies start at rest at their saved anchors. Only the first
// creature with a given id is restored.
func (g *Game) restoreSnapshot(path string) error {
	snapshot, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return err
	}

	g.tick = snapshot.Tick
	// start the first window at the restored tick
	g.collector.Flush(g.tick, telemetry.Sample{})

	for _, cs := range snapshot.Creatures {
		id := physics.CreatureID(cs.ID)
		if _, dup := g.entities[id]; dup || id == 0 {
			slog.Warn("snapshot_creature_skipped", "creature", id, "reason", "duplicate or zero id")
			continue
		}
		if id >= g.nextID {
			g.nextID = id + 1
		}
		err := g.spawnAs(id, spawnRequest{
			Genome:     cs.Genome,
			Seed:       cs.Seed,
			Anchor:     genome.Vec2{X: float64(cs.X), Y: float64(cs.Y)},
			ParentID:   physics.CreatureID(cs.ParentID),
			Generation: cs.Generation,
			Health:     cs.Health,
		})
		if err != nil {
			g.collector.RecordDecodeFailure()
			slog.Warn("decode_failed", "creature", id, "source", "snapshot", "error", err)
			continue
		}

		entity := g.entities[id]
		c := g.creatureMap.Get(entity)
		c.BornTick = cs.BornTick
		c.Children = cs.Children
		c.Eaten = cs.Eaten
	}

	slog.Info("snapshot restored", "path", path, "tick", g.tick, "creatures", g.alive)
	return nil
}
