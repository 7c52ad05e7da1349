package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkGenerationMilestone BookmarkType = "generation_milestone"
	BookmarkBirthBoom           BookmarkType = "birth_boom"
	BookmarkPopulationCrash     BookmarkType = "population_crash"
	BookmarkExtinction          BookmarkType = "extinction"
	BookmarkStablePopulation    BookmarkType = "stable_population"
)

// generationStep is the spacing of generation milestones.
const generationStep = 10

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	nextGeneration     int // next milestone to report
	recentPeak         int // peak population since the last crash
	stableWindowsCount int // consecutive windows with a steady population
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable population detection
	}
	return &BookmarkDetector{
		history:        make([]WindowStats, historySize),
		historySize:    historySize,
		nextGeneration: generationStep,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkGeneration(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkBirthBoom(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkExtinction(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		} else if b := bd.checkPopulationCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkStablePopulation(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	if stats.Population > bd.recentPeak {
		bd.recentPeak = stats.Population
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n of the latest windows in chronological order.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	count := bd.historyIdx
	if bd.historyFull {
		count = bd.historySize
	}
	if n > count {
		n = count
	}
	out := make([]WindowStats, n)
	for i := 0; i < n; i++ {
		idx := (bd.historyIdx - n + i + bd.historySize) % bd.historySize
		out[i] = bd.history[idx]
	}
	return out
}

func (bd *BookmarkDetector) checkGeneration(stats WindowStats) *Bookmark {
	if stats.GenerationMax < bd.nextGeneration {
		return nil
	}
	reached := stats.GenerationMax / generationStep * generationStep
	bd.nextGeneration = reached + generationStep
	return &Bookmark{
		Type:        BookmarkGenerationMilestone,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Lineage reached generation %d", stats.GenerationMax),
	}
}

func (bd *BookmarkDetector) checkBirthBoom(stats WindowStats) *Bookmark {
	history := bd.recent(bd.historySize)
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Births
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.Births) > avg*2.0 && stats.Births >= 5 {
		return &Bookmark{
			Type:        BookmarkBirthBoom,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d births is %.1fx average (%.1f)", stats.Births, float64(stats.Births)/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkExtinction(stats WindowStats) *Bookmark {
	if stats.Population > 0 {
		return nil
	}
	last := bd.recent(1)
	if len(last) == 0 || last[0].Population == 0 {
		return nil
	}
	bd.recentPeak = 0
	return &Bookmark{
		Type:        BookmarkExtinction,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Population died out (was %d)", last[0].Population),
	}
}

func (bd *BookmarkDetector) checkPopulationCrash(stats WindowStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.Population)/float64(bd.recentPeak)
	if drop > 0.30 && stats.Population < bd.recentPeak-10 {
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.Population

		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Population),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStablePopulation(stats WindowStats) *Bookmark {
	if stats.Population < 10 {
		bd.stableWindowsCount = 0
		return nil
	}

	window := bd.recent(4)
	if len(window) < 4 {
		return nil
	}

	values := make([]float64, 0, len(window)+1)
	for _, h := range window {
		values = append(values, float64(h.Population))
	}
	values = append(values, float64(stats.Population))
	s := Summarize(values)

	// coefficient of variation under 20%
	if s.Mean > 0 && s.Std/s.Mean < 0.2 {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 {
		return &Bookmark{
			Type:        BookmarkStablePopulation,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population steady around %.0f over 5+ windows", s.Mean),
		}
	}
	return nil
}
