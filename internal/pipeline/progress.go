package pipeline

import (
	"time"
)

// Phase names double as the repository's phase column values.
const (
	PhaseCloning    = "cloning"
	PhaseParsing    = "parsing"
	PhaseExtracting = "extracting"
	PhaseStoring    = "storing"
	PhaseCleanup    = "cleanup"
)

// Phase weights reflect where the time actually goes: extraction dominates
// because every batch is an oracle round trip.
var phaseSpans = map[string][2]float64{
	PhaseCloning:    {0.00, 0.10},
	PhaseParsing:    {0.10, 0.20},
	PhaseExtracting: {0.20, 0.85},
	PhaseStoring:    {0.85, 0.95},
	PhaseCleanup:    {0.95, 1.00},
}

// Tracker converts per-phase completion into overall progress and a rough
// time estimate.
type Tracker struct {
	start time.Time
}

func NewTracker() *Tracker {
	return &Tracker{start: time.Now()}
}

// Progress maps completion within a phase onto the overall scale.
func (t *Tracker) Progress(phase string, fraction float64) float64 {
	span, ok := phaseSpans[phase]
	if !ok {
		return 0
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return span[0] + (span[1]-span[0])*fraction
}

// ETA extrapolates remaining time from elapsed time at the given overall
// progress. Unreliable early on; zero until progress is measurable.
func (t *Tracker) ETA(progress float64) time.Duration {
	if progress <= 0.01 || progress >= 1 {
		return 0
	}
	elapsed := time.Since(t.start)
	total := time.Duration(float64(elapsed) / progress)
	return total - elapsed
}
