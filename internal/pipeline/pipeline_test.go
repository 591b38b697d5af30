package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/codelore/backend/pkg/chunk"
)

func fragments(languages ...string) []chunk.Fragment {
	var out []chunk.Fragment
	for i, language := range languages {
		out = append(out, chunk.Fragment{Index: i + 1, Language: language})
	}
	return out
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name      string
		fragments []chunk.Fragment
		want      string
	}{
		{"single", fragments("C", "C", "C"), "C"},
		{"dominant", fragments("SAS", "COBOL", "COBOL", "COBOL"), "COBOL"},
		{"unknown only", fragments("Unknown", "Unknown"), "Unknown"},
		{"empty", nil, "Unknown"},
		{"tie breaks alphabetically", fragments("Scala", "Java"), "Java"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLanguage(tt.fragments); got != tt.want {
				t.Errorf("DetectLanguage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	desc := Describe(4, fragments("C", "C", "SAS"))
	if !strings.Contains(desc, "C codebase") || !strings.Contains(desc, "4 source files") {
		t.Errorf("unexpected description %q", desc)
	}
	if !strings.Contains(desc, "SAS") {
		t.Errorf("secondary language missing from %q", desc)
	}

	if desc := Describe(2, nil); !strings.Contains(desc, "2 source files") {
		t.Errorf("unexpected description %q", desc)
	}
}

func TestTrackerProgressMonotonic(t *testing.T) {
	tracker := NewTracker()
	phases := []string{PhaseCloning, PhaseParsing, PhaseExtracting, PhaseStoring, PhaseCleanup}

	last := -1.0
	for _, phase := range phases {
		for _, fraction := range []float64{0, 0.5, 1} {
			progress := tracker.Progress(phase, fraction)
			if progress < last {
				t.Fatalf("progress went backwards at %s/%.1f: %f < %f", phase, fraction, progress, last)
			}
			last = progress
		}
	}
	if last != 1.0 {
		t.Errorf("final progress = %f, want 1.0", last)
	}
}

func TestTrackerProgressClamped(t *testing.T) {
	tracker := NewTracker()
	if got := tracker.Progress(PhaseParsing, -1); got != 0.10 {
		t.Errorf("negative fraction not clamped, got %f", got)
	}
	if got := tracker.Progress(PhaseParsing, 2); got != 0.20 {
		t.Errorf("excess fraction not clamped, got %f", got)
	}
	if got := tracker.Progress("bogus", 0.5); got != 0 {
		t.Errorf("unknown phase should report 0, got %f", got)
	}
}

func TestTrackerETA(t *testing.T) {
	tracker := &Tracker{start: time.Now().Add(-time.Minute)}

	eta := tracker.ETA(0.5)
	// Half done after a minute means roughly a minute to go.
	if eta < 50*time.Second || eta > 70*time.Second {
		t.Errorf("ETA at 50%% after 1m = %s, want ~1m", eta)
	}

	if eta := tracker.ETA(0); eta != 0 {
		t.Errorf("ETA at zero progress must be 0, got %s", eta)
	}
	if eta := tracker.ETA(1); eta != 0 {
		t.Errorf("ETA at completion must be 0, got %s", eta)
	}
}
