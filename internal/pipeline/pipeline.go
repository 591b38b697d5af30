// Package pipeline runs the full analysis for one repository: clone, chunk,
// batch, extract, persist and project into the graph.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/codelore/backend/internal/repo"
	"github.com/codelore/backend/internal/store"
	"github.com/codelore/backend/internal/util"
	"github.com/codelore/backend/pkg/ai"
	"github.com/codelore/backend/pkg/batch"
	"github.com/codelore/backend/pkg/chunk"
	"github.com/codelore/backend/pkg/extract"
	"github.com/codelore/backend/pkg/graph"
	"github.com/codelore/backend/pkg/logger"
)

type Pipeline struct {
	store     *store.Store
	extractor *extract.Extractor
	projector *graph.Projector
	batcher   *batch.Batcher
	workDir   string
}

type Params struct {
	Store     *store.Store
	Extractor *extract.Extractor
	Projector *graph.Projector
	Batcher   *batch.Batcher
	// WorkDir holds transient checkouts; defaults to the OS temp dir.
	WorkDir string
}

func New(params Params) *Pipeline {
	workDir := params.WorkDir
	if workDir == "" {
		workDir = filepath.Join(os.TempDir(), "codelore")
	}
	return &Pipeline{
		store:     params.Store,
		extractor: params.Extractor,
		projector: params.Projector,
		batcher:   params.Batcher,
		workDir:   workDir,
	}
}

// Analyze runs the pipeline end to end for one repository and records every
// phase transition on the repository row. The returned error is also
// persisted as the repository's failure cause.
func (p *Pipeline) Analyze(ctx context.Context, repoID string, url string) error {
	if err := p.analyze(ctx, repoID, url); err != nil {
		if failErr := p.store.FailAnalysis(context.WithoutCancel(ctx), repoID, err); failErr != nil {
			logger.Error("[PIPELINE] Failed to record analysis failure", "repo", repoID, "err", failErr)
		}
		return err
	}
	return nil
}

func (p *Pipeline) analyze(ctx context.Context, repoID string, url string) error {
	tracker := NewTracker()
	start := time.Now()

	p.setPhase(ctx, repoID, tracker, PhaseCloning, 0)
	checkout, err := repo.Clone(ctx, url, p.workDir, repoID)
	if err != nil {
		return err
	}
	defer repo.Cleanup(checkout)

	p.setPhase(ctx, repoID, tracker, PhaseParsing, 0)
	fragments, files, err := p.parse(checkout)
	if err != nil {
		return err
	}
	if len(fragments) == 0 {
		return fmt.Errorf("no supported source files found in %s", url)
	}

	language := DetectLanguage(fragments)
	description := Describe(files, fragments)
	logger.Info("[PIPELINE] Parsed checkout",
		"repo", repoID, "files", files, "fragments", len(fragments), "language", language)

	batches, globals := p.batcher.Pack(fragments)

	p.setPhase(ctx, repoID, tracker, PhaseExtracting, 0)
	repoContext := fmt.Sprintf("Repository: %s, Language: %s, %s",
		repo.NameFromURL(url), language, description)
	records, stats, err := p.extractor.Run(ctx, repoContext, batches, globals)
	if errors.Is(err, ai.ErrNotConfigured) {
		logger.Warn("[PIPELINE] No language model provider, storing code-only records", "repo", repoID)
		records = extract.CodeOnlyRecords(batches, globals)
	} else if err != nil {
		return err
	}
	if err := p.store.SaveRunStats(ctx, repoID, stats); err != nil {
		logger.Warn("[PIPELINE] Failed to save run stats", "repo", repoID, "err", err)
	}

	p.setPhase(ctx, repoID, tracker, PhaseStoring, 0)
	fingerprint := graph.Fingerprint(records)
	if err := p.store.SaveRecords(ctx, repoID, records, fingerprint); err != nil {
		return fmt.Errorf("failed to persist records: %w", err)
	}
	if _, err := p.projector.EnsureLoaded(ctx, repoID, records); err != nil {
		return fmt.Errorf("failed to project graph: %w", err)
	}

	p.setPhase(ctx, repoID, tracker, PhaseCleanup, 0)
	if err := p.store.FinishAnalysis(ctx, repoID, language, description, files, len(records)); err != nil {
		return err
	}

	logger.Info("[PIPELINE] Analysis complete",
		"repo", repoID,
		"files", files,
		"records", len(records),
		"duration", time.Since(start).Round(time.Second))
	return nil
}

// parse chunks every supported file under the checkout. Unreadable files
// are logged and skipped; one bad file must not sink the run.
func (p *Pipeline) parse(checkout string) ([]chunk.Fragment, int, error) {
	paths, err := repo.ListSourceFiles(checkout)
	if err != nil {
		return nil, 0, err
	}

	var fragments []chunk.Fragment
	parsed := 0
	for _, path := range paths {
		content, err := os.ReadFile(filepath.Join(checkout, path))
		if err != nil {
			logger.Warn("[PIPELINE] Skipping unreadable file", "file", path, "err", err)
			continue
		}
		text := util.SanitizeText(string(content))
		fragments = append(fragments, chunk.File(path, text)...)
		parsed++
	}
	return fragments, parsed, nil
}

func (p *Pipeline) setPhase(ctx context.Context, repoID string, tracker *Tracker, phase string, fraction float64) {
	progress := tracker.Progress(phase, fraction)
	if err := p.store.SetPhase(ctx, repoID, phase, progress); err != nil {
		logger.Warn("[PIPELINE] Failed to update phase", "repo", repoID, "phase", phase, "err", err)
	}
	if eta := tracker.ETA(progress); eta > 0 {
		logger.Debug("[PIPELINE] Phase", "repo", repoID, "phase", phase,
			"progress", fmt.Sprintf("%.0f%%", progress*100), "eta", eta.Round(time.Second))
	}
}
