package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codelore/backend/internal/util"
	"github.com/codelore/backend/pkg/ai"
	"github.com/codelore/backend/pkg/batch"
	"github.com/codelore/backend/pkg/chunk"
	"github.com/codelore/backend/pkg/logger"
)

// Stats summarizes one extraction run.
type Stats struct {
	Batches     int
	CacheHits   int
	OracleCalls int
	Failed      int
	Records     int
	Duration    time.Duration
}

type Options struct {
	// Attempts per batch against the oracle, 3 by default.
	Attempts int
	// RetryDelay is the first backoff step, doubling per attempt.
	RetryDelay time.Duration
	// BatchDelay paces successive batches. It applies after cache hits
	// too, keeping the pacing behavior independent of cache contents.
	BatchDelay time.Duration
	// Temperature for extraction calls. Low by default: the output must
	// stay parseable JSON.
	Temperature float64
}

// Extractor turns dispatched fragment batches into feature records.
type Extractor struct {
	client ai.Client
	cache  Cache
	opts   Options
}

func New(client ai.Client, cache Cache, opts Options) *Extractor {
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.BatchDelay < 0 {
		opts.BatchDelay = 0
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.2
	}
	return &Extractor{client: client, cache: cache, opts: opts}
}

// Run processes all batches sequentially and returns the accumulated
// records. A batch whose retries are exhausted degrades to code-only
// records and the run continues; only a missing provider or a canceled
// context aborts.
func (e *Extractor) Run(
	ctx context.Context,
	repoContext string,
	batches []batch.Batch,
	globals map[string]chunk.Fragment,
) ([]Record, Stats, error) {
	stats := Stats{Batches: len(batches)}
	if e.client == nil {
		return nil, stats, ai.ErrNotConfigured
	}

	start := time.Now()
	var records []Record

	for i, bt := range batches {
		if err := ctx.Err(); err != nil {
			return records, stats, err
		}

		if i > 0 && e.opts.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return records, stats, ctx.Err()
			case <-time.After(e.opts.BatchDelay):
			}
		}

		fragments := batch.Dispatch(bt, globals)
		if len(fragments) == 0 {
			continue
		}

		key := BatchKey(fragments)
		if cached, ok, err := e.cache.Get(ctx, key); err != nil {
			logger.Warn("[EXTRACT] Cache lookup failed", "error", err)
		} else if ok {
			stats.CacheHits++
			records = append(records, cached...)
			continue
		}

		stats.OracleCalls++
		parsed, err := e.extractBatch(ctx, repoContext, fragments)
		if err != nil {
			if ctx.Err() != nil {
				return records, stats, ctx.Err()
			}
			logger.Error("[EXTRACT] Batch failed after retries, keeping raw code",
				"batch", i, "fragments", len(fragments), "error", err)
			stats.Failed++
			records = append(records, degradedRecords(fragments)...)
			continue
		}

		attachCode(parsed, fragments)
		if err := e.cache.Put(ctx, key, parsed); err != nil {
			logger.Warn("[EXTRACT] Cache write failed", "error", err)
		}
		records = append(records, parsed...)
	}

	stats.Records = len(records)
	stats.Duration = time.Since(start)
	logger.Info("[EXTRACT] Run complete",
		"batches", stats.Batches,
		"cacheHits", stats.CacheHits,
		"oracleCalls", stats.OracleCalls,
		"failed", stats.Failed,
		"records", stats.Records,
		"duration", stats.Duration.Round(time.Millisecond))
	return records, stats, nil
}

func (e *Extractor) extractBatch(
	ctx context.Context,
	repoContext string,
	fragments []chunk.Fragment,
) ([]Record, error) {
	prompt := fmt.Sprintf(ai.ExtractPrompt, repoContext, renderSegments(fragments))

	return util.RetryBackoffWithContext(ctx, e.opts.Attempts, e.opts.RetryDelay,
		func(ctx context.Context) ([]Record, error) {
			response, err := e.client.GenerateCompletion(ctx, prompt,
				ai.WithTemperature(e.opts.Temperature))
			if err != nil {
				return nil, err
			}

			var parsed []Record
			if err := ai.UnmarshalFlexible(ai.CleanResponse(response), &parsed); err != nil {
				return nil, fmt.Errorf("unparseable extraction response: %w", err)
			}
			if len(parsed) == 0 {
				return nil, fmt.Errorf("extraction response contained no records")
			}
			return parsed, nil
		})
}

// renderSegments lays the batch out as one code segment per fragment, with
// enough header metadata for the oracle to keep them apart.
func renderSegments(fragments []chunk.Fragment) string {
	var sb strings.Builder
	for _, f := range fragments {
		fmt.Fprintf(&sb, "### File: %s | Chunk: %d | Language: %s | Complexity: %s\n",
			f.FilePath, f.Index, f.Language, Complexity(f.Text))
		if f.Name != "" {
			fmt.Fprintf(&sb, "### Unit: %s %s\n", f.Kind, f.Name)
		}
		sb.WriteString("```\n")
		sb.WriteString(TruncateCode(f.Text))
		sb.WriteString("\n```\n\n")
	}
	return sb.String()
}

// attachCode puts the original fragment text back onto each record. The
// prompt forbids echoing code, so the oracle's records come back without it.
func attachCode(records []Record, fragments []chunk.Fragment) {
	byID := make(map[string]string, len(fragments))
	for _, f := range fragments {
		byID[fmt.Sprintf("%s\x00%d", f.FilePath, f.Index)] = f.Text
	}
	for i := range records {
		if code, ok := byID[fmt.Sprintf("%s\x00%d", records[i].File, records[i].ChunkID)]; ok {
			records[i].Code = code
		}
	}
}

// CodeOnlyRecords renders every batched fragment as a record with no
// oracle-derived metadata. Used when no language model provider is
// configured at all: the graph still gets files and raw code, querying just
// lacks the rich fields.
func CodeOnlyRecords(batches []batch.Batch, globals map[string]chunk.Fragment) []Record {
	var records []Record
	for _, bt := range batches {
		for _, f := range batch.Dispatch(bt, globals) {
			if f.IsGlobal() {
				continue
			}
			records = append(records, Record{
				File:        f.FilePath,
				ChunkID:     f.Index,
				Language:    f.Language,
				Feature:     fmt.Sprintf("Code Block %s:%d", f.FilePath, f.Index),
				Description: "No language model provider configured. Raw code retained.",
				Code:        f.Text,
			})
		}
	}
	return records
}

// degradedRecords preserves a failed batch as bare code-holding records, so
// the graph still knows the files exist.
func degradedRecords(fragments []chunk.Fragment) []Record {
	records := make([]Record, 0, len(fragments))
	for _, f := range fragments {
		if f.IsGlobal() {
			continue
		}
		records = append(records, Record{
			File:        f.FilePath,
			ChunkID:     f.Index,
			Language:    f.Language,
			Feature:     fmt.Sprintf("Unanalyzed segment %s:%d", f.FilePath, f.Index),
			Description: "Automatic analysis failed for this segment. Raw code retained.",
			Code:        f.Text,
		})
	}
	return records
}
