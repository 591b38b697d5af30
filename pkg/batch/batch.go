package batch

import (
	"sort"

	"github.com/codelore/backend/pkg/chunk"
	"github.com/codelore/backend/pkg/logger"
)

// DefaultTokenLimit bounds the code payload of one oracle request, leaving
// headroom for the prompt scaffolding and the model's reply.
const DefaultTokenLimit = 6000

// Batch is one oracle-request worth of fragments. Global-context fragments
// are attached per file on demand, never packed as regular members.
type Batch struct {
	Fragments []chunk.Fragment
	Tokens    int
}

// Batcher groups fragments into token-bounded batches.
type Batcher struct {
	counter    *TokenCounter
	tokenLimit int
}

func NewBatcher(counter *TokenCounter, tokenLimit int) *Batcher {
	if tokenLimit <= 0 {
		tokenLimit = DefaultTokenLimit
	}
	return &Batcher{counter: counter, tokenLimit: tokenLimit}
}

// Pack splits fragments into batches. File-opening fragments go first, then
// longer fragments, so the most informative code reaches the oracle before
// any budget cut-off. A fragment that alone exceeds the token limit becomes
// a batch of one; truncation is the extractor's call, not the batcher's.
//
// Global-context fragments (index 0) are set aside in a per-file map: the
// dispatcher prepends a file's global context to the first batch that leads
// with one of that file's fragments.
func (b *Batcher) Pack(fragments []chunk.Fragment) ([]Batch, map[string]chunk.Fragment) {
	globals := make(map[string]chunk.Fragment)
	work := make([]chunk.Fragment, 0, len(fragments))
	for _, f := range fragments {
		if f.IsGlobal() {
			globals[f.FilePath] = f
			continue
		}
		work = append(work, f)
	}

	sort.SliceStable(work, func(i, j int) bool {
		iFirst := work[i].Index == 1
		jFirst := work[j].Index == 1
		if iFirst != jFirst {
			return iFirst
		}
		return len(work[i].Text) > len(work[j].Text)
	})

	var (
		batches []Batch
		current Batch
		counted = make(map[string]bool)
	)
	flush := func() {
		if len(current.Fragments) > 0 {
			batches = append(batches, current)
			current = Batch{}
		}
		counted = make(map[string]bool)
	}

	for _, f := range work {
		cost := b.counter.Count(f.Text) + b.globalCost(f, globals, counted)
		if cost > b.tokenLimit {
			logger.Warn("[BATCH] Oversized fragment gets its own batch",
				"file", f.FilePath, "chunk", f.Index, "tokens", cost)
			flush()
			batches = append(batches, Batch{Fragments: []chunk.Fragment{f}, Tokens: cost})
			continue
		}
		if current.Tokens+cost > b.tokenLimit {
			flush()
			cost = b.counter.Count(f.Text) + b.globalCost(f, globals, counted)
		}
		current.Fragments = append(current.Fragments, f)
		current.Tokens += cost
		if _, ok := globals[f.FilePath]; ok {
			counted[f.FilePath] = true
		}
	}
	flush()

	return batches, globals
}

// globalCost is the hypothetical price of the fragment's file-level global
// context. The global context is only ever sent once, so it is counted for
// the first of a file's fragments in a batch and free for the siblings that
// follow it.
func (b *Batcher) globalCost(f chunk.Fragment, globals map[string]chunk.Fragment, counted map[string]bool) int {
	if counted[f.FilePath] {
		return 0
	}
	global, ok := globals[f.FilePath]
	if !ok {
		return 0
	}
	return b.counter.Count(global.Text)
}

// Dispatch returns the fragments to submit for a batch, prepending the
// leading file's global context if it has not been sent yet. Sent globals
// are deleted from the map, so each file's context goes out at most once.
func Dispatch(batch Batch, globals map[string]chunk.Fragment) []chunk.Fragment {
	if len(batch.Fragments) == 0 {
		return nil
	}
	lead := batch.Fragments[0].FilePath
	global, ok := globals[lead]
	if !ok {
		return batch.Fragments
	}
	delete(globals, lead)
	out := make([]chunk.Fragment, 0, len(batch.Fragments)+1)
	out = append(out, global)
	out = append(out, batch.Fragments...)
	return out
}
