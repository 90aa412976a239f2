package artwork

import (
	"context"
	"fmt"
	"strings"
)

// SearchFunc is the adapter contract: a free-text query in, normalized
// candidates out. An empty (post-trim) query must return an empty list
// without touching the network. A network or parse failure resolves to an
// error; it never panics past the adapter boundary.
type SearchFunc func(ctx context.Context, query string) ([]Candidate, error)

// Engine fans a query out to the registered provider adapters and merges
// the results under the round-robin interleaving policy.
type Engine struct {
	adapters map[Source]SearchFunc
	order    []Source
}

// NewEngine creates an engine with no adapters registered.
func NewEngine() *Engine {
	return &Engine{adapters: make(map[Source]SearchFunc)}
}

// Register binds an adapter to a provider. Registration order defines the
// interleaving order for combined searches.
func (e *Engine) Register(src Source, fn SearchFunc) {
	if _, dup := e.adapters[src]; dup {
		panic(fmt.Sprintf("artwork: adapter for %s registered twice", src))
	}
	e.adapters[src] = fn
	e.order = append(e.order, src)
}

// Sources returns the registered providers in interleaving order.
func (e *Engine) Sources() []Source {
	return append([]Source(nil), e.order...)
}

// Result is the outcome of one search: the merged candidates plus the
// failure classification needed for the status line. A source appearing in
// Failed returned an "unavailable" failure, which is distinct from a
// source that succeeded with zero results.
type Result struct {
	Candidates []Candidate
	Queried    []Source
	Failed     []Source
	Combined   bool // true when all sources were queried
}

// Search queries one provider. The provider's own failure/empty
// distinction is preserved in the result.
func (e *Engine) Search(ctx context.Context, src Source, query string) *Result {
	res := &Result{Queried: []Source{src}}

	fn, ok := e.adapters[src]
	if !ok {
		res.Failed = []Source{src}
		return res
	}

	candidates, err := fn(ctx, strings.TrimSpace(query))
	if err != nil {
		res.Failed = []Source{src}
		return res
	}
	res.Candidates = candidates
	return res
}

// SearchAll queries every registered provider sequentially and merges the
// results by round-robin interleave. A failing adapter is recorded in
// Failed and never drops the other sources' results: partial failure is not
// fatal to the search as a whole.
func (e *Engine) SearchAll(ctx context.Context, query string) *Result {
	query = strings.TrimSpace(query)
	res := &Result{Combined: true}

	lists := make([][]Candidate, 0, len(e.order))
	for _, src := range e.order {
		res.Queried = append(res.Queried, src)

		candidates, err := e.adapters[src](ctx, query)
		if err != nil {
			res.Failed = append(res.Failed, src)
			continue
		}
		lists = append(lists, candidates)
	}

	res.Candidates = Interleave(lists...)
	return res
}

// Status renders the user-facing status line for this result: how many
// candidates are displayed, from where, and which sources failed.
func (r *Result) Status() string {
	var b strings.Builder

	switch {
	case len(r.Candidates) == 0 && len(r.Failed) == len(r.Queried) && len(r.Queried) > 0:
		fmt.Fprintf(&b, "Failed to fetch artwork from %s. Please try again.", sourceNames(r.Failed))
		return b.String()
	case len(r.Candidates) == 0:
		b.WriteString("No results found for the given search terms.")
	case r.Combined:
		fmt.Fprintf(&b, "Displaying %s from %d sources.",
			plural(len(r.Candidates), "result"), len(r.Queried)-len(r.Failed))
	default:
		fmt.Fprintf(&b, "Displaying %s from %s.",
			plural(len(r.Candidates), "result"), r.Queried[0])
	}

	if len(r.Failed) > 0 {
		fmt.Fprintf(&b, " %s unavailable.", sourceNames(r.Failed))
	}
	return b.String()
}

// Find returns the candidate with the given ID, or false when the ID is
// not part of this result set.
func (r *Result) Find(id string) (Candidate, bool) {
	for _, c := range r.Candidates {
		if c.ID == id {
			return c, true
		}
	}
	return Candidate{}, false
}

func sourceNames(sources []Source) string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.String()
	}
	return strings.Join(names, ", ")
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
