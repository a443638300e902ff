package categorize

import (
	"context"
	"log/slog"

	"finboard/internal/cache"
	"finboard/internal/core"
)

// Cached remembers labels per description so repeated imports of similar
// statements only send unseen descriptions to the wrapped categorizer.
// Default labels are not remembered, since they are also what a failed call
// returns.
type Cached struct {
	next   Categorizer
	store  cache.Cache[string]
	logger *slog.Logger
}

func NewCached(next Categorizer, store cache.Cache[string], logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{next: next, store: store, logger: logger}
}

func cacheKey(kind core.Kind, description string) string {
	return string(kind) + "\x00" + normalizeDescription(description)
}

func (c *Cached) Categorize(ctx context.Context, kind core.Kind, descriptions []string) []string {
	v, err := core.VocabularyFor(kind)
	if err != nil {
		return c.next.Categorize(ctx, kind, descriptions)
	}

	out := make([]string, len(descriptions))
	var (
		missIdx  []int
		missDesc []string
		pending  = make(map[string]int)
	)
	for i, d := range descriptions {
		key := cacheKey(kind, d)
		if label, ok := c.store.Get(key); ok {
			out[i] = label
			continue
		}
		missIdx = append(missIdx, i)
		if _, seen := pending[key]; !seen {
			pending[key] = len(missDesc)
			missDesc = append(missDesc, d)
		}
	}
	if len(missDesc) == 0 {
		return out
	}

	labels, _ := conform(v, c.next.Categorize(ctx, kind, missDesc), len(missDesc))
	for j, d := range missDesc {
		if labels[j] != v.Default {
			c.store.Set(cacheKey(kind, d), labels[j])
		}
	}
	for _, i := range missIdx {
		out[i] = labels[pending[cacheKey(kind, descriptions[i])]]
	}

	c.logger.DebugContext(ctx, "Categorized descriptions",
		"kind", kind,
		"requested", len(descriptions),
		"sent", len(missDesc),
	)
	return out
}
