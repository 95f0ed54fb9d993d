package i8n

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// LookupAll resolves reqs concurrently, bounded by the configured
// concurrency. Results keep the order of reqs.
func (t *Translator) LookupAll(ctx context.Context, reqs []TranslationRequest) []Result {
	results := make([]Result, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.config().concurrency)

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			results[i] = t.Lookup(gctx, req)
			return nil
		})
	}

	// Lookups never fail, so Wait only synchronizes
	_ = g.Wait()
	return results
}

// TranslateAll translates reqs concurrently and returns the texts in order.
func (t *Translator) TranslateAll(ctx context.Context, reqs []TranslationRequest) []string {
	results := t.LookupAll(ctx, reqs)
	texts := make([]string, len(results))
	for i, res := range results {
		texts[i] = res.Text
	}
	return texts
}
