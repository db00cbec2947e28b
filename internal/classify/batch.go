package classify

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"feedbackbot/internal/domain"
	"feedbackbot/internal/integrations/llm"
)

// ClassifyAll classifies items concurrently and returns one record per item,
// in input order.
func (r *Resolver) ClassifyAll(ctx context.Context, items []string) []domain.ClassificationRecord {
	out := make([]domain.ClassificationRecord, len(items))
	if len(items) == 0 {
		return out
	}
	started := time.Now()
	batchSize.Observe(float64(len(items)))

	usages := make([]llm.Usage, len(items))
	limiter := r.newLimiter()
	var g errgroup.Group
	g.SetLimit(r.opts.Concurrency)
	for i, item := range items {
		g.Go(func() error {
			if limiter != nil {
				// A cancelled context surfaces as a model failure in Classify.
				_ = limiter.Wait(ctx)
			}
			out[i], usages[i] = r.classify(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	overrides := 0
	var total llm.Usage
	for i, rec := range out {
		if rec.Diagnostics != nil && rec.Diagnostics.KeywordOverride {
			overrides++
		}
		total.Add(usages[i])
	}
	log.Printf("classify batch items=%d concurrency=%d overrides=%d tokens_in=%d tokens_out=%d tokens_total=%d took=%s",
		len(items), r.opts.Concurrency, overrides, total.InputTokens, total.OutputTokens, total.TotalTokens(),
		time.Since(started).Round(time.Millisecond))
	return out
}

// newLimiter paces model calls. Keyword-only runs are not paced.
func (r *Resolver) newLimiter() *rate.Limiter {
	if r.client == nil || r.opts.RequestsPerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(r.opts.RequestsPerSecond), r.opts.Concurrency)
}
