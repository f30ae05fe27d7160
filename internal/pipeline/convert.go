package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mrafey292/smartpdf-sub000/internal/llm"
)

// Converter rewrites raw batch text as structured markdown through the
// generation service, bounded by a concurrency semaphore and a rolling
// rate limiter.
type Converter struct {
	gen         llm.Generator
	limiter     *RateLimiter
	concurrency int
	callTimeout time.Duration
	log         *slog.Logger
}

func NewConverter(gen llm.Generator, limiter *RateLimiter, concurrency int, callTimeout time.Duration, log *slog.Logger) *Converter {
	if concurrency <= 0 {
		concurrency = 2
	}
	if callTimeout <= 0 {
		callTimeout = 2 * time.Minute
	}
	return &Converter{
		gen:         gen,
		limiter:     limiter,
		concurrency: concurrency,
		callTimeout: callTimeout,
		log:         log,
	}
}

// ConvertAll converts every batch in place and returns the numbers of the
// batches whose conversion failed, in ascending order. A failed batch
// keeps its raw text as the markdown fallback; failures never abort
// sibling batches. Conversions may complete in any order.
func (c *Converter) ConvertAll(ctx context.Context, batches []Batch, status StatusFunc) []int {
	type result struct {
		idx      int
		markdown string
		err      error
	}

	sem := make(chan struct{}, c.concurrency)
	results := make(chan result, len(batches))

	for i := range batches {
		sem <- struct{}{}
		go func(i int, b Batch) {
			defer func() { <-sem }()
			md, err := c.convertOne(ctx, b)
			results <- result{idx: i, markdown: md, err: err}
		}(i, batches[i])
	}

	var failed []int
	done := 0
	for range batches {
		r := <-results
		done++
		b := &batches[r.idx]
		if r.err != nil {
			c.log.Warn("batch conversion failed, keeping raw text",
				"batch", b.Number, "pages", fmt.Sprintf("%d-%d", b.StartPage, b.EndPage), "error", r.err)
			b.Err = r.err
			b.Markdown = b.Text
			failed = append(failed, b.Number)
		} else {
			b.Markdown = r.markdown
		}
		if status != nil {
			status(Status{
				Stage:        StageConverting,
				Progress:     float64(done) / float64(len(batches)),
				Message:      fmt.Sprintf("converted %d/%d batches", done, len(batches)),
				CurrentBatch: b.Number,
				TotalBatches: len(batches),
			})
		}
	}

	sort.Ints(failed)
	return failed
}

// convertOne runs a single conversion call under the rate limiter and a
// per-call deadline. Quota errors are retried with backoff; anything
// else, including a deadline hit, resolves into the failure path.
func (c *Converter) convertOne(ctx context.Context, b Batch) (string, error) {
	prompt := buildConversionPrompt(b)

	var lastErr error
	for attempt := 0; attempt < maxConvertAttempts; attempt++ {
		if attempt > 0 {
			c.log.Warn("retrying batch after quota error", "batch", b.Number, "attempt", attempt)
			if err := sleepCtx(ctx, backoff(attempt-1)); err != nil {
				return "", err
			}
		}

		if err := c.limiter.Acquire(ctx); err != nil {
			return "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		out, err := c.gen.Generate(callCtx, prompt)
		cancel()
		if err == nil {
			return stripFence(out), nil
		}
		lastErr = err
		if !llm.IsQuota(err) {
			return "", err
		}
	}
	return "", lastErr
}
