package main

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/labsharedao/biomed-gateway/lib"
)

// BatchAnalyze fans the selected operation out over the texts with a
// weighted cap on simultaneous upstream calls - a combined item holds two
// slots for its whole run. Items are isolated: a failure becomes that item's
// error string and the rest of the batch keeps going. Results always come
// back in input order.
func (c controller) BatchAnalyze(ctx context.Context, texts []string, operation string) *lib.BatchResult {
	sem := semaphore.NewWeighted(c.batchConcurrency)
	weight := int64(1)
	if operation == lib.OperationCombined {
		weight = 2
	}

	results := make([]lib.BatchItemResult, len(texts))
	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			if err := sem.Acquire(ctx, weight); err != nil {
				results[i] = lib.BatchItemResult{Index: i, Text: text, Error: err.Error()}
				return
			}
			defer sem.Release(weight)

			payload, err := c.runBatchItem(ctx, text, operation)
			if err != nil {
				results[i] = lib.BatchItemResult{Index: i, Text: text, Error: err.Error()}
				return
			}
			results[i] = lib.BatchItemResult{Index: i, Text: text, Result: payload, Success: true}
		}(i, text)
	}
	wg.Wait()

	successful := 0
	for _, r := range results {
		if r.Success {
			successful++
		}
	}
	return &lib.BatchResult{
		Results:    results,
		Total:      len(results),
		Successful: successful,
		Failed:     len(results) - successful,
	}
}

func (c controller) runBatchItem(ctx context.Context, text, operation string) (interface{}, error) {
	switch operation {
	case lib.OperationExtract:
		return c.ExtractEntities(ctx, text)
	case lib.OperationSummarize:
		return c.SummarizeSimple(ctx, text)
	case lib.OperationCombined:
		return c.ExtractAndSummarize(ctx, text, lib.DefaultSummaryMaxLength, lib.DefaultSummaryMinLength, false)
	default:
		return c.Analyze(ctx, text)
	}
}
