package matching

import (
	"context"
	"sync"

	"procure/internal/models"
)

// Job is one independent three-way match to evaluate.
type Job struct {
	PO       models.PurchaseOrder
	Receipts []models.GoodsReceipt
	Invoice  *models.Invoice
}

// EvaluateMatches runs EvaluateMatch over jobs with at most workers
// goroutines. Results are returned in job order. Jobs not started before
// ctx is done are left nil.
func EvaluateMatches(ctx context.Context, jobs []Job, workers int) []*MatchReport {
	results := make([]*MatchReport, len(jobs))
	if len(jobs) == 0 {
		return results
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	idx := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				j := jobs[i]
				r := EvaluateMatch(j.PO, j.Receipts, j.Invoice)
				results[i] = &r
			}
		}()
	}

feed:
	for i := range jobs {
		select {
		case <-ctx.Done():
			break feed
		case idx <- i:
		}
	}
	close(idx)
	wg.Wait()
	return results
}
