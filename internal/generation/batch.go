package generation

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency bounds parallel generations when none is given
const DefaultBatchConcurrency = 4

// BatchItem is the outcome of one request of a batch
type BatchItem struct {
	Index  int     `json:"index"`
	Result *Result `json:"result,omitempty"`
	Err    error   `json:"-"`
}

// Failed reports whether the item ended in an error.
func (b BatchItem) Failed() bool {
	return b.Err != nil
}

// GenerateBatch runs requests with at most concurrency in flight. Items come
// back in input order; a failing item does not stop the others.
func (g *Generator) GenerateBatch(ctx context.Context, reqs []Request, concurrency int) []BatchItem {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	items := make([]BatchItem, len(reqs))

	var eg errgroup.Group
	eg.SetLimit(concurrency)
	for i, req := range reqs {
		i, req := i, req
		eg.Go(func() error {
			item := BatchItem{Index: i}
			if err := ctx.Err(); err != nil {
				item.Err = err
			} else {
				item.Result, item.Err = g.Generate(ctx, req)
			}
			items[i] = item
			return nil
		})
	}
	_ = eg.Wait()

	failed := 0
	for _, item := range items {
		if item.Failed() {
			failed++
		}
	}
	g.logger().WithFields(logrus.Fields{
		"requests":    len(reqs),
		"failed":      failed,
		"concurrency": concurrency,
	}).Info("Batch generation finished")
	return items
}
