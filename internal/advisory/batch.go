package advisory

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/irrigation-advisor/internal/domain"
)

// BatchItem is the outcome of one request in a batch, in request order.
type BatchItem struct {
	Index int                   `json:"index"`
	Event *domain.AdvisoryEvent `json:"event,omitempty"`
	Error string                `json:"error,omitempty"`
	Kind  ErrorKind             `json:"kind,omitempty"`
}

// AdviseBatch runs requests concurrently, bounded by BatchConcurrency. Items
// fail independently; the returned error is non-nil only when the batch as a
// whole is rejected.
func (s *Service) AdviseBatch(ctx context.Context, reqs []Request) ([]BatchItem, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: batch has no requests", ErrInvalidRequest)
	}
	if len(reqs) > s.opts.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d requests, limit %d", ErrBatchTooLarge, len(reqs), s.opts.MaxBatchSize)
	}
	s.metrics.BatchSize.Observe(float64(len(reqs)))

	items := make([]BatchItem, len(reqs))
	var g errgroup.Group
	g.SetLimit(s.opts.BatchConcurrency)
	for i, req := range reqs {
		g.Go(func() error {
			items[i].Index = i
			event, err := s.Advise(ctx, req)
			if err != nil {
				items[i].Error = err.Error()
				items[i].Kind = Classify(err)
				return nil
			}
			items[i].Event = &event
			return nil
		})
	}
	_ = g.Wait() // items carry their own errors

	return items, nil
}
