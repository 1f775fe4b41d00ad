package usecase

import (
	"math"
	"time"

	"BacklogStatus/internal/domain"
)

// pessimism inflates the observed age of the pivot record.
const pessimism = 1.5

// BacklogEstimator turns a feed into an expected response time.
type BacklogEstimator struct {
	now func() time.Time
}

// NewBacklogEstimator uses time.Now when now is nil.
func NewBacklogEstimator(now func() time.Time) *BacklogEstimator {
	if now == nil {
		now = time.Now
	}
	return &BacklogEstimator{now: now}
}

// Estimate picks the record that sits the unread fraction of the way into
// history and scales its age.
func (e *BacklogEstimator) Estimate(feed domain.AggregatedFeed) (domain.BacklogEstimate, error) {
	fraction, ok := domain.UnreadFraction(feed)
	if !ok {
		return domain.BacklogEstimate{}, &domain.InsufficientDataError{}
	}

	pivot := feed[PivotIndex(fraction, len(feed))]
	age := e.now().Sub(pivot.UpdatedAt)
	if age < 0 {
		age = 0
	}
	return domain.BacklogEstimate{Days: age.Hours() / 24 * pessimism}, nil
}

// PivotIndex is floor(fraction*n) clamped to a valid index of an n-element feed.
func PivotIndex(fraction float64, n int) int {
	idx := int(math.Floor(fraction * float64(n)))
	if idx < 0 {
		return 0
	}
	if idx > n-1 {
		return n - 1
	}
	return idx
}
