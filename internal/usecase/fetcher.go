package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"BacklogStatus/internal/domain"
	"BacklogStatus/internal/ports"
)

// readEnoughFraction is the unread share of a page at or below which we
// consider ourselves deep enough into already-handled history.
const readEnoughFraction = 0.1

// PaginationFetcher walks the feed back in time until pages are mostly read.
type PaginationFetcher struct {
	source ports.NotificationFeedSource
	logger logrus.FieldLogger
}

// NewPaginationFetcher wires a feed source.
func NewPaginationFetcher(source ports.NotificationFeedSource, logger logrus.FieldLogger) *PaginationFetcher {
	return &PaginationFetcher{source: source, logger: orDiscard(logger)}
}

// FetchAll collects deduplicated notifications sorted newest first.
func (f *PaginationFetcher) FetchAll(ctx context.Context, creds domain.Credentials) (domain.AggregatedFeed, error) {
	f.logger.Debug("fetching notifications (page 1)")
	page, err := f.source.FetchPage(ctx, creds.APIToken, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("page 1: %w", err)
	}

	feed := make(domain.AggregatedFeed, 0, len(page.Records))
	seen := make(map[string]struct{}, len(page.Records))
	for _, r := range page.Records {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		feed = append(feed, r)
	}

	for pageNum := 2; continuePaging(page); pageNum++ {
		before := page.Cursor
		f.logger.WithFields(logrus.Fields{
			"page":   pageNum,
			"before": before.Format(time.RFC3339),
		}).Debug("fetching notifications")

		page, err = f.source.FetchPage(ctx, creds.APIToken, before)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNum, err)
		}
		if page.Empty() {
			f.logger.WithField("page", pageNum).Debug("feed exhausted")
			break
		}

		for _, r := range page.Records {
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			feed = append(feed, r)
		}

		// A feed that ignores the cursor would otherwise be paged forever.
		if !page.Cursor.Before(before) {
			f.logger.WithField("page", pageNum).Warn("feed cursor did not advance, stopping")
			break
		}
	}

	feed.SortNewestFirst()
	f.logger.WithField("count", len(feed)).Info("fetched notifications")
	return feed, nil
}

func continuePaging(page domain.NotificationPage) bool {
	fraction, ok := domain.UnreadFraction(page.Records)
	return ok && fraction > readEnoughFraction
}
