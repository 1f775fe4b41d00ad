package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"BacklogStatus/internal/domain"
)

func TestFetchAllStopsWhenPageMostlyRead(t *testing.T) {
	t.Parallel()

	feed := &scriptedFeed{pages: [][]domain.NotificationRecord{
		{rec("1", 1, true), rec("2", 2, true), rec("3", 3, false), rec("4", 4, false)},
		{rec("5", 5, false), rec("6", 6, false), rec("7", 7, false), rec("8", 8, false), rec("9", 9, false),
			rec("10", 10, false), rec("11", 11, false), rec("12", 12, false), rec("13", 13, false), rec("14", 14, true)},
		{rec("15", 15, true)},
	}}

	got, err := NewPaginationFetcher(feed, nil).FetchAll(context.Background(), domain.Credentials{APIToken: validToken()})
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}

	// Page 2 has exactly 10% unread, which is read enough.
	if feed.calls() != 2 {
		t.Fatalf("expected 2 page requests, got %d", feed.calls())
	}
	if len(got) != 14 {
		t.Fatalf("expected 14 records, got %d", len(got))
	}
	if feed.tokens[0] != validToken() {
		t.Fatalf("token not forwarded: %q", feed.tokens[0])
	}
}

func TestFetchAllUsesOldestTimestampOfPreviousPageAsCursor(t *testing.T) {
	t.Parallel()

	feed := &scriptedFeed{pages: [][]domain.NotificationRecord{
		// Deliberately unordered: the cursor is the oldest, not the last element.
		{rec("a", 1, true), rec("b", 9, true), rec("c", 4, true)},
		{rec("d", 12, true), rec("e", 10, true)},
	}}

	if _, err := NewPaginationFetcher(feed, nil).FetchAll(context.Background(), domain.Credentials{}); err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}

	if !feed.cursors[0].IsZero() {
		t.Fatalf("first request must not carry a cursor, got %v", feed.cursors[0])
	}
	if !feed.cursors[1].Equal(daysAgo(9)) {
		t.Fatalf("second cursor = %v, want %v", feed.cursors[1], daysAgo(9))
	}
	if !feed.cursors[2].Equal(daysAgo(12)) {
		t.Fatalf("third cursor = %v, want %v", feed.cursors[2], daysAgo(12))
	}
}

func TestFetchAllDeduplicatesOverlappingPages(t *testing.T) {
	t.Parallel()

	feed := &scriptedFeed{pages: [][]domain.NotificationRecord{
		{rec("1", 1, true), rec("2", 2, true), rec("3", 3, true)},
		{rec("3", 3, true), rec("4", 4, true), rec("2", 2, true), rec("5", 5, true)},
		{rec("5", 5, true), rec("6", 6, false), rec("7", 7, false), rec("8", 8, false), rec("9", 9, false),
			rec("10", 10, false), rec("11", 11, false), rec("12", 12, false), rec("13", 13, false), rec("14", 14, false)},
	}}

	got, err := NewPaginationFetcher(feed, nil).FetchAll(context.Background(), domain.Credentials{})
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}

	seen := map[string]bool{}
	for _, r := range got {
		if seen[r.ID] {
			t.Fatalf("duplicate id %s in %v", r.ID, got)
		}
		seen[r.ID] = true
	}
	if len(got) != 14 {
		t.Fatalf("expected 14 unique records, got %d", len(got))
	}
}

func TestFetchAllSortsNewestFirst(t *testing.T) {
	t.Parallel()

	feed := &scriptedFeed{pages: [][]domain.NotificationRecord{
		{rec("old", 5, true), rec("new", 1, true), rec("mid", 3, true)},
		{rec("older", 8, false), rec("oldest", 20, false), rec("x", 6, false), rec("y", 7, false),
			rec("z", 9, false), rec("w", 10, false), rec("v", 11, false), rec("u", 12, false), rec("t", 13, false), rec("s", 14, false)},
	}}

	got, err := NewPaginationFetcher(feed, nil).FetchAll(context.Background(), domain.Credentials{})
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}

	for i := 1; i < len(got); i++ {
		if got[i].UpdatedAt.After(got[i-1].UpdatedAt) {
			t.Fatalf("feed not sorted descending at %d: %v after %v", i, got[i].UpdatedAt, got[i-1].UpdatedAt)
		}
	}
	if got[0].ID != "new" || got[len(got)-1].ID != "oldest" {
		t.Fatalf("unexpected order: first %s last %s", got[0].ID, got[len(got)-1].ID)
	}
}

func TestFetchAllTerminatesWhenAlwaysUnreadFeedIsExhausted(t *testing.T) {
	t.Parallel()

	var pages [][]domain.NotificationRecord
	for p := 0; p < 5; p++ {
		var page []domain.NotificationRecord
		for i := 0; i < 3; i++ {
			n := p*3 + i
			page = append(page, rec(fmt.Sprint(n), float64(n+1), true))
		}
		pages = append(pages, page)
	}
	feed := &scriptedFeed{pages: pages}

	got, err := NewPaginationFetcher(feed, nil).FetchAll(context.Background(), domain.Credentials{})
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}

	if feed.calls() != 6 {
		t.Fatalf("expected 5 pages plus the empty one, got %d calls", feed.calls())
	}
	if len(got) != 15 {
		t.Fatalf("expected 15 records, got %d", len(got))
	}
}

func TestFetchAllEmptyFirstPage(t *testing.T) {
	t.Parallel()

	feed := &scriptedFeed{}
	got, err := NewPaginationFetcher(feed, nil).FetchAll(context.Background(), domain.Credentials{})
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty feed, got %d", len(got))
	}
	if feed.calls() != 1 {
		t.Fatalf("expected a single request, got %d", feed.calls())
	}
}

func TestFetchAllStopsWhenCursorDoesNotAdvance(t *testing.T) {
	t.Parallel()

	same := []domain.NotificationRecord{rec("1", 1, true), rec("2", 2, true)}
	feed := &scriptedFeed{pages: [][]domain.NotificationRecord{same, same, same, same}}

	got, err := NewPaginationFetcher(feed, nil).FetchAll(context.Background(), domain.Credentials{})
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}
	if feed.calls() != 2 {
		t.Fatalf("expected to stop after the repeated page, got %d calls", feed.calls())
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
}

func TestFetchAllPropagatesFeedErrors(t *testing.T) {
	t.Parallel()

	feed := &scriptedFeed{
		pages:   [][]domain.NotificationRecord{{rec("1", 1, true)}},
		failAt:  1,
		failErr: &domain.FeedFetchError{Status: http.StatusBadGateway, StatusText: "Bad Gateway"},
	}

	_, err := NewPaginationFetcher(feed, nil).FetchAll(context.Background(), domain.Credentials{})
	var fetchErr *domain.FeedFetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FeedFetchError, got %v", err)
	}
	if fetchErr.Status != http.StatusBadGateway {
		t.Fatalf("unexpected status %d", fetchErr.Status)
	}
}
