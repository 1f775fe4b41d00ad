package domain

import (
	"sort"
	"time"
)

// NotificationRecord is a single entry of the notification feed.
type NotificationRecord struct {
	ID        string
	UpdatedAt time.Time
	Unread    bool
}

// NotificationPage is one batch returned by the feed together with the cursor
// used to request the next, older batch.
type NotificationPage struct {
	Records []NotificationRecord
	Cursor  time.Time
}

// NewNotificationPage builds a page and derives its cursor: the oldest UpdatedAt
// among the records. An empty page has a zero cursor.
func NewNotificationPage(records []NotificationRecord) NotificationPage {
	page := NotificationPage{Records: records}
	for i, r := range records {
		if i == 0 || r.UpdatedAt.Before(page.Cursor) {
			page.Cursor = r.UpdatedAt
		}
	}
	return page
}

// Empty reports whether the feed returned nothing.
func (p NotificationPage) Empty() bool {
	return len(p.Records) == 0
}

// AggregatedFeed is the deduplicated union of fetched pages, newest first.
type AggregatedFeed []NotificationRecord

// SortNewestFirst orders the feed by UpdatedAt descending, keeping the fetch
// order for equal timestamps.
func (f AggregatedFeed) SortNewestFirst() {
	sort.SliceStable(f, func(i, j int) bool {
		return f[i].UpdatedAt.After(f[j].UpdatedAt)
	})
}

// UnreadFraction returns unread/total over the records. The second result is
// false when there are no records and the ratio is undefined.
func UnreadFraction(records []NotificationRecord) (float64, bool) {
	if len(records) == 0 {
		return 0, false
	}
	unread := 0
	for _, r := range records {
		if r.Unread {
			unread++
		}
	}
	return float64(unread) / float64(len(records)), true
}
