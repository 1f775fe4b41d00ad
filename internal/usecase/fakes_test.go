package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"BacklogStatus/internal/domain"
)

var fixedNow = time.Date(2026, time.October, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(d float64) time.Time {
	return fixedNow.Add(-time.Duration(d * float64(24*time.Hour)))
}

func rec(id string, ageDays float64, unread bool) domain.NotificationRecord {
	return domain.NotificationRecord{ID: id, UpdatedAt: daysAgo(ageDays), Unread: unread}
}

// scriptedFeed serves pages in order and then empty pages.
type scriptedFeed struct {
	pages   [][]domain.NotificationRecord
	failAt  int
	failErr error

	tokens  []string
	cursors []time.Time
}

func (f *scriptedFeed) FetchPage(_ context.Context, token string, before time.Time) (domain.NotificationPage, error) {
	call := len(f.cursors)
	f.tokens = append(f.tokens, token)
	f.cursors = append(f.cursors, before)
	if f.failErr != nil && call == f.failAt {
		return domain.NotificationPage{}, f.failErr
	}
	if call >= len(f.pages) {
		return domain.NewNotificationPage(nil), nil
	}
	return domain.NewNotificationPage(f.pages[call]), nil
}

func (f *scriptedFeed) calls() int {
	return len(f.cursors)
}

type fakeCredentials struct {
	username    string
	token       string
	identityErr error
	tokenErr    error
	calls       []string
}

func (f *fakeCredentials) ResolveIdentity(_ context.Context, creds domain.Credentials) (string, error) {
	f.calls = append(f.calls, "identity:"+creds.APIToken)
	if f.identityErr != nil {
		return "", f.identityErr
	}
	return f.username, nil
}

func (f *fakeCredentials) ResolvePublishToken(_ context.Context, username string) (string, error) {
	f.calls = append(f.calls, "token:"+username)
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return f.token, nil
}

type fakePublisher struct {
	err       error
	tokens    []string
	published []domain.StatusDescriptor
}

func (f *fakePublisher) Publish(_ context.Context, token string, status domain.StatusDescriptor) error {
	f.tokens = append(f.tokens, token)
	f.published = append(f.published, status)
	return f.err
}

type fakeWebhook struct {
	pinged []string
}

func (f *fakeWebhook) Ping(_ context.Context, url string) {
	f.pinged = append(f.pinged, url)
}

type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

var errBoom = errors.New("boom")

func validToken() string {
	return fmt.Sprintf("%040d", 7)
}
