package domain

import "fmt"

// FeedFetchError is returned when a notification page request is rejected.
type FeedFetchError struct {
	Status     int
	StatusText string
}

func (e *FeedFetchError) Error() string {
	return fmt.Sprintf("bad response from notification feed: %d %s", e.Status, e.StatusText)
}

// CredentialResolutionError means the identity or the publish token could not
// be located in the provider's response.
type CredentialResolutionError struct {
	What   string
	Reason string
}

func (e *CredentialResolutionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("couldn't resolve %s", e.What)
	}
	return fmt.Sprintf("couldn't resolve %s: %s", e.What, e.Reason)
}

// PublishError is returned when the status submission is rejected.
type PublishError struct {
	Status     int
	StatusText string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("bad response from status endpoint: %d %s", e.Status, e.StatusText)
}

// InsufficientDataError is returned when there is nothing to estimate from.
type InsufficientDataError struct{}

func (e *InsufficientDataError) Error() string {
	return "no notifications to estimate backlog from"
}
