package usecase

import (
	"context"
	"fmt"
	"strings"

	"BacklogStatus/internal/ports"
)

// Store keys shared with the CLI.
const (
	KeyToken      = "token"
	KeyWebhook    = "webhook"
	KeyTimestamp  = "timestamp"
	KeyLastResult = "last_result"
)

// Settings are the user-editable values a cycle needs.
type Settings struct {
	APIToken   string
	WebhookURL string
}

// SettingsSource reads settings from the store, falling back to defaults for
// keys that were never stored.
type SettingsSource struct {
	store    ports.KeyValueStore
	defaults Settings
}

// NewSettingsSource wires the store; store may be nil to use defaults only.
func NewSettingsSource(store ports.KeyValueStore, defaults Settings) *SettingsSource {
	return &SettingsSource{store: store, defaults: defaults}
}

// Load resolves the current settings.
func (s *SettingsSource) Load(ctx context.Context) (Settings, error) {
	settings := s.defaults
	if s.store == nil {
		return settings, nil
	}

	if v, ok, err := s.store.Get(ctx, KeyToken); err != nil {
		return Settings{}, fmt.Errorf("load token: %w", err)
	} else if ok {
		settings.APIToken = v
	}

	if v, ok, err := s.store.Get(ctx, KeyWebhook); err != nil {
		return Settings{}, fmt.Errorf("load webhook: %w", err)
	} else if ok {
		settings.WebhookURL = strings.TrimSpace(v)
	}

	return settings, nil
}
