package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"BacklogStatus/internal/app"
	"BacklogStatus/internal/config"
	"BacklogStatus/internal/domain"
	"BacklogStatus/internal/logging"
)

func openApp(ctx context.Context) (*app.Application, config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Environment)
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, cfg, err
	}
	return application, cfg, nil
}

func formatStatus(status domain.StatusDescriptor) string {
	availability := color.New(color.FgGreen).Sprint("available")
	if status.Busy {
		availability = color.New(color.FgYellow).Sprint("busy")
	}
	return fmt.Sprintf(":%s: %s (%s)", status.Icon, status.Message, availability)
}

// maskToken keeps only the last four characters visible.
func maskToken(token string) string {
	if token == "" {
		return color.New(color.FgYellow).Sprint("(not set)")
	}
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
