package usecase

import (
	"fmt"
	"math"

	"BacklogStatus/internal/domain"
)

// busyThresholdDays is inclusive: exactly three days is busy.
const busyThresholdDays = 3

const relaxedMessage = "Estimated inbox backlog: a few days"

// StatusPolicy maps an estimate to the published status.
type StatusPolicy struct{}

// Describe never fails.
func (StatusPolicy) Describe(estimate domain.BacklogEstimate) domain.StatusDescriptor {
	if estimate.Days >= busyThresholdDays {
		return domain.StatusDescriptor{
			Message: fmt.Sprintf("Estimated inbox backlog: about %d days", int(math.Floor(estimate.Days))),
			Icon:    domain.IconInboxTray,
			Busy:    true,
		}
	}
	return domain.StatusDescriptor{
		Message: relaxedMessage,
		Icon:    domain.IconKiwiFruit,
		Busy:    false,
	}
}
