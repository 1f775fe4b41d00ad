package domain

// Icon is the emoji short name shown next to the status message.
type Icon string

const (
	IconInboxTray Icon = "inbox_tray"
	IconKiwiFruit Icon = "kiwi_fruit"
)

// BacklogEstimate is the expected response latency in days.
type BacklogEstimate struct {
	Days float64
}

// StatusDescriptor is what gets published as the profile status.
type StatusDescriptor struct {
	Message string
	Icon    Icon
	Busy    bool
}

// Credentials carry the personal API token used for the feed.
type Credentials struct {
	APIToken string
}

// APITokenLength is the only accepted token length.
const APITokenLength = 40

// Valid reports whether the token has the expected shape.
func (c Credentials) Valid() bool {
	return len(c.APIToken) == APITokenLength
}
