package models

import (
	"strings"
	"time"
)

// AlertSeverity represents the CAP severity of an alert
type AlertSeverity string

const (
	SeverityExtreme  AlertSeverity = "Extreme"
	SeveritySevere   AlertSeverity = "Severe"
	SeverityModerate AlertSeverity = "Moderate"
	SeverityMinor    AlertSeverity = "Minor"
	SeverityUnknown  AlertSeverity = "Unknown"
)

// AlertUrgency represents the CAP urgency of an alert
type AlertUrgency string

const (
	UrgencyImmediate AlertUrgency = "Immediate"
	UrgencyExpected  AlertUrgency = "Expected"
	UrgencyFuture    AlertUrgency = "Future"
	UrgencyPast      AlertUrgency = "Past"
	UrgencyUnknown   AlertUrgency = "Unknown"
)

// AlertCertainty represents the CAP certainty of an alert
type AlertCertainty string

const (
	CertaintyObserved AlertCertainty = "Observed"
	CertaintyLikely   AlertCertainty = "Likely"
	CertaintyPossible AlertCertainty = "Possible"
	CertaintyUnknown  AlertCertainty = "Unknown"
)

// Alert represents an active NWS weather or marine alert
type Alert struct {
	ID          string         `json:"id"`
	Headline    string         `json:"headline"`
	Event       string         `json:"event"` // e.g., "Small Craft Advisory", "Gale Warning"
	Severity    AlertSeverity  `json:"severity"`
	Urgency     AlertUrgency   `json:"urgency"`
	Certainty   AlertCertainty `json:"certainty"`
	Description string         `json:"description"`
	Instruction string         `json:"instruction,omitempty"`
	Areas       []string       `json:"areas"`
	Onset       time.Time      `json:"onset,omitempty"`
	Expires     time.Time      `json:"expires,omitempty"`
}

// IsSevere reports whether the alert is Severe or Extreme
func (a *Alert) IsSevere() bool {
	return a.Severity == SeveritySevere || a.Severity == SeverityExtreme
}

// EventContains reports whether the event name contains any of the given
// lower-case fragments.
func (a *Alert) EventContains(fragments ...string) bool {
	event := strings.ToLower(a.Event)
	for _, f := range fragments {
		if strings.Contains(event, f) {
			return true
		}
	}
	return false
}

// ParseSeverity maps a CAP severity string to AlertSeverity
func ParseSeverity(s string) AlertSeverity {
	switch s {
	case "Extreme":
		return SeverityExtreme
	case "Severe":
		return SeveritySevere
	case "Moderate":
		return SeverityModerate
	case "Minor":
		return SeverityMinor
	default:
		return SeverityUnknown
	}
}

// ParseUrgency maps a CAP urgency string to AlertUrgency
func ParseUrgency(s string) AlertUrgency {
	switch s {
	case "Immediate":
		return UrgencyImmediate
	case "Expected":
		return UrgencyExpected
	case "Future":
		return UrgencyFuture
	case "Past":
		return UrgencyPast
	default:
		return UrgencyUnknown
	}
}

// ParseCertainty maps a CAP certainty string to AlertCertainty
func ParseCertainty(s string) AlertCertainty {
	switch s {
	case "Observed":
		return CertaintyObserved
	case "Likely":
		return CertaintyLikely
	case "Possible":
		return CertaintyPossible
	default:
		return CertaintyUnknown
	}
}
