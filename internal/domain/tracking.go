package domain

import (
	"strconv"
	"time"
)

// Pixel event names emitted at assessment checkpoints.
const (
	EventAssessmentStarted   = "InitiateCheckout"
	EventAssessmentCompleted = "CompleteRegistration"
	EventLeadSubmitted       = "Lead"
)

// TrackingEvent is a named analytics checkpoint.
// Run counts restarts of the session so each pass through it has distinct event ids.
type TrackingEvent struct {
	Name       string            `json:"event_name"`
	SessionID  string            `json:"session_id"`
	Run        uint64            `json:"run"`
	OccurredAt time.Time         `json:"-"`
	Params     map[string]string `json:"custom_data,omitempty"`
}

// ID identifies one emission for deduplication by the analytics collaborator.
func (e TrackingEvent) ID() string {
	return e.SessionID + ":" + strconv.FormatUint(e.Run, 10) + ":" + e.Name
}

func AssessmentStartedEvent(sessionID string, at time.Time) TrackingEvent {
	return TrackingEvent{
		Name:       EventAssessmentStarted,
		SessionID:  sessionID,
		OccurredAt: at,
		Params:     map[string]string{"content_name": "Skin Assessment Started"},
	}
}

func LeadSubmittedEvent(sessionID string, at time.Time) TrackingEvent {
	return TrackingEvent{
		Name:       EventLeadSubmitted,
		SessionID:  sessionID,
		OccurredAt: at,
		Params:     map[string]string{"content_name": "Lead Form Submitted"},
	}
}

// AssessmentCompletedEvent carries the classification's eligibility label as its value.
func AssessmentCompletedEvent(sessionID string, c Classification, at time.Time) TrackingEvent {
	return TrackingEvent{
		Name:       EventAssessmentCompleted,
		SessionID:  sessionID,
		OccurredAt: at,
		Params: map[string]string{
			"content_name": "Assessment Completed",
			"value":        c.Eligibility.Label(),
			"currency":     "GBP",
		},
	}
}
