package domain

import "time"

// Phase is the single active stage of an assessment session.
type Phase int

const (
	PhaseQuestioning Phase = iota
	PhaseCapturingLead
	PhaseShowingResults
)

func (p Phase) String() string {
	switch p {
	case PhaseCapturingLead:
		return "capturing_lead"
	case PhaseShowingResults:
		return "showing_results"
	default:
		return "questioning"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// AnswerSubmission models an option choice from the hosting page.
// QuestionID is optional; when set it must name the current question.
type AnswerSubmission struct {
	QuestionID  string
	OptionIndex int
}

// QuestionView is the current question as rendered to the user.
type QuestionView struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// ResultView is the classification shown once the lead is captured.
type ResultView struct {
	Classification
	DisplayName      string `json:"displayName"`
	EligibilityLabel string `json:"eligibilityLabel"`
	BookingURL       string `json:"bookingUrl,omitempty"`
}

// View is a snapshot of everything the hosting page needs to render a session.
type View struct {
	SessionID  string        `json:"sessionId"`
	Phase      Phase         `json:"phase"`
	Step       int           `json:"step"`
	TotalSteps int           `json:"totalSteps"`
	Answered   int           `json:"answered"`
	Progress   int           `json:"progress"`
	Question   *QuestionView `json:"question,omitempty"`
	Contact    LeadContact   `json:"contact"`
	Errors     FieldErrors   `json:"errors,omitempty"`
	Result     *ResultView   `json:"result,omitempty"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}
