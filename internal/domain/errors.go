package domain

import "errors"

var (
	// ErrSessionNotFound is returned when an assessment session has not been started or was closed.
	ErrSessionNotFound = errors.New("assessment session not found")
	// ErrQuestionBankNotFound indicates the question bank could not be loaded.
	ErrQuestionBankNotFound = errors.New("question bank not found")
	// ErrInvalidQuestionBank indicates loaded question bank content is unusable.
	ErrInvalidQuestionBank = errors.New("invalid question bank")
	// ErrQuestionNotCurrent indicates an answer was submitted for a question other than the current step.
	ErrQuestionNotCurrent = errors.New("question is not the current step")
	// ErrOptionNotFound indicates a submitted option index is invalid.
	ErrOptionNotFound = errors.New("option not found")
	// ErrWrongPhase is returned when an intent does not apply to the session's current phase.
	ErrWrongPhase = errors.New("action not allowed in current phase")
	// ErrUnknownField indicates a contact edit named a field the lead form does not have.
	ErrUnknownField = errors.New("unknown contact field")
	// ErrLeadInvalid is returned when a lead submission fails validation.
	ErrLeadInvalid = errors.New("lead contact is invalid")
	// ErrTierOutOfRange indicates a classification lookup outside tiers 1..6.
	ErrTierOutOfRange = errors.New("classification tier out of range")
)
