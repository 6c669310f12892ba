package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"skin-assessment-service/internal/domain"
)

// SessionRepository abstracts where live assessment sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuestionBankRepository loads question bank content (from cache/backing store).
type QuestionBankRepository interface {
	GetQuestionBank(ctx context.Context, bankID string) (domain.QuestionBank, error)
}

// LeadDispatcher hands a completed lead to the external lead system.
// Dispatch must return without waiting for delivery.
type LeadDispatcher interface {
	Dispatch(payload domain.SubmissionPayload)
}

// EventTracker forwards analytics checkpoints. Track must return without waiting for delivery.
type EventTracker interface {
	Track(event domain.TrackingEvent)
}

// BookingLinks are the consultation call-to-action URLs shown with results.
type BookingLinks struct {
	Suitable    string
	Alternative string
}

// Settings configures every session the service starts.
type Settings struct {
	BankID  string
	Pacing  time.Duration
	Tags    domain.LeadTags
	Booking BookingLinks
}

// Option customizes an AssessmentService.
type Option func(*AssessmentService)

// WithClock replaces time.Now, for deterministic timestamps in tests.
func WithClock(now func() time.Time) Option {
	return func(s *AssessmentService) { s.now = now }
}

// WithScheduler replaces the timer used for the pacing delay.
func WithScheduler(schedule Scheduler) Option {
	return func(s *AssessmentService) { s.schedule = schedule }
}

// WithIDGenerator replaces the random session id source.
func WithIDGenerator(newID func() string) Option {
	return func(s *AssessmentService) { s.newID = newID }
}

// AssessmentService contains the assessment use cases.
type AssessmentService struct {
	sessions   SessionRepository
	banks      QuestionBankRepository
	dispatcher LeadDispatcher
	tracker    EventTracker
	settings   Settings

	now      func() time.Time
	schedule Scheduler
	newID    func() string
}

func NewAssessmentService(store SessionRepository, banks QuestionBankRepository, dispatcher LeadDispatcher, tracker EventTracker, settings Settings, opts ...Option) *AssessmentService {
	if settings.BankID == "" {
		settings.BankID = domain.DefaultQuestionBankID
	}
	if settings.Tags == (domain.LeadTags{}) {
		settings.Tags = domain.DefaultLeadTags()
	}
	if dispatcher == nil {
		dispatcher = nopDispatcher{}
	}
	if tracker == nil {
		tracker = nopTracker{}
	}
	s := &AssessmentService{
		sessions:   store,
		banks:      banks,
		dispatcher: dispatcher,
		tracker:    tracker,
		settings:   settings,
		now:        time.Now,
		schedule:   afterFunc,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a new session at the first question.
func (s *AssessmentService) Start(ctx context.Context) (domain.View, error) {
	bank, err := s.banks.GetQuestionBank(ctx, s.settings.BankID)
	if err != nil {
		return domain.View{}, err
	}
	if err := bank.Validate(); err != nil {
		return domain.View{}, fmt.Errorf("bank %q: %w", s.settings.BankID, err)
	}

	session := newSession(s.newID(), bank, sessionConfig{
		pacing:     s.settings.Pacing,
		tags:       s.settings.Tags,
		booking:    s.settings.Booking,
		dispatcher: s.dispatcher,
		tracker:    s.tracker,
		now:        s.now,
		schedule:   s.schedule,
	})
	s.sessions.Put(session)
	s.tracker.Track(domain.AssessmentStartedEvent(session.ID(), s.now()))
	return session.view(), nil
}

// QuestionBank returns the bank new sessions are started with.
func (s *AssessmentService) QuestionBank(ctx context.Context) (domain.QuestionBank, error) {
	return s.banks.GetQuestionBank(ctx, s.settings.BankID)
}

// View returns the current snapshot of a session.
func (s *AssessmentService) View(_ context.Context, sessionID string) (domain.View, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.View{}, err
	}
	return session.view(), nil
}

// Answer records the chosen option for the current question.
func (s *AssessmentService) Answer(_ context.Context, sessionID string, submission domain.AnswerSubmission) (domain.View, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.View{}, err
	}
	return session.answer(submission)
}

// UpdateContact edits one lead form field.
func (s *AssessmentService) UpdateContact(_ context.Context, sessionID, field, value string) (domain.View, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.View{}, err
	}
	return session.updateContact(field, value)
}

// SubmitLead validates the lead form. On domain.ErrLeadInvalid the returned view carries the field errors.
func (s *AssessmentService) SubmitLead(_ context.Context, sessionID string) (domain.View, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.View{}, err
	}
	return session.submitLead()
}

// Restart clears the session and returns it to the first question.
func (s *AssessmentService) Restart(_ context.Context, sessionID string) (domain.View, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.View{}, err
	}
	return session.restart()
}

// Subscribe returns a channel that receives a snapshot on every transition of the session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *AssessmentService) Subscribe(_ context.Context, sessionID string) (<-chan domain.View, func(), error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Close tears the session down and forgets it.
func (s *AssessmentService) Close(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.close()
	s.sessions.Delete(sessionID)
}

func (s *AssessmentService) session(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(domain.SubmissionPayload) {}

type nopTracker struct{}

func (nopTracker) Track(domain.TrackingEvent) {}
