package app

import (
	"math"
	"sync"
	"time"

	"skin-assessment-service/internal/domain"
)

// Scheduler runs f once after d and returns a function that cancels it if it has not run.
// f must not run before Scheduler returns.
type Scheduler func(d time.Duration, f func()) (stop func() bool)

func afterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

type sessionConfig struct {
	pacing     time.Duration
	tags       domain.LeadTags
	booking    BookingLinks
	dispatcher LeadDispatcher
	tracker    EventTracker
	now        func() time.Time
	schedule   Scheduler
}

// Session is one user's walk through the assessment: questions, lead capture, results.
type Session struct {
	id   string
	bank domain.QuestionBank
	cfg  sessionConfig

	mu          sync.Mutex
	phase       domain.Phase
	step        int
	answers     domain.AnswerSet
	contact     domain.LeadContact
	errors      domain.FieldErrors
	result      *domain.Classification
	generation  uint64
	pendingStop func() bool
	closed      bool
	subscribers map[chan domain.View]struct{}
}

func newSession(id string, bank domain.QuestionBank, cfg sessionConfig) *Session {
	return &Session{
		id:          id,
		bank:        bank,
		cfg:         cfg,
		answers:     domain.AnswerSet{},
		subscribers: make(map[chan domain.View]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) view() domain.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) answer(submission domain.AnswerSubmission) (domain.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.View{}, domain.ErrSessionNotFound
	}
	if s.phase != domain.PhaseQuestioning {
		return domain.View{}, domain.ErrWrongPhase
	}
	question := s.bank.Questions[s.step]
	if submission.QuestionID != "" && submission.QuestionID != question.ID {
		return domain.View{}, domain.ErrQuestionNotCurrent
	}
	if submission.OptionIndex < 0 || submission.OptionIndex >= len(question.Options) {
		return domain.View{}, domain.ErrOptionNotFound
	}

	s.answers[question.ID] = question.Options[submission.OptionIndex].Score

	switch {
	case s.pendingStop != nil:
		// Re-answer while the advance is pending only replaces the score.
	case s.cfg.pacing <= 0:
		s.advanceLocked()
	default:
		generation := s.generation
		s.pendingStop = s.cfg.schedule(s.cfg.pacing, func() {
			s.completeAdvance(generation)
		})
	}
	return s.broadcastLocked(), nil
}

func (s *Session) completeAdvance(generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || generation != s.generation || s.pendingStop == nil {
		return
	}
	s.pendingStop = nil
	s.advanceLocked()
	s.broadcastLocked()
}

func (s *Session) advanceLocked() {
	if s.step < len(s.bank.Questions)-1 {
		s.step++
		return
	}
	s.phase = domain.PhaseCapturingLead
}

func (s *Session) updateContact(field, value string) (domain.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.View{}, domain.ErrSessionNotFound
	}
	if s.phase != domain.PhaseCapturingLead {
		return domain.View{}, domain.ErrWrongPhase
	}
	if err := s.contact.Set(field, value); err != nil {
		return domain.View{}, err
	}
	return s.broadcastLocked(), nil
}

// submitLead validates the contact and, when valid, dispatches the lead and shows results.
// The dispatcher is handed the payload and never awaited.
func (s *Session) submitLead() (domain.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.View{}, domain.ErrSessionNotFound
	}
	if s.phase != domain.PhaseCapturingLead {
		return domain.View{}, domain.ErrWrongPhase
	}

	if errs := domain.ValidateContact(s.contact); !errs.Valid() {
		s.errors = errs
		return s.broadcastLocked(), domain.ErrLeadInvalid
	}
	s.errors = nil

	now := s.cfg.now()
	classification := domain.ComputeClassification(s.answers)
	s.cfg.dispatcher.Dispatch(domain.BuildSubmissionPayload(s.contact, classification, s.cfg.tags, now))
	s.trackLocked(domain.LeadSubmittedEvent(s.id, now))

	s.phase = domain.PhaseShowingResults
	s.result = &classification
	s.trackLocked(domain.AssessmentCompletedEvent(s.id, classification, now))
	return s.broadcastLocked(), nil
}

func (s *Session) restart() (domain.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.View{}, domain.ErrSessionNotFound
	}
	s.cancelPendingLocked()
	s.generation++
	s.phase = domain.PhaseQuestioning
	s.step = 0
	s.answers = domain.AnswerSet{}
	s.contact = domain.LeadContact{}
	s.errors = nil
	s.result = nil
	s.trackLocked(domain.AssessmentStartedEvent(s.id, s.cfg.now()))
	return s.broadcastLocked(), nil
}

// close tears the session down: pending pacing timers never fire afterwards.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.cancelPendingLocked()
	s.generation++
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) trackLocked(event domain.TrackingEvent) {
	event.Run = s.generation
	s.cfg.tracker.Track(event)
}

func (s *Session) cancelPendingLocked() {
	if s.pendingStop != nil {
		s.pendingStop()
		s.pendingStop = nil
	}
}

func (s *Session) subscribe() (<-chan domain.View, func()) {
	ch := make(chan domain.View, 8)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	// The buffer is empty, so this cannot block, and later broadcasts queue behind it.
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() domain.View {
	v := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- v:
		default:
			// Slow subscriber: drop its oldest snapshot so the newest always lands.
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
	return v
}

func (s *Session) snapshotLocked() domain.View {
	total := len(s.bank.Questions)
	v := domain.View{
		SessionID:  s.id,
		Phase:      s.phase,
		Step:       s.step,
		TotalSteps: total,
		Answered:   len(s.answers),
		Progress:   100,
		Contact:    s.contact,
		UpdatedAt:  s.cfg.now(),
	}
	if len(s.errors) > 0 {
		v.Errors = make(domain.FieldErrors, len(s.errors))
		for field, msg := range s.errors {
			v.Errors[field] = msg
		}
	}

	switch s.phase {
	case domain.PhaseQuestioning:
		q := s.bank.Questions[s.step]
		labels := make([]string, len(q.Options))
		for i, opt := range q.Options {
			labels[i] = opt.Label
		}
		v.Question = &domain.QuestionView{ID: q.ID, Prompt: q.Prompt, Options: labels}
		v.Progress = int(math.Round(float64(s.step+1) / float64(total) * 100))
	case domain.PhaseShowingResults:
		c := *s.result
		booking := s.cfg.booking.Alternative
		if c.IsSuitable {
			booking = s.cfg.booking.Suitable
		}
		v.Result = &domain.ResultView{
			Classification:   c,
			DisplayName:      c.DisplayName(),
			EligibilityLabel: c.Eligibility.Label(),
			BookingURL:       booking,
		}
	}
	return v
}
