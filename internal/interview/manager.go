package interview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"interview-screening-bot/internal/logger"
	"interview-screening-bot/internal/metrics"
	"interview-screening-bot/internal/notify"
	"interview-screening-bot/internal/questions"
	"interview-screening-bot/internal/scoring"
	"interview-screening-bot/internal/storage"
)

const notifyTimeout = 30 * time.Second

// ErrPersistence marks a failed commit of a finished interview.
var ErrPersistence = errors.New("persist interview")

// QuestionSource hands out the question list for a new session.
type QuestionSource interface {
	Next() ([]questions.Question, error)
	PerInterview() int
}

// Admins is the privileged recipient set, parsed once at startup.
type Admins interface {
	Contains(id int64) bool
	IDs() []int64
}

// Options wires a Manager. Questions, Scorer, Store and Admins are required.
type Options struct {
	Questions QuestionSource
	Scorer    scoring.Scorer
	Store     storage.Gateway
	Notifier  notify.Notifier
	Admins    Admins
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Now       func() time.Time
}

// Manager runs the interview state machine for every candidate.
type Manager struct {
	questions QuestionSource
	scorer    scoring.Scorer
	store     storage.Gateway
	notifier  notify.Notifier
	admins    Admins
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time

	locks *keyedLock

	mu       sync.Mutex
	sessions map[int64]*Session

	notifications sync.WaitGroup
}

func NewManager(opts Options) (*Manager, error) {
	switch {
	case opts.Questions == nil:
		return nil, errors.New("interview: question source is required")
	case opts.Scorer == nil:
		return nil, errors.New("interview: scorer is required")
	case opts.Store == nil:
		return nil, errors.New("interview: store is required")
	case opts.Admins == nil:
		return nil, errors.New("interview: admin set is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		questions: opts.Questions,
		scorer:    opts.Scorer,
		store:     opts.Store,
		notifier:  opts.Notifier,
		admins:    opts.Admins,
		metrics:   opts.Metrics,
		logger:    logger.OrNop(opts.Logger),
		now:       now,
		locks:     newKeyedLock(),
		sessions:  make(map[int64]*Session),
	}, nil
}

// HandleEvent applies ev to the candidate's session. Events for one
// candidate are applied one at a time in arrival order. A non-nil error
// is returned only for server-side failures; the Effect is still valid
// and should be delivered.
func (m *Manager) HandleEvent(ctx context.Context, candidateID int64, ev Event) (Effect, error) {
	unlock, err := m.locks.Lock(ctx, candidateID)
	if err != nil {
		return Effect{}, err
	}
	defer unlock()

	switch ev := ev.(type) {
	case StartCommand:
		return m.handleStart(ctx, candidateID, ev)
	case TextMessage:
		return m.handleText(ctx, candidateID, ev)
	case StopCommand:
		return m.handleStop(candidateID), nil
	default:
		return Effect{}, fmt.Errorf("interview: unsupported event %T", ev)
	}
}

// State returns the live session state of a candidate.
func (m *Manager) State(candidateID int64) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[candidateID]
	if !ok {
		return State{}, false
	}
	return s.State, true
}

// ActiveSessions counts sessions that have not completed.
func (m *Manager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Wait blocks until in-flight operator notifications have finished.
func (m *Manager) Wait() {
	m.notifications.Wait()
}

func (m *Manager) session(candidateID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[candidateID]
}

func (m *Manager) putSession(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.CandidateID] = s
}

func (m *Manager) dropSession(candidateID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, candidateID)
}

func (m *Manager) handleStop(candidateID int64) Effect {
	if !m.admins.Contains(candidateID) {
		m.logger.Warn("stop requested without permission", zap.Int64(logger.FieldCandidateID, candidateID))
		return Effect{Kind: EffectPermissionDenied, Messages: []string{textPermissionDenied}}
	}
	m.logger.Info("admin requested shutdown", zap.Int64(logger.FieldCandidateID, candidateID))
	return Effect{Kind: EffectShutdown, Messages: []string{textStopping}}
}

func (m *Manager) handleStart(ctx context.Context, candidateID int64, ev StartCommand) (Effect, error) {
	admin := m.admins.Contains(candidateID)
	log := logger.ForCandidate(m.logger, candidateID, "")

	record, err := m.store.Find(ctx, candidateID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Error("completion lookup failed", zap.Error(err))
		return Effect{Kind: EffectRetryLater, Messages: []string{textRetryStart}},
			fmt.Errorf("%w: lookup candidate %d: %w", ErrPersistence, candidateID, err)
	}
	completed := record != nil && record.Completed

	var notices []string
	existing := m.session(candidateID)
	switch {
	case !admin && completed:
		log.Warn("start after completion blocked", zap.String("decision", string(record.Decision)))
		return Effect{Kind: EffectAlreadyCompleted, Messages: []string{alreadyCompletedText(record.Decision)}}, nil
	case !admin && existing != nil:
		log.Info("start while interview in progress", zap.Stringer("state", existing.State))
		text := textAwaitingName
		if existing.State.Stage() != StageAwaitingName {
			text = inProgressText(existing.State.Question(), m.questions.PerInterview())
		}
		return Effect{
			Kind:      EffectInProgress,
			Messages:  []string{text},
			State:     existing.State,
			SessionID: existing.ID,
		}, nil
	case admin && existing != nil:
		log.Info("admin restarting interview in progress", zap.String(logger.FieldSessionID, existing.ID))
		notices = append(notices, textAdminRestartInProgress)
	case admin && completed:
		log.Info("admin restarting completed interview")
		notices = append(notices, textAdminRestartCompleted)
	}

	s := &Session{
		ID:          uuid.NewString(),
		CandidateID: candidateID,
		Username:    ev.Username,
		Admin:       admin,
		State:       AwaitingName(),
		StartedAt:   m.now(),
	}
	m.putSession(s)
	m.metrics.IncrementInterviewsStarted()

	greeting := textGreeting
	if admin {
		greeting = textAdminGreeting
	}
	logger.ForCandidate(m.logger, candidateID, s.ID).Info("interview started",
		zap.Bool("admin", admin), zap.Stringer("state", s.State))

	return Effect{
		Kind:      EffectPrompt,
		Messages:  append(notices, greeting),
		State:     s.State,
		SessionID: s.ID,
	}, nil
}

func (m *Manager) handleText(ctx context.Context, candidateID int64, ev TextMessage) (Effect, error) {
	s := m.session(candidateID)
	if s == nil {
		return m.noSession(ctx, candidateID)
	}
	if ev.Username != "" {
		s.Username = ev.Username
	}

	switch s.State.Stage() {
	case StageAwaitingName:
		return m.acceptName(s, ev.Text)
	case StageAwaitingAnswer:
		return m.acceptAnswer(ctx, s, ev.Text)
	default:
		// Scoring and Completed never outlive a single HandleEvent call.
		return Effect{Kind: EffectInProgress, State: s.State, SessionID: s.ID,
			Messages: []string{inProgressText(len(s.Questions), len(s.Questions))}}, nil
	}
}

func (m *Manager) noSession(ctx context.Context, candidateID int64) (Effect, error) {
	if !m.admins.Contains(candidateID) {
		record, err := m.store.Find(ctx, candidateID)
		switch {
		case err == nil && record.Completed:
			return Effect{Kind: EffectAlreadyCompleted, Messages: []string{textAlreadyCompletedText}}, nil
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			logger.ForCandidate(m.logger, candidateID, "").Error("completion lookup failed", zap.Error(err))
			return Effect{Kind: EffectRetryLater, Messages: []string{textRetryStart}},
				fmt.Errorf("%w: lookup candidate %d: %w", ErrPersistence, candidateID, err)
		}
	}
	return Effect{Kind: EffectNotStarted, Messages: []string{textNotStarted}}, nil
}

func (m *Manager) reprompt(s *Session, err error, extra ...string) (Effect, error) {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return Effect{}, err
	}
	m.metrics.IncrementAnswersRejected()
	logger.ForCandidate(m.logger, s.CandidateID, s.ID).Debug("input rejected",
		zap.String("field", ve.Field), zap.Stringer("state", s.State))

	return Effect{
		Kind:      EffectReprompt,
		Messages:  append([]string{ve.Reason}, extra...),
		State:     s.State,
		SessionID: s.ID,
	}, nil
}

func (m *Manager) acceptName(s *Session, text string) (Effect, error) {
	name, err := validateName(text)
	if err != nil {
		return m.reprompt(s, err)
	}

	qs, err := m.questions.Next()
	if err != nil {
		logger.ForCandidate(m.logger, s.CandidateID, s.ID).Error("question selection failed", zap.Error(err))
		return Effect{Kind: EffectRetryLater, Messages: []string{textRetryStart}, State: s.State, SessionID: s.ID},
			fmt.Errorf("select questions: %w", err)
	}

	s.Name = name
	s.Questions = qs
	s.State = AwaitingAnswer(1)
	s.AskedAt = m.now()
	m.metrics.IncrementQuestionsAsked()

	logger.ForCandidate(m.logger, s.CandidateID, s.ID).Info("name accepted",
		zap.Stringer("state", s.State), zap.Int("questions", len(qs)))

	return Effect{
		Kind:      EffectPrompt,
		Messages:  []string{welcomeText(name), s.current().Text},
		State:     s.State,
		SessionID: s.ID,
	}, nil
}

func (m *Manager) acceptAnswer(ctx context.Context, s *Session, text string) (Effect, error) {
	q := s.current()
	answer, err := validateAnswer(text)
	if err != nil {
		return m.reprompt(s, err, q.Text)
	}

	now := m.now()
	elapsed := now.Sub(s.AskedAt)
	k := s.State.Question()
	log := logger.ForCandidate(m.logger, s.CandidateID, s.ID)

	result := m.scorer.Score(ctx, q, scoring.Answer{Text: answer, Elapsed: elapsed})
	s.Results = append(s.Results, result)
	s.Responses = append(s.Responses, storage.Response{
		CandidateID:  s.CandidateID,
		Ordinal:      k,
		QuestionID:   q.ID,
		QuestionText: q.Text,
		AnswerText:   answer,
		Elapsed:      elapsed,
		Score:        result.Rubric.Total(),
		RiskScore:    result.Risk,
		Timestamp:    now,
	})

	log.Info("answer scored",
		zap.Int("question", k),
		zap.String("question_id", q.ID),
		zap.Int("score", result.Rubric.Total()),
		zap.Int("risk", result.Risk),
		zap.Duration("elapsed", elapsed),
		zap.String("answer", logger.TruncateForLog(answer, 80)))

	if k < len(s.Questions) {
		s.State = AwaitingAnswer(k + 1)
		s.AskedAt = now
		m.metrics.IncrementQuestionsAsked()
		return Effect{
			Kind:      EffectPrompt,
			Messages:  []string{s.current().Text},
			State:     s.State,
			SessionID: s.ID,
		}, nil
	}

	s.State = Scoring()
	return m.complete(ctx, s)
}

func (m *Manager) complete(ctx context.Context, s *Session) (Effect, error) {
	log := logger.ForCandidate(m.logger, s.CandidateID, s.ID)

	total := scoring.TotalScore(s.Results)
	risk := scoring.AggregateRisk(s.Results)
	decision := scoring.Decide(total, risk)

	candidate := storage.Candidate{
		ID:          s.CandidateID,
		Username:    s.Username,
		Name:        s.Name,
		Score:       total,
		RiskScore:   risk,
		Decision:    decision,
		Completed:   true,
		SessionID:   s.ID,
		CreatedAt:   s.StartedAt,
		CompletedAt: m.now(),
	}

	if err := m.store.Commit(ctx, candidate, s.Responses); err != nil {
		s.dropLast()
		m.metrics.IncrementPersistenceFailures()
		log.Error("interview commit failed", zap.Error(err), zap.Stringer("state", s.State))
		return Effect{
			Kind:      EffectRetryLater,
			Messages:  []string{textRetryLater},
			State:     s.State,
			SessionID: s.ID,
		}, fmt.Errorf("%w for candidate %d: %w", ErrPersistence, s.CandidateID, err)
	}

	s.State = Completed()
	m.dropSession(s.CandidateID)
	m.metrics.RecordCompletion(decision)

	log.Info("interview completed",
		zap.String("decision", string(decision)),
		zap.Int("score", total),
		zap.Int("risk", risk),
		zap.Bool("admin", s.Admin))

	feedback := Feedback(decision)
	if s.Admin {
		feedback += textAdminCompletionNote
		log.Info("skipping operator notification for admin test run")
	} else {
		focus := make(map[string][]string, len(s.Questions))
		for _, q := range s.Questions {
			if len(q.Exercises) > 0 {
				focus[q.ID] = q.Exercises
			}
		}
		m.notifyOperators(ctx, notify.Summary{
			Candidate: candidate,
			Responses: s.Responses,
			MaxScore:  scoring.MaxAnswerPoints * len(s.Questions),
			Focus:     focus,
		})
	}

	return Effect{
		Kind:      EffectCompleted,
		Messages:  []string{feedback},
		State:     s.State,
		SessionID: s.ID,
		Decision:  decision,
	}, nil
}

// notifyOperators sends the summary in the background. The commit has
// already succeeded, so delivery failures are only logged.
func (m *Manager) notifyOperators(ctx context.Context, summary notify.Summary) {
	if m.notifier == nil {
		return
	}
	recipients := m.admins.IDs()
	if len(recipients) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	m.notifications.Add(1)
	go func() {
		defer m.notifications.Done()
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()

		err := m.notifier.Notify(ctx, recipients, summary)
		if err == nil {
			return
		}
		m.metrics.IncrementNotificationFailures()
		fields := []zap.Field{zap.Int64(logger.FieldCandidateID, summary.Candidate.ID), zap.Error(err)}
		if notify.IsNotificationError(err) {
			// Some recipients may still have been reached.
			m.logger.Warn("operator notification incomplete", fields...)
			return
		}
		m.logger.Error("operator notification failed", fields...)
	}()
}
