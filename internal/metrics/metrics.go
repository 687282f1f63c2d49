package metrics

import (
	"sync"
	"time"

	"interview-screening-bot/internal/scoring"
)

// Metrics holds process-wide interview counters.
type Metrics struct {
	mu                   sync.RWMutex
	interviewsStarted    int64
	interviewsCompleted  int64
	questionsAsked       int64
	answersRejected      int64
	decisions            map[scoring.Decision]int64
	persistenceFailures  int64
	notificationFailures int64
	riskFallbacks        int64
	lastUpdateTime       time.Time
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	InterviewsStarted    int64            `json:"interviews_started"`
	InterviewsCompleted  int64            `json:"interviews_completed"`
	QuestionsAsked       int64            `json:"questions_asked"`
	AnswersRejected      int64            `json:"answers_rejected"`
	Decisions            map[string]int64 `json:"decisions"`
	PersistenceFailures  int64            `json:"persistence_failures"`
	NotificationFailures int64            `json:"notification_failures"`
	RiskFallbacks        int64            `json:"risk_fallbacks"`
	LastUpdateTime       time.Time        `json:"last_update_time"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		decisions:      make(map[scoring.Decision]int64),
		lastUpdateTime: time.Now(),
	}
}

func (m *Metrics) bump(counter *int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*counter++
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) IncrementInterviewsStarted() {
	if m != nil {
		m.bump(&m.interviewsStarted)
	}
}

func (m *Metrics) IncrementQuestionsAsked() {
	if m != nil {
		m.bump(&m.questionsAsked)
	}
}

func (m *Metrics) IncrementAnswersRejected() {
	if m != nil {
		m.bump(&m.answersRejected)
	}
}

func (m *Metrics) IncrementPersistenceFailures() {
	if m != nil {
		m.bump(&m.persistenceFailures)
	}
}

func (m *Metrics) IncrementNotificationFailures() {
	if m != nil {
		m.bump(&m.notificationFailures)
	}
}

func (m *Metrics) IncrementRiskFallbacks() {
	if m != nil {
		m.bump(&m.riskFallbacks)
	}
}

// RecordCompletion counts a committed interview and its decision tier.
func (m *Metrics) RecordCompletion(d scoring.Decision) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interviewsCompleted++
	m.decisions[d]++
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	decisions := make(map[string]int64, len(m.decisions))
	for d, n := range m.decisions {
		decisions[string(d)] = n
	}
	return Snapshot{
		InterviewsStarted:    m.interviewsStarted,
		InterviewsCompleted:  m.interviewsCompleted,
		QuestionsAsked:       m.questionsAsked,
		AnswersRejected:      m.answersRejected,
		Decisions:            decisions,
		PersistenceFailures:  m.persistenceFailures,
		NotificationFailures: m.notificationFailures,
		RiskFallbacks:        m.riskFallbacks,
		LastUpdateTime:       m.lastUpdateTime,
	}
}
