package interview

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"testing"
	"time"

	"interview-screening-bot/internal/metrics"
	"interview-screening-bot/internal/notify"
	"interview-screening-bot/internal/questions"
	"interview-screening-bot/internal/scoring"
	"interview-screening-bot/internal/storage"
)

const (
	candidateID int64 = 1001
	adminID     int64 = 9
)

type adminSet map[int64]bool

func (a adminSet) Contains(id int64) bool { return a[id] }

func (a adminSet) IDs() []int64 {
	ids := make([]int64, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fixedScorer gives every answer the same rubric points and risk.
type fixedScorer struct {
	mu      sync.Mutex
	perAns  int
	risk    int
	seen    []scoring.Answer
	askedID []string
}

func (s *fixedScorer) Score(_ context.Context, q questions.Question, a scoring.Answer) scoring.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, a)
	s.askedID = append(s.askedID, q.ID)

	var r scoring.Rubric
	left := s.perAns
	for c := range r {
		r[c] = min(left, scoring.MaxCategoryPoints)
		left -= r[c]
	}
	return scoring.Result{Rubric: r, Risk: s.risk}
}

type memStore struct {
	mu        sync.Mutex
	records   map[int64]storage.Record
	commitErr error
	findErr   error
	commits   int
}

func newMemStore() *memStore {
	return &memStore{records: make(map[int64]storage.Record)}
}

func (s *memStore) Commit(_ context.Context, c storage.Candidate, rs []storage.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits++
	if s.commitErr != nil {
		return s.commitErr
	}
	if err := storage.ValidateRecord(c, rs); err != nil {
		return err
	}
	s.records[c.ID] = storage.Record{Candidate: c, Responses: append([]storage.Response(nil), rs...)}
	return nil
}

func (s *memStore) Find(_ context.Context, id int64) (*storage.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	rec, ok := s.records[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := rec.Candidate
	return &c, nil
}

func (s *memStore) Query(_ context.Context, f storage.Filter) ([]storage.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []storage.Candidate
	for _, rec := range s.records {
		if f.Matches(rec.Candidate) {
			out = append(out, rec.Candidate)
		}
	}
	return out, nil
}

func (s *memStore) Responses(_ context.Context, id int64) ([]storage.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id].Responses, nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) commitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

type notification struct {
	recipients []int64
	summary    notify.Summary
}

type chanNotifier struct {
	ch  chan notification
	err error
}

func (n *chanNotifier) Notify(_ context.Context, recipients []int64, s notify.Summary) error {
	n.ch <- notification{recipients: recipients, summary: s}
	return n.err
}

type harness struct {
	mgr      *Manager
	store    *memStore
	scorer   *fixedScorer
	notifier *chanNotifier
	clock    *fakeClock
	metrics  *metrics.Metrics
}

func testBank(t *testing.T, size int) *questions.Bank {
	t.Helper()
	qs := make([]questions.Question, size)
	for i := range qs {
		qs[i] = questions.Question{
			ID:        fmt.Sprintf("q%02d", i+1),
			Text:      fmt.Sprintf("Question number %d?", i+1),
			Topic:     "general",
			Exercises: []string{"control"},
		}
	}
	bank, err := questions.NewBank(qs)
	if err != nil {
		t.Fatalf("NewBank() error = %v", err)
	}
	return bank
}

func newHarness(t *testing.T, perAnswer, risk int) *harness {
	t.Helper()
	sel, err := questions.NewSelector(testBank(t, 12), questions.PerInterview, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatalf("NewSelector() error = %v", err)
	}

	h := &harness{
		store:    newMemStore(),
		scorer:   &fixedScorer{perAns: perAnswer, risk: risk},
		notifier: &chanNotifier{ch: make(chan notification, 8)},
		clock:    &fakeClock{now: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)},
		metrics:  metrics.NewMetrics(),
	}
	h.mgr, err = NewManager(Options{
		Questions: sel,
		Scorer:    h.scorer,
		Store:     h.store,
		Notifier:  h.notifier,
		Admins:    adminSet{adminID: true, 10: true},
		Metrics:   h.metrics,
		Now:       h.clock.Now,
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return h
}

func (h *harness) send(t *testing.T, id int64, ev Event) Effect {
	t.Helper()
	eff, err := h.mgr.HandleEvent(context.Background(), id, ev)
	if err != nil {
		t.Fatalf("HandleEvent(%T) error = %v", ev, err)
	}
	return eff
}

// runInterview starts, names and answers every question for id.
func (h *harness) runInterview(t *testing.T, id int64) Effect {
	t.Helper()
	if eff := h.send(t, id, StartCommand{Username: "cand"}); eff.Kind != EffectPrompt {
		t.Fatalf("start effect = %s, want prompt", eff.Kind)
	}
	if eff := h.send(t, id, TextMessage{Text: "Lena"}); eff.Kind != EffectPrompt {
		t.Fatalf("name effect = %s, want prompt", eff.Kind)
	}
	var eff Effect
	for k := 1; k <= questions.PerInterview; k++ {
		h.clock.Advance(time.Duration(k) * 10 * time.Second)
		eff = h.send(t, id, TextMessage{Text: fmt.Sprintf("answer %d", k)})
	}
	return eff
}
