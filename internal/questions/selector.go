package questions

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
)

// PerInterview is the number of questions asked in one interview. The
// decision thresholds assume exactly this many.
const PerInterview = 5

// ErrPoolExhausted is matched by InsufficientPoolError.
var ErrPoolExhausted = errors.New("question pool exhausted")

// InsufficientPoolError reports a pool smaller than the requested sample.
type InsufficientPoolError struct {
	Pool int
	Need int
}

func (e *InsufficientPoolError) Error() string {
	return fmt.Sprintf("question pool has %d entries, %d required", e.Pool, e.Need)
}

func (e *InsufficientPoolError) Is(target error) bool {
	return target == ErrPoolExhausted
}

// Select draws n distinct ids from pool, uniformly and without replacement.
// The pool slice is not modified.
func Select(pool []string, n int, rng *rand.Rand) ([]string, error) {
	if n < 0 {
		return nil, fmt.Errorf("sample size must not be negative, got %d", n)
	}
	if len(pool) < n {
		return nil, &InsufficientPoolError{Pool: len(pool), Need: n}
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}

	work := append([]string(nil), pool...)

	// partial Fisher-Yates: the first n slots end up as the sample
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(work)-i)
		work[i], work[j] = work[j], work[i]
	}

	return work[:n], nil
}

// Selector draws interview question sets from a bank. Safe for concurrent use.
type Selector struct {
	bank *Bank
	n    int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector fails with ErrPoolExhausted when the bank cannot fill one interview.
func NewSelector(bank *Bank, n int, rng *rand.Rand) (*Selector, error) {
	if bank == nil {
		return nil, errors.New("question bank is required")
	}
	if n <= 0 {
		return nil, fmt.Errorf("questions per interview must be positive, got %d", n)
	}
	if bank.Len() < n {
		return nil, &InsufficientPoolError{Pool: bank.Len(), Need: n}
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}

	return &Selector{bank: bank, n: n, rng: rng}, nil
}

// PerInterview returns the sample size.
func (s *Selector) PerInterview() int {
	return s.n
}

// Next returns a fresh ordered question set. Questions are copies, so later pool edits never reach a session.
func (s *Selector) Next() ([]Question, error) {
	s.mu.Lock()
	ids, err := Select(s.bank.order, s.n, s.rng)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]Question, 0, len(ids))
	for _, id := range ids {
		q, _ := s.bank.Get(id)
		out = append(out, q)
	}
	return out, nil
}
