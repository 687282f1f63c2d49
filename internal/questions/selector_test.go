package questions

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"testing"
)

func pool(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("q%02d", i)
	}
	return ids
}

func TestSelectDistinctAndSized(t *testing.T) {
	t.Parallel()

	ids := pool(12)
	for seed := uint64(0); seed < 200; seed++ {
		got, err := Select(ids, 5, rand.New(rand.NewPCG(seed, 1)))
		if err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}
		if len(got) != 5 {
			t.Fatalf("seed %d: expected 5 ids, got %d", seed, len(got))
		}
		seen := map[string]bool{}
		for _, id := range got {
			if seen[id] {
				t.Fatalf("seed %d: duplicate id %s in %v", seed, id, got)
			}
			if !slices.Contains(ids, id) {
				t.Fatalf("seed %d: id %s not in pool", seed, id)
			}
			seen[id] = true
		}
	}
}

func TestSelectDeterministicForSeed(t *testing.T) {
	t.Parallel()

	ids := pool(20)
	a, _ := Select(ids, 5, rand.New(rand.NewPCG(42, 7)))
	b, _ := Select(ids, 5, rand.New(rand.NewPCG(42, 7)))
	if !slices.Equal(a, b) {
		t.Fatalf("expected identical samples for the same seed, got %v and %v", a, b)
	}
}

func TestSelectDoesNotMutatePool(t *testing.T) {
	t.Parallel()

	ids := pool(8)
	before := slices.Clone(ids)
	if _, err := Select(ids, 5, rand.New(rand.NewPCG(3, 3))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(ids, before) {
		t.Fatalf("pool was modified: %v", ids)
	}
}

func TestSelectUniform(t *testing.T) {
	t.Parallel()

	const (
		size   = 10
		n      = 5
		trials = 20000
	)

	ids := pool(size)
	counts := map[string]int{}
	for seed := uint64(0); seed < trials; seed++ {
		got, err := Select(ids, n, rand.New(rand.NewPCG(seed, seed*31+1)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, id := range got {
			counts[id]++
		}
	}

	expected := float64(trials*n) / size
	for _, id := range ids {
		dev := math.Abs(float64(counts[id])-expected) / expected
		if dev > 0.05 {
			t.Fatalf("id %s selected %d times, expected about %.0f", id, counts[id], expected)
		}
	}
}

func TestSelectInsufficientPool(t *testing.T) {
	t.Parallel()

	_, err := Select(pool(4), 5, rand.New(rand.NewPCG(1, 1)))
	if !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}

	var poolErr *InsufficientPoolError
	if !errors.As(err, &poolErr) || poolErr.Pool != 4 || poolErr.Need != 5 {
		t.Fatalf("unexpected error details: %v", err)
	}
}

func testBank(t *testing.T, n int) *Bank {
	t.Helper()

	entries := make([]Question, n)
	for i := range entries {
		entries[i] = Question{ID: fmt.Sprintf("q%02d", i), Text: fmt.Sprintf("question %d", i)}
	}
	bank, err := NewBank(entries)
	if err != nil {
		t.Fatalf("build bank: %v", err)
	}
	return bank
}

func TestNewSelectorPoolExhaustion(t *testing.T) {
	t.Parallel()

	_, err := NewSelector(testBank(t, 4), 5, rand.New(rand.NewPCG(1, 2)))
	if !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
}

func TestSelectorNextReturnsSnapshots(t *testing.T) {
	t.Parallel()

	bank := testBank(t, 9)
	sel, err := NewSelector(bank, 5, rand.New(rand.NewPCG(9, 9)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	qs, err := sel.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(qs))
	}
	for _, q := range qs {
		orig, ok := bank.Get(q.ID)
		if !ok || orig.Text != q.Text {
			t.Fatalf("question %s does not match bank entry", q.ID)
		}
	}
}

func TestNewBankValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entries []Question
	}{
		{name: "empty", entries: nil},
		{name: "missing id", entries: []Question{{Text: "x"}}},
		{name: "missing text", entries: []Question{{ID: "a"}}},
		{name: "duplicate id", entries: []Question{{ID: "a", Text: "x"}, {ID: " a ", Text: "y"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewBank(tt.entries); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
