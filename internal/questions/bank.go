package questions

import (
	"errors"
	"fmt"
	"strings"
)

// Question is one entry of the interview pool. Entries never change after the bank is built.
type Question struct {
	ID        string   `yaml:"id" json:"id"`
	Text      string   `yaml:"text" json:"text"`
	Topic     string   `yaml:"topic" json:"topic,omitempty"`
	Exercises []string `yaml:"exercises" json:"exercises,omitempty"`
}

// Bank is the static question pool.
type Bank struct {
	order []string
	byID  map[string]Question
}

// NewBank validates the entries and builds an immutable bank.
func NewBank(entries []Question) (*Bank, error) {
	if len(entries) == 0 {
		return nil, errors.New("question bank is empty")
	}

	b := &Bank{
		order: make([]string, 0, len(entries)),
		byID:  make(map[string]Question, len(entries)),
	}

	for i, q := range entries {
		id := strings.TrimSpace(q.ID)
		if id == "" {
			return nil, fmt.Errorf("question %d has no id", i)
		}
		if strings.TrimSpace(q.Text) == "" {
			return nil, fmt.Errorf("question %q has no text", id)
		}
		if _, dup := b.byID[id]; dup {
			return nil, fmt.Errorf("duplicate question id %q", id)
		}

		q.ID = id
		q.Exercises = append([]string(nil), q.Exercises...)
		b.byID[id] = q
		b.order = append(b.order, id)
	}

	return b, nil
}

// Len returns the pool size.
func (b *Bank) Len() int {
	return len(b.order)
}

// IDs returns the question ids in declaration order.
func (b *Bank) IDs() []string {
	return append([]string(nil), b.order...)
}

// Get returns a copy of the question with the given id.
func (b *Bank) Get(id string) (Question, bool) {
	q, ok := b.byID[id]
	if !ok {
		return Question{}, false
	}
	q.Exercises = append([]string(nil), q.Exercises...)
	return q, true
}
