package storage

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"interview-screening-bot/internal/scoring"
)

// ErrNotFound is returned when no record exists for a candidate.
var ErrNotFound = errors.New("candidate not found")

// Candidate is the persisted outcome of one interview.
type Candidate struct {
	ID          int64            `json:"id"`
	Username    string           `json:"username,omitempty"`
	Name        string           `json:"name"`
	Score       int              `json:"score"`
	RiskScore   int              `json:"risk_score"`
	Decision    scoring.Decision `json:"decision"`
	Completed   bool             `json:"completed"`
	SessionID   string           `json:"session_id,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	CompletedAt time.Time        `json:"completed_at"`
}

// DisplayName prefers the given name, then the handle, then the id.
func (c Candidate) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.Username != "" {
		return "@" + c.Username
	}
	return "User " + strconv.FormatInt(c.ID, 10)
}

// Response is one answered question. Never edited after creation.
type Response struct {
	CandidateID  int64         `json:"candidate_id"`
	Ordinal      int           `json:"ordinal"`
	QuestionID   string        `json:"question_id,omitempty"`
	QuestionText string        `json:"question_text"`
	AnswerText   string        `json:"answer_text"`
	Elapsed      time.Duration `json:"elapsed"`
	Score        int           `json:"score"`
	RiskScore    int           `json:"risk_score"`
	Timestamp    time.Time     `json:"timestamp"`
}

// Record groups a candidate with its ordered responses.
type Record struct {
	Candidate Candidate  `json:"candidate"`
	Responses []Response `json:"responses"`
}

// Filter selects candidates for the results surface.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterApproved Filter = "approved"
	FilterRejected Filter = "rejected"
)

// ParseFilter accepts all, approved or rejected (case-insensitive). Empty means all.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterApproved, FilterRejected:
		return f, nil
	default:
		return "", fmt.Errorf("unknown filter %q (want all, approved or rejected)", s)
	}
}

// Matches reports whether a completed candidate passes the filter.
func (f Filter) Matches(c Candidate) bool {
	if !c.Completed {
		return false
	}
	switch f {
	case FilterApproved:
		return c.Decision == scoring.Approved
	case FilterRejected:
		return c.Decision == scoring.NotEligible
	default:
		return true
	}
}

// ValidateRecord checks that a record is complete before it is committed.
func ValidateRecord(c Candidate, responses []Response) error {
	if !c.Completed {
		return errors.New("candidate is not completed")
	}
	if !c.Decision.Final() {
		return fmt.Errorf("candidate decision %q is not final", c.Decision)
	}
	if len(responses) == 0 {
		return errors.New("no responses to commit")
	}
	for i, r := range responses {
		if r.CandidateID != c.ID {
			return fmt.Errorf("response %d belongs to candidate %d, not %d", r.Ordinal, r.CandidateID, c.ID)
		}
		if r.Ordinal != i+1 {
			return fmt.Errorf("response ordinals must be 1..%d in order, got %d at position %d", len(responses), r.Ordinal, i+1)
		}
	}
	return nil
}
