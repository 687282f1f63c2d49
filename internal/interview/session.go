package interview

import (
	"time"

	"interview-screening-bot/internal/questions"
	"interview-screening-bot/internal/scoring"
	"interview-screening-bot/internal/storage"
)

// Session is the in-memory progress of one candidate. It is only read or
// written while the candidate's key is locked.
type Session struct {
	ID          string
	CandidateID int64
	Username    string
	Name        string
	Admin       bool
	State       State
	// Questions is a snapshot taken when the name was accepted.
	Questions []questions.Question
	Responses []storage.Response
	Results   []scoring.Result
	StartedAt time.Time
	// AskedAt is when the current question was sent.
	AskedAt time.Time
}

func (s *Session) current() questions.Question {
	return s.Questions[s.State.Question()-1]
}

// dropLast undoes the final answer so the same question can be answered again.
func (s *Session) dropLast() {
	n := len(s.Responses) - 1
	s.Responses = s.Responses[:n]
	s.Results = s.Results[:n]
	s.State = AwaitingAnswer(n + 1)
}
