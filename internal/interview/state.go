package interview

import "fmt"

// Stage is the tag of a session State.
type Stage int

const (
	StageAwaitingName Stage = iota
	StageAwaitingAnswer
	StageScoring
	StageCompleted
)

func (s Stage) String() string {
	switch s {
	case StageAwaitingName:
		return "awaiting_name"
	case StageAwaitingAnswer:
		return "awaiting_answer"
	case StageScoring:
		return "scoring"
	case StageCompleted:
		return "completed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// State is a session's position in the interview. The question ordinal
// is only carried by AwaitingAnswer, so a completed state cannot point at a question.
type State struct {
	stage    Stage
	question int
}

func AwaitingName() State { return State{stage: StageAwaitingName} }

// AwaitingAnswer is the state of waiting for the answer to question k (1-based).
func AwaitingAnswer(k int) State {
	if k < 1 {
		panic(fmt.Sprintf("interview: question ordinal %d out of range", k))
	}
	return State{stage: StageAwaitingAnswer, question: k}
}

func Scoring() State   { return State{stage: StageScoring} }
func Completed() State { return State{stage: StageCompleted} }

func (s State) Stage() Stage { return s.stage }

// Question returns the ordinal being answered, or 0 outside AwaitingAnswer.
func (s State) Question() int { return s.question }

func (s State) String() string {
	if s.stage == StageAwaitingAnswer {
		return fmt.Sprintf("%s(%d)", s.stage, s.question)
	}
	return s.stage.String()
}
