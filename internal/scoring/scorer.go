package scoring

import (
	"context"

	"interview-screening-bot/internal/logger"
	"interview-screening-bot/internal/questions"

	"go.uber.org/zap"
)

// Result is the outcome of scoring a single answer.
type Result struct {
	Rubric Rubric
	Risk   int
}

// Scorer scores one answer to one question.
type Scorer interface {
	Score(ctx context.Context, q questions.Question, a Answer) Result
}

// RubricScorer applies the keyword rubric and delegates the risk score to an assessor.
// When the assessor fails the heuristic risk is used instead.
type RubricScorer struct {
	risk       RiskAssessor
	logger     *zap.Logger
	onFallback func()
}

// NewRubricScorer returns a scorer. A nil assessor means the heuristic alone.
func NewRubricScorer(risk RiskAssessor, l *zap.Logger) *RubricScorer {
	if risk == nil {
		risk = HeuristicRisk{}
	}
	return &RubricScorer{risk: risk, logger: logger.OrNop(l)}
}

// OnFallback registers fn to run each time the assessor fails.
func (s *RubricScorer) OnFallback(fn func()) *RubricScorer {
	s.onFallback = fn
	return s
}

func (s *RubricScorer) Score(ctx context.Context, q questions.Question, a Answer) Result {
	res := Result{Rubric: EvaluateRubric(a.Text)}

	risk, err := s.risk.AssessRisk(ctx, q, a)
	if err != nil {
		s.logger.Warn("risk assessor failed, using heuristic",
			zap.String("question_id", q.ID),
			zap.Error(err),
		)
		risk = heuristicRisk(a)
		if s.onFallback != nil {
			s.onFallback()
		}
	}
	res.Risk = ClampRisk(risk)

	return res
}
