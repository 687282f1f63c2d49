package scoring

import (
	"context"
	"strings"
	"time"

	"interview-screening-bot/internal/questions"
)

// MaxRisk is the ceiling of a risk score.
const MaxRisk = 10

// Answer is the scorer input for one reply.
type Answer struct {
	Text    string
	Elapsed time.Duration
}

// RiskAssessor produces the auxiliary 0..10 risk score for one answer.
type RiskAssessor interface {
	AssessRisk(ctx context.Context, q questions.Question, a Answer) (int, error)
}

// HeuristicRisk flags answers that read like generated or pasted text.
type HeuristicRisk struct{}

func (HeuristicRisk) AssessRisk(_ context.Context, _ questions.Question, a Answer) (int, error) {
	return heuristicRisk(a), nil
}

func heuristicRisk(a Answer) int {
	text := a.Text
	lower := strings.ToLower(text)
	words := len(strings.Fields(text))

	risk := 0

	if strings.Count(text, ",") > 6 {
		risk += 2
	}
	if strings.Count(text, ".") > 7 {
		risk++
	}

	if countContaining(lower, "i understand", "i appreciate", "i would be happy", "thank you for") >= 2 {
		risk += 2
	}

	if uniformSentences(text) {
		risk += 2
	}

	if words > 15 && !containsAny(lower, contractions...) {
		risk++
	}

	if countContaining(lower, "certainly", "absolutely", "furthermore", "moreover", "additionally") >= 2 {
		risk += 2
	}

	if a.Elapsed < time.Second {
		risk++
	}

	if words > 100 {
		risk++
	}

	return ClampRisk(risk)
}

// uniformSentences reports more than three sentences whose word counts barely vary.
func uniformSentences(text string) bool {
	split := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	lengths := make([]float64, 0, len(split))
	for _, s := range split {
		if s = strings.TrimSpace(s); s != "" {
			lengths = append(lengths, float64(len(strings.Fields(s))))
		}
	}
	if len(lengths) <= 3 {
		return false
	}

	var sum float64
	for _, l := range lengths {
		sum += l
	}
	mean := sum / float64(len(lengths))

	var variance float64
	for _, l := range lengths {
		variance += (l - mean) * (l - mean)
	}
	variance /= float64(len(lengths))

	return variance < 3
}

// ClampRisk bounds v to [0, MaxRisk].
func ClampRisk(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxRisk {
		return MaxRisk
	}
	return v
}

// AggregateRisk is the session risk: the maximum of the per-answer scores.
func AggregateRisk(results []Result) int {
	risk := 0
	for _, r := range results {
		if r.Risk > risk {
			risk = r.Risk
		}
	}
	return risk
}

// TotalScore sums the rubric totals of all answers.
func TotalScore(results []Result) int {
	total := 0
	for _, r := range results {
		total += r.Rubric.Total()
	}
	return total
}
