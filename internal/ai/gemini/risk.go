package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"interview-screening-bot/internal/prompts"
	"interview-screening-bot/internal/questions"
	"interview-screening-bot/internal/scoring"
)

// TextGenerator is the part of Generator the assessor needs.
type TextGenerator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
}

// RiskAssessor asks the model for a 0..10 risk score per answer.
type RiskAssessor struct {
	gen TextGenerator
}

func NewRiskAssessor(gen TextGenerator) *RiskAssessor {
	return &RiskAssessor{gen: gen}
}

func (r *RiskAssessor) AssessRisk(ctx context.Context, q questions.Question, a scoring.Answer) (int, error) {
	prompt := prompts.GenerateRiskPrompt(q.Text, a.Text, a.Elapsed)

	reply, err := r.gen.GenerateContent(ctx, prompts.RiskInstruction, prompt)
	if err != nil {
		return 0, err
	}
	return parseRisk(reply)
}

// parseRisk reads the risk field, tolerating markdown code fences around the JSON.
func parseRisk(reply string) (int, error) {
	body := strings.TrimSpace(reply)
	if start, end := strings.Index(body, "{"), strings.LastIndex(body, "}"); start >= 0 && end > start {
		body = body[start : end+1]
	}
	if !gjson.Valid(body) {
		return 0, fmt.Errorf("risk reply is not json: %q", reply)
	}

	v := gjson.Get(body, "risk")
	if !v.Exists() || (v.Type != gjson.Number && v.Type != gjson.String) {
		return 0, fmt.Errorf("risk reply has no numeric risk: %q", reply)
	}
	return scoring.ClampRisk(int(v.Int())), nil
}
