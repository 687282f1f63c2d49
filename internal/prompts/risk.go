package prompts

import (
	"fmt"
	"strings"
	"time"
)

// RiskInstruction is the system instruction for per-answer risk scoring.
const RiskInstruction = `You review answers from a chat-operator job interview.
Rate how likely the answer was produced by an AI assistant or copied from a template
instead of written by the candidate. Reply with JSON only: {"risk": <integer 0-10>, "reason": "<short>"}.
0 means clearly human and natural, 10 means certainly generated.`

// maxAnswerRunes bounds the answer text sent to the model.
const maxAnswerRunes = 2000

// GenerateRiskPrompt renders one question and answer for the model.
func GenerateRiskPrompt(question, answer string, elapsed time.Duration) string {
	answer = strings.TrimSpace(answer)
	if r := []rune(answer); len(r) > maxAnswerRunes {
		answer = string(r[:maxAnswerRunes]) + " [truncated]"
	}
	return fmt.Sprintf("Question: %s\nAnswer: %s\nSeconds taken to answer: %.1f",
		strings.TrimSpace(question), answer, elapsed.Seconds())
}
