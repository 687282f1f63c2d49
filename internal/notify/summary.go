package notify

import (
	"fmt"
	"strings"

	"interview-screening-bot/internal/scoring"
	"interview-screening-bot/internal/storage"
)

const (
	// MaxSummaryLength is the size above which the short summary is sent instead.
	MaxSummaryLength = 4000
	answerPreviewLen = 100
)

// Summary is what operators receive when an interview completes.
type Summary struct {
	Candidate storage.Candidate
	Responses []storage.Response
	MaxScore  int
	// Focus maps a question ID to the exercise categories it targets.
	Focus map[string][]string
}

// RiskNote classifies a session risk score for operators.
func RiskNote(risk int) string {
	switch {
	case risk <= 3:
		return "Low risk."
	case risk <= 6:
		return "Moderate risk."
	default:
		return "High risk."
	}
}

// Assessment is the operator-facing evaluation sentence for a decision.
func Assessment(s Summary) string {
	c := s.Candidate
	pct := 0.0
	if s.MaxScore > 0 {
		pct = float64(c.Score) / float64(s.MaxScore) * 100
	}
	scoreLine := fmt.Sprintf("Score: %d/%d (%.1f%%). %s", c.Score, s.MaxScore, pct, RiskNote(c.RiskScore))

	switch c.Decision {
	case scoring.Approved:
		return "Candidate demonstrates strong emotional control, escalation skills, and monetization understanding. " +
			scoreLine + " Recommend onboarding and training."
	case scoring.Borderline:
		return "Candidate shows good potential but needs training in pacing or rebuttals. " +
			scoreLine + " Consider for future opportunities after additional training."
	default:
		return "Candidate lacks control, realism, or monetization logic. " + scoreLine
	}
}

func header(s Summary) string {
	c := s.Candidate
	username := c.Username
	if username == "" {
		username = "N/A"
	}

	var b strings.Builder
	b.WriteString("📋 Interview Evaluation\n\n")
	fmt.Fprintf(&b, "Candidate: %s\n", c.DisplayName())
	fmt.Fprintf(&b, "Username: @%s\n", username)
	fmt.Fprintf(&b, "User ID: %d\n", c.ID)
	fmt.Fprintf(&b, "Decision: %s\n", c.Decision)
	fmt.Fprintf(&b, "Score: %d\n", c.Score)
	fmt.Fprintf(&b, "Risk Assessment: %s (%d/%d)\n\n", RiskNote(c.RiskScore), c.RiskScore, scoring.MaxRisk)
	fmt.Fprintf(&b, "Feedback:\n%s", Assessment(s))
	return b.String()
}

// BuildSummary renders the full operator message, including every response.
func BuildSummary(s Summary) string {
	var b strings.Builder
	b.WriteString(header(s))
	b.WriteString("\n\n📝 Responses:\n")
	for _, r := range s.Responses {
		fmt.Fprintf(&b, "\nQ%d: %s\n", r.Ordinal, r.QuestionText)
		if focus := s.Focus[r.QuestionID]; len(focus) > 0 {
			fmt.Fprintf(&b, "Focus: %s\n", strings.Join(focus, ", "))
		}
		fmt.Fprintf(&b, "A: %s\n", preview(r.AnswerText, answerPreviewLen))
		fmt.Fprintf(&b, "Response time: %.1fs\n", r.Elapsed.Seconds())
	}
	return b.String()
}

// BuildShortSummary omits responses and points at the results report.
func BuildShortSummary(s Summary) string {
	return header(s) + "\n\nSee detailed responses with the results command or the read API."
}

// Message picks the full summary unless it is too long for a single send.
func Message(s Summary) string {
	if full := BuildSummary(s); len([]rune(full)) <= MaxSummaryLength {
		return full
	}
	return BuildShortSummary(s)
}

func preview(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
