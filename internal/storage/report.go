package storage

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	reportTimeLayout = "2006-01-02 15:04:05"
	reportRule       = 80
)

// ReportOptions controls the text rendering of stored interviews.
type ReportOptions struct {
	Filter Filter
	// Generated adds a "Generated:" line when non-zero.
	Generated time.Time
	// Detailed prints every response; otherwise one line per candidate.
	Detailed bool
}

// WriteReport renders records as the plain-text results report.
func WriteReport(w io.Writer, records []Record, opts ReportOptions) error {
	bw := bufio.NewWriter(w)
	rule := strings.Repeat("=", reportRule)

	if len(records) == 0 {
		fmt.Fprintf(bw, "No %s found.\n", emptyNoun(opts.Filter))
		return bw.Flush()
	}

	fmt.Fprintln(bw, rule)
	fmt.Fprintf(bw, "%s - %d %s\n", reportTitle(opts.Filter), len(records), countNoun(opts.Filter))
	if !opts.Generated.IsZero() {
		fmt.Fprintf(bw, "Generated: %s\n", opts.Generated.Format(reportTimeLayout))
	}
	fmt.Fprintln(bw, rule)

	for _, rec := range records {
		c := rec.Candidate
		if !opts.Detailed {
			fmt.Fprintf(bw, "\n%s (ID: %d) | Score: %d | Risk: %d | Completed: %s\n",
				c.DisplayName(), c.ID, c.Score, c.RiskScore, c.CompletedAt.Format(reportTimeLayout))
			continue
		}

		fmt.Fprintf(bw, "\n%s\n", rule)
		fmt.Fprintf(bw, "Candidate: %s\n", c.DisplayName())
		if c.Name != "" && c.Username != "" {
			fmt.Fprintf(bw, "Username: @%s\n", c.Username)
		}
		fmt.Fprintf(bw, "User ID: %d\n", c.ID)
		fmt.Fprintf(bw, "Completed: %s\n", c.CompletedAt.Format(reportTimeLayout))
		fmt.Fprintf(bw, "Decision: %s\n", c.Decision)
		fmt.Fprintf(bw, "Score: %d | Risk Score: %d\n", c.Score, c.RiskScore)
		fmt.Fprintln(bw, rule)

		if len(rec.Responses) == 0 {
			fmt.Fprintln(bw, "\nNo responses found for this candidate.")
			continue
		}
		fmt.Fprintln(bw, "\nRESPONSES:")
		for _, r := range rec.Responses {
			fmt.Fprintf(bw, "\n  Question %d: %s\n", r.Ordinal, r.QuestionText)
			fmt.Fprintf(bw, "  Response: %s\n", r.AnswerText)
			fmt.Fprintf(bw, "  Response Time: %.2f seconds\n", r.Elapsed.Seconds())
			fmt.Fprintf(bw, "  Timestamp: %s\n", r.Timestamp.Format(reportTimeLayout))
			fmt.Fprintln(bw, strings.Repeat("-", reportRule))
		}
	}
	return bw.Flush()
}

func reportTitle(f Filter) string {
	switch f {
	case FilterApproved:
		return "APPROVED CANDIDATES"
	case FilterRejected:
		return "REJECTED CANDIDATES"
	default:
		return "INTERVIEW RESULTS"
	}
}

func countNoun(f Filter) string {
	if f == FilterAll || f == "" {
		return "completed interview(s)"
	}
	return "candidate(s)"
}

func emptyNoun(f Filter) string {
	switch f {
	case FilterApproved:
		return "approved candidates"
	case FilterRejected:
		return "rejected candidates"
	default:
		return "completed interviews"
	}
}
