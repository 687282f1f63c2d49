package storage

import "interview-screening-bot/internal/scoring"

// decisionOf maps a stored label back to a decision; unknown labels read as pending.
func decisionOf(s string) scoring.Decision {
	d := scoring.Decision(s)
	if !d.Valid() {
		return scoring.Pending
	}
	return d
}

func decisionForFilter(f Filter) scoring.Decision {
	switch f {
	case FilterApproved:
		return scoring.Approved
	case FilterRejected:
		return scoring.NotEligible
	default:
		return ""
	}
}
