package scoring

// Decision is the final tier of a candidate.
type Decision string

const (
	Pending     Decision = "PENDING"
	Approved    Decision = "APPROVED"
	Borderline  Decision = "BORDERLINE"
	NotEligible Decision = "NOT ELIGIBLE"
)

// Decision thresholds. Boundaries are inclusive.
const (
	ApprovedMinScore   = 24
	ApprovedMaxRisk    = 6
	BorderlineMinScore = 18
	BorderlineMaxRisk  = 8
)

// Decide maps a session total and session risk to a tier. First match wins.
func Decide(totalScore, riskScore int) Decision {
	switch {
	case totalScore >= ApprovedMinScore && riskScore <= ApprovedMaxRisk:
		return Approved
	case totalScore >= BorderlineMinScore && riskScore <= BorderlineMaxRisk:
		return Borderline
	default:
		return NotEligible
	}
}

// Valid reports whether d is one of the known decisions.
func (d Decision) Valid() bool {
	switch d {
	case Pending, Approved, Borderline, NotEligible:
		return true
	}
	return false
}

// Final reports whether d is a terminal tier.
func (d Decision) Final() bool {
	return d == Approved || d == Borderline || d == NotEligible
}
