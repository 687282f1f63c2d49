package logger

import "go.uber.org/zap"

const (
	// FieldCandidateID is the structured log field key for the chat user id of a candidate.
	FieldCandidateID = "candidate_id"
	// FieldSessionID is the structured log field key for an interview session id.
	FieldSessionID = "session_id"
)

// CandidateFields returns the fields that identify a candidate and, when known, its session.
func CandidateFields(candidateID int64, sessionID string) []zap.Field {
	fields := []zap.Field{zap.Int64(FieldCandidateID, candidateID)}
	if sessionID != "" {
		fields = append(fields, zap.String(FieldSessionID, sessionID))
	}
	return fields
}

// ForCandidate attaches candidate fields to the logger. A nil logger yields a no-op logger.
func ForCandidate(l *zap.Logger, candidateID int64, sessionID string) *zap.Logger {
	return OrNop(l).With(CandidateFields(candidateID, sessionID)...)
}
