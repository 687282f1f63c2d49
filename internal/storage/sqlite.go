package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is the default gateway, backed by a single database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", filepath.ToSlash(path))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer keeps commits serialized without SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	files, err := loadMigrations("sqlite")
	if err != nil {
		return err
	}
	for _, mf := range files {
		if len(mf.data) == 0 {
			continue
		}
		if _, err := s.db.ExecContext(ctx, string(mf.data)); err != nil {
			return fmt.Errorf("exec migration %s: %w", mf.name, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Commit(ctx context.Context, c Candidate, responses []Response) (err error) {
	if err := ValidateRecord(c, responses); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO candidates (user_id, username, name, score, risk_score, decision, completed, session_id, created_at, completed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    username=excluded.username, name=excluded.name, score=excluded.score,
    risk_score=excluded.risk_score, decision=excluded.decision, completed=excluded.completed,
    session_id=excluded.session_id, created_at=excluded.created_at, completed_at=excluded.completed_at`,
		c.ID, c.Username, c.Name, c.Score, c.RiskScore, string(c.Decision), boolToInt(c.Completed),
		c.SessionID, toUnixNano(c.CreatedAt), toUnixNano(c.CompletedAt))
	if err != nil {
		return fmt.Errorf("upsert candidate %d: %w", c.ID, err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM responses WHERE user_id = ?`, c.ID); err != nil {
		return fmt.Errorf("clear responses of %d: %w", c.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO responses (user_id, question_number, question_id, question_text, response_text, response_time_ms, score, risk_score, timestamp)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare response insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range responses {
		if _, err = stmt.ExecContext(ctx, r.CandidateID, r.Ordinal, r.QuestionID, r.QuestionText, r.AnswerText,
			r.Elapsed.Milliseconds(), r.Score, r.RiskScore, toUnixNano(r.Timestamp)); err != nil {
			return fmt.Errorf("insert response %d: %w", r.Ordinal, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const candidateColumns = `user_id, username, name, score, risk_score, decision, completed, session_id, created_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteCandidate(row rowScanner) (Candidate, error) {
	var (
		c                      Candidate
		decision               string
		completed              int
		createdAt, completedAt int64
	)
	if err := row.Scan(&c.ID, &c.Username, &c.Name, &c.Score, &c.RiskScore, &decision, &completed,
		&c.SessionID, &createdAt, &completedAt); err != nil {
		return Candidate{}, err
	}
	c.Decision = decisionOf(decision)
	c.Completed = completed != 0
	c.CreatedAt = fromUnixNano(createdAt)
	c.CompletedAt = fromUnixNano(completedAt)
	return c, nil
}

func (s *SQLiteStore) Find(ctx context.Context, candidateID int64) (*Candidate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE user_id = ?`, candidateID)
	c, err := scanSQLiteCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find candidate %d: %w", candidateID, err)
	}
	return &c, nil
}

func (s *SQLiteStore) Query(ctx context.Context, f Filter) ([]Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE completed = 1`
	var args []any
	switch f {
	case FilterApproved, FilterRejected:
		query += ` AND decision = ?`
		args = append(args, string(decisionForFilter(f)))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		c, err := scanSQLiteCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortCandidates(out, f)
	return out, nil
}

func (s *SQLiteStore) Responses(ctx context.Context, candidateID int64) ([]Response, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT user_id, question_number, question_id, question_text, response_text, response_time_ms, score, risk_score, timestamp
FROM responses WHERE user_id = ? ORDER BY question_number`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("query responses of %d: %w", candidateID, err)
	}
	defer rows.Close()

	var out []Response
	for rows.Next() {
		var (
			r         Response
			elapsedMS int64
			ts        int64
		)
		if err := rows.Scan(&r.CandidateID, &r.Ordinal, &r.QuestionID, &r.QuestionText, &r.AnswerText,
			&elapsedMS, &r.Score, &r.RiskScore, &ts); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		r.Timestamp = fromUnixNano(ts)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
