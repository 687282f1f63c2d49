package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps interview records in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to url and ensures the schema exists.
func OpenPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	if url == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema applies the embedded postgres migrations in one transaction.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	files, err := loadMigrations("postgres")
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, mf := range files {
		if _, err := tx.Exec(ctx, string(mf.data)); err != nil {
			return fmt.Errorf("exec migration %s: %w", mf.name, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Commit(ctx context.Context, c Candidate, responses []Response) error {
	if err := ValidateRecord(c, responses); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
INSERT INTO candidates (user_id, username, name, score, risk_score, decision, completed, session_id, created_at, completed_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (user_id) DO UPDATE SET
    username=EXCLUDED.username, name=EXCLUDED.name, score=EXCLUDED.score,
    risk_score=EXCLUDED.risk_score, decision=EXCLUDED.decision, completed=EXCLUDED.completed,
    session_id=EXCLUDED.session_id, created_at=EXCLUDED.created_at, completed_at=EXCLUDED.completed_at`,
		c.ID, c.Username, c.Name, c.Score, c.RiskScore, string(c.Decision), c.Completed,
		c.SessionID, c.CreatedAt, nullTime(c.CompletedAt))
	if err != nil {
		return fmt.Errorf("upsert candidate %d: %w", c.ID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM responses WHERE user_id = $1`, c.ID); err != nil {
		return fmt.Errorf("clear responses of %d: %w", c.ID, err)
	}

	batch := &pgx.Batch{}
	for _, r := range responses {
		batch.Queue(`
INSERT INTO responses (user_id, question_number, question_id, question_text, response_text, response_time_ms, score, risk_score, timestamp)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			r.CandidateID, r.Ordinal, r.QuestionID, r.QuestionText, r.AnswerText,
			r.Elapsed.Milliseconds(), r.Score, r.RiskScore, r.Timestamp)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert responses: %w", err)
	}

	return tx.Commit(ctx)
}

func scanPostgresCandidate(row pgx.Row) (Candidate, error) {
	var (
		c           Candidate
		decision    string
		completedAt *time.Time
	)
	if err := row.Scan(&c.ID, &c.Username, &c.Name, &c.Score, &c.RiskScore, &decision, &c.Completed,
		&c.SessionID, &c.CreatedAt, &completedAt); err != nil {
		return Candidate{}, err
	}
	c.Decision = decisionOf(decision)
	if completedAt != nil {
		c.CompletedAt = *completedAt
	}
	return c, nil
}

func (s *PostgresStore) Find(ctx context.Context, candidateID int64) (*Candidate, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE user_id = $1`, candidateID)
	c, err := scanPostgresCandidate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find candidate %d: %w", candidateID, err)
	}
	return &c, nil
}

func (s *PostgresStore) Query(ctx context.Context, f Filter) ([]Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE completed`
	var args []any
	switch f {
	case FilterApproved, FilterRejected:
		query += ` AND decision = $1`
		args = append(args, string(decisionForFilter(f)))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		c, err := scanPostgresCandidate(rows)
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

func (s *PostgresStore) Responses(ctx context.Context, candidateID int64) ([]Response, error) {
	rows, err := s.pool.Query(ctx, `
SELECT user_id, question_number, question_id, question_text, response_text, response_time_ms, score, risk_score, timestamp
FROM responses WHERE user_id = $1 ORDER BY question_number`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("query responses of %d: %w", candidateID, err)
	}
	defer rows.Close()

	var out []Response
	for rows.Next() {
		var (
			r         Response
			elapsedMS int64
		)
		if err := rows.Scan(&r.CandidateID, &r.Ordinal, &r.QuestionID, &r.QuestionText, &r.AnswerText,
			&elapsedMS, &r.Score, &r.RiskScore, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
