package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Gateway is the durable store of completed interviews.
type Gateway interface {
	// Commit stores the candidate and all of its responses atomically, replacing any earlier record.
	Commit(ctx context.Context, c Candidate, responses []Response) error
	// Find returns the stored candidate or ErrNotFound.
	Find(ctx context.Context, candidateID int64) (*Candidate, error)
	// Query returns completed candidates matching the filter.
	Query(ctx context.Context, f Filter) ([]Candidate, error)
	// Responses returns the candidate's responses ordered by ordinal.
	Responses(ctx context.Context, candidateID int64) ([]Response, error)
	Close() error
}

// Options selects and configures a Gateway implementation.
type Options struct {
	Driver      string
	SQLitePath  string
	DatabaseURL string
	ResultsDir  string
}

// Open builds the gateway named by opts.Driver: sqlite (default), postgres or file.
func Open(ctx context.Context, opts Options) (Gateway, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", "sqlite":
		return OpenSQLite(ctx, opts.SQLitePath)
	case "postgres":
		return OpenPostgres(ctx, opts.DatabaseURL)
	case "file":
		return NewFileStore(opts.ResultsDir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}

// sortCandidates orders results the way the report lists them:
// newest first for all, best score first for the decision filters.
func sortCandidates(cs []Candidate, f Filter) {
	sort.SliceStable(cs, func(i, j int) bool {
		if f != FilterAll && cs[i].Score != cs[j].Score {
			return cs[i].Score > cs[j].Score
		}
		return cs[i].CompletedAt.After(cs[j].CompletedAt)
	})
}

// LoadRecords fetches candidates for the filter together with their responses.
func LoadRecords(ctx context.Context, gw Gateway, f Filter) ([]Record, error) {
	candidates, err := gw.Query(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}

	records := make([]Record, 0, len(candidates))
	for _, c := range candidates {
		responses, err := gw.Responses(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("load responses of %d: %w", c.ID, err)
		}
		records = append(records, Record{Candidate: c, Responses: responses})
	}
	return records, nil
}
