package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/suneung/internal/problem"
)

// sequenceCounter manages the global monotonic sequence number shared across
// all event tables. LLM calls and state transitions live in separate tables,
// so per-table auto-increment IDs can't order them against each other. The
// shared counter gives every event a single increasing sequence, which lets
// `llm view` and `records view` interleave a candidate's calls with its
// transitions.
//
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo on top of the ent SQL builder and the
// global sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func (r *eventRepo) AppendTransition(ctx context.Context, data TransitionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	query, args := builder().
		Insert(tablePipeline).
		Columns("sequence", "timestamp", "candidate_id", "from_status", "to_status", "revision", "reason").
		Values(seqNum, time.Now().UTC(), data.CandidateID, string(data.From), string(data.To), data.Revision, data.Reason).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save transition event: %w", err)
	}
	return nil
}

func (r *eventRepo) Transitions(ctx context.Context, candidateID string) ([]TransitionEvent, error) {
	query, args := builder().
		Select("sequence", "timestamp", "candidate_id", "from_status", "to_status", "revision", "reason").
		From(entsql.Table(tablePipeline)).
		Where(entsql.EQ("candidate_id", candidateID)).
		OrderBy("sequence").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var out []TransitionEvent
	for rows.Next() {
		var (
			e        TransitionEvent
			from, to string
		)
		if err := rows.Scan(&e.Sequence, &e.Timestamp, &e.CandidateID, &from, &to, &e.Revision, &e.Reason); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		e.From = problem.Status(from)
		e.To = problem.Status(to)
		out = append(out, e)
	}
	return out, rows.Err()
}
