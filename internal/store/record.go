package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/suneung/internal/problem"
)

// recordRepo implements RecordRepo. The record JSON is the source of truth;
// the other columns are projections used for filtering.
type recordRepo struct {
	db *sql.DB
}

func (r *recordRepo) Save(ctx context.Context, rec problem.Record) error {
	data, err := problem.MarshalRecord(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.ID, err)
	}

	var (
		grade problem.Grade
		score int
	)
	if rec.DifficultyAnalysis != nil {
		grade = rec.DifficultyAnalysis.Grade
		score = rec.DifficultyAnalysis.Score
	}

	now := time.Now().UTC()
	query, args := builder().
		Insert(tableCandidates).
		Columns("id", "created_at", "updated_at", "status", "track", "tier", "format",
			"category", "grade", "score", "revision_count", "schema_version", "record").
		Values(rec.ID, now, now, string(rec.Status), string(rec.Request.Track), string(rec.Request.Tier),
			string(rec.Request.Format), string(rec.Request.Category), string(grade), score,
			rec.RevisionCount, rec.SchemaVersion, string(data)).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				for _, c := range []string{"updated_at", "status", "track", "tier", "format", "category",
					"grade", "score", "revision_count", "schema_version", "record"} {
					u.SetExcluded(c)
				}
			}),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save record %s: %w", rec.ID, err)
	}
	return nil
}

func (r *recordRepo) Get(ctx context.Context, id string) (*problem.Record, error) {
	query, args := builder().
		Select("record").
		From(entsql.Table(tableCandidates)).
		Where(entsql.EQ("id", id)).
		Query()

	var data string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query record %s: %w", id, err)
	}

	rec, err := problem.UnmarshalRecord([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", id, err)
	}
	return &rec, nil
}

func (r *recordRepo) List(ctx context.Context, f RecordFilter) ([]problem.Record, error) {
	sel := builder().
		Select("record").
		From(entsql.Table(tableCandidates)).
		OrderBy(entsql.Desc("updated_at"), "id")

	var preds []*entsql.Predicate
	if f.Status != "" {
		preds = append(preds, entsql.EQ("status", string(f.Status)))
	}
	if f.Track != "" {
		preds = append(preds, entsql.EQ("track", string(f.Track)))
	}
	if f.Grade != "" {
		preds = append(preds, entsql.EQ("grade", string(f.Grade)))
	}
	if len(preds) > 0 {
		sel = sel.Where(entsql.And(preds...))
	}
	if f.Limit > 0 {
		sel = sel.Limit(f.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []problem.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec, err := problem.UnmarshalRecord([]byte(data))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *recordRepo) CountByStatus(ctx context.Context) (map[problem.Status]int, error) {
	query, args := builder().
		Select("status", entsql.Count("*")).
		From(entsql.Table(tableCandidates)).
		GroupBy("status").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	defer rows.Close()

	counts := make(map[problem.Status]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[problem.Status(status)] = n
	}
	return counts, rows.Err()
}
