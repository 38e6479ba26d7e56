package sqlite

import (
	"context"
	"database/sql"
	"time"
)

type FunnelRepo struct {
	db *sql.DB
}

func NewFunnelRepo(db *sql.DB) *FunnelRepo {
	return &FunnelRepo{db: db}
}

func (r *FunnelRepo) Hit(ctx context.Context, funnel, step, runID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO funnel_hits(funnel, step, run_id, created_at) VALUES(?,?,?,?)`,
		funnel, step, runID, time.Now().UTC())
	return err
}

func (r *FunnelRepo) Counts(ctx context.Context, funnel string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT step, COUNT(DISTINCT run_id) FROM funnel_hits WHERE funnel = ? GROUP BY step`, funnel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var step string
		var cnt int
		if err := rows.Scan(&step, &cnt); err != nil {
			return nil, err
		}
		out[step] = cnt
	}
	return out, rows.Err()
}
