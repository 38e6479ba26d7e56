package sqlite

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/myabroadportal/portal/backend/internal/model/lead"
)

type LeadRepo struct {
	db *sql.DB
}

func NewLeadRepo(db *sql.DB) *LeadRepo {
	return &LeadRepo{db: db}
}

func (r *LeadRepo) SaveLead(rec lead.Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	var answers []byte
	if len(rec.Answers) > 0 {
		var err error
		if answers, err = json.Marshal(rec.Answers); err != nil {
			return err
		}
	}
	_, err := r.db.Exec(`INSERT INTO leads(session_id, source, name, phone, interest, goal, budget, education, answers, score, band, recommendation, created_at)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.SessionID, string(rec.Source), rec.Name, rec.Phone, rec.Interest, rec.Goal, rec.Budget, rec.Education,
		string(answers), rec.Score, rec.Band, rec.Recommendation, rec.CreatedAt)
	return err
}
