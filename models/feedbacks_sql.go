package models

import (
	"context"
	"database/sql"
)

type sqlFeedbackRepo struct{ db *sql.DB }

func NewSQLFeedbackRepository(db *sql.DB) FeedbackRepository { return &sqlFeedbackRepo{db} }

const feedbackColumns = `id, user_id, event_id, comment_text, rating_value, timestamp`

func scanFeedback(row rowScanner) (Feedback, error) {
	var f Feedback
	err := row.Scan(&f.ID, &f.UserID, &f.EventID, &f.CommentText, &f.RatingValue, &f.Timestamp)
	return f, err
}

func (r *sqlFeedbackRepo) Create(ctx context.Context, f *Feedback) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO feedbacks(user_id, event_id, comment_text, rating_value)
		 VALUES ($1,$2,$3,$4) RETURNING id, timestamp`,
		f.UserID, f.EventID, f.CommentText, f.RatingValue,
	).Scan(&f.ID, &f.Timestamp)
	return sqlErr("create feedback", err)
}

func (r *sqlFeedbackRepo) GetByID(ctx context.Context, id int64) (Feedback, error) {
	f, err := scanFeedback(r.db.QueryRowContext(ctx, `SELECT `+feedbackColumns+` FROM feedbacks WHERE id=$1`, id))
	if err != nil {
		return Feedback{}, sqlErr("get feedback", err)
	}
	return f, nil
}

func (r *sqlFeedbackRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM feedbacks WHERE id=$1`, id)
	return mustAffect("delete feedback", res, err)
}

func (r *sqlFeedbackRepo) ListForEvent(ctx context.Context, eventID int64, p Page) ([]Feedback, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+feedbackColumns+` FROM feedbacks WHERE event_id=$1
		 ORDER BY timestamp DESC, id DESC LIMIT $2 OFFSET $3`,
		eventID, p.Limit, p.Offset())
	if err != nil {
		return nil, sqlErr("list feedbacks", err)
	}
	defer rows.Close()

	out := []Feedback{}
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, sqlErr("scan feedback", err)
		}
		out = append(out, f)
	}
	return out, sqlErr("list feedbacks", rows.Err())
}
