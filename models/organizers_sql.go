package models

import (
	"context"
	"database/sql"
)

type sqlOrganizerRepo struct{ db *sql.DB }

func NewSQLOrganizerRepository(db *sql.DB) OrganizerRepository { return &sqlOrganizerRepo{db} }

func (r *sqlOrganizerRepo) List(ctx context.Context) ([]Organizer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, email, phone FROM organizers ORDER BY id`)
	if err != nil {
		return nil, sqlErr("list organizers", err)
	}
	defer rows.Close()

	out := []Organizer{}
	for rows.Next() {
		var o Organizer
		if err := rows.Scan(&o.ID, &o.Name, &o.Email, &o.Phone); err != nil {
			return nil, sqlErr("scan organizer", err)
		}
		out = append(out, o)
	}
	return out, sqlErr("list organizers", rows.Err())
}

func (r *sqlOrganizerRepo) GetByID(ctx context.Context, id int64) (Organizer, error) {
	var o Organizer
	err := r.db.QueryRowContext(ctx, `SELECT id, name, email, phone FROM organizers WHERE id=$1`, id).
		Scan(&o.ID, &o.Name, &o.Email, &o.Phone)
	if err != nil {
		return Organizer{}, sqlErr("get organizer", err)
	}
	return o, nil
}

func (r *sqlOrganizerRepo) Create(ctx context.Context, o *Organizer) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO organizers(name, email, phone) VALUES ($1,$2,$3) RETURNING id`,
		o.Name, o.Email, o.Phone,
	).Scan(&o.ID)
	return sqlErr("create organizer", err)
}

func (r *sqlOrganizerRepo) Update(ctx context.Context, o *Organizer) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE organizers SET name=$1, email=$2, phone=$3 WHERE id=$4`,
		o.Name, o.Email, o.Phone, o.ID)
	return mustAffect("update organizer", res, err)
}

func (r *sqlOrganizerRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM organizers WHERE id=$1`, id)
	return mustAffect("delete organizer", res, err)
}
