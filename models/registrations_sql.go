package models

import (
	"context"
	"database/sql"
	"errors"
)

type sqlRegistrationRepo struct{ db *sql.DB }

func NewSQLRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &sqlRegistrationRepo{db}
}

const registrationColumns = `id, user_id, event_id, status, registration_date`

func scanRegistration(row rowScanner) (Registration, error) {
	var reg Registration
	err := row.Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.Status, &reg.RegistrationDate)
	return reg, err
}

func (r *sqlRegistrationRepo) List(ctx context.Context) ([]Registration, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+registrationColumns+` FROM registrations ORDER BY id`)
	if err != nil {
		return nil, sqlErr("list registrations", err)
	}
	defer rows.Close()

	out := []Registration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, sqlErr("scan registration", err)
		}
		out = append(out, reg)
	}
	return out, sqlErr("list registrations", rows.Err())
}

func (r *sqlRegistrationRepo) GetByID(ctx context.Context, id int64) (Registration, error) {
	reg, err := scanRegistration(r.db.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id=$1`, id))
	if err != nil {
		return Registration{}, sqlErr("get registration", err)
	}
	return reg, nil
}

func (r *sqlRegistrationRepo) Create(ctx context.Context, reg *Registration) error {
	if reg.Status == "" {
		reg.Status = StatusRegistered
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO registrations(user_id, event_id, status) VALUES ($1,$2,$3)
		 RETURNING id, registration_date`,
		reg.UserID, reg.EventID, reg.Status,
	).Scan(&reg.ID, &reg.RegistrationDate)
	return sqlErr("create registration", err)
}

func (r *sqlRegistrationRepo) Update(ctx context.Context, reg *Registration) error {
	err := r.db.QueryRowContext(ctx,
		`UPDATE registrations SET user_id=$1, event_id=$2, status=$3 WHERE id=$4
		 RETURNING registration_date`,
		reg.UserID, reg.EventID, reg.Status, reg.ID,
	).Scan(&reg.RegistrationDate)
	return sqlErr("update registration", err)
}

func (r *sqlRegistrationRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM registrations WHERE id=$1`, id)
	return mustAffect("delete registration", res, err)
}

func (r *sqlRegistrationRepo) FindActive(ctx context.Context, userID, eventID int64) (Registration, error) {
	reg, err := scanRegistration(r.db.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE user_id=$1 AND event_id=$2 AND status=$3
		 ORDER BY id DESC LIMIT 1`,
		userID, eventID, StatusRegistered))
	if err != nil {
		return Registration{}, sqlErr("find active registration", err)
	}
	return reg, nil
}

// RegisterChecked holds the event row lock while it counts and writes, so two
// requests for the last seat cannot both pass the capacity check.
func (r *sqlRegistrationRepo) RegisterChecked(ctx context.Context, reg *Registration) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return sqlErr("begin registration", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var capacity int
	if err = tx.QueryRowContext(ctx,
		`SELECT max_capacity FROM events WHERE id=$1 FOR UPDATE`, reg.EventID).Scan(&capacity); err != nil {
		return sqlErr("lock event", err)
	}

	// The row being re-activated does not count against itself.
	var active, mine, canceled int
	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FILTER (WHERE status=$3),
		        COUNT(*) FILTER (WHERE status=$3 AND user_id=$2),
		        COUNT(*) FILTER (WHERE status=$4 AND user_id=$2)
		 FROM registrations WHERE event_id=$1 AND id<>$5`,
		reg.EventID, reg.UserID, StatusRegistered, StatusCanceled, reg.ID,
	).Scan(&active, &mine, &canceled); err != nil {
		return sqlErr("count registrations", err)
	}
	switch {
	case mine > 0:
		return Rule(ReasonAlreadyRegistered)
	case canceled >= MaxCancellations:
		return Rule(ReasonCancelLimit)
	case active >= capacity:
		return Rule(ReasonEventFull)
	}

	reg.Status = StatusRegistered
	if reg.ID == 0 {
		err = tx.QueryRowContext(ctx,
			`INSERT INTO registrations(user_id, event_id, status) VALUES ($1,$2,$3)
			 RETURNING id, registration_date`,
			reg.UserID, reg.EventID, reg.Status,
		).Scan(&reg.ID, &reg.RegistrationDate)
	} else {
		err = tx.QueryRowContext(ctx,
			`UPDATE registrations SET user_id=$1, event_id=$2, status=$3 WHERE id=$4
			 RETURNING registration_date`,
			reg.UserID, reg.EventID, reg.Status, reg.ID,
		).Scan(&reg.RegistrationDate)
	}
	if err != nil {
		err = sqlErr("write registration", err)
		if errors.Is(err, ErrDuplicate) {
			return Rule(ReasonAlreadyRegistered)
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return sqlErr("commit registration", err)
	}
	return nil
}

func (r *sqlRegistrationRepo) countOne(ctx context.Context, op, q string, args ...any) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, sqlErr(op, err)
	}
	return n, nil
}

func (r *sqlRegistrationRepo) CountActiveForEvent(ctx context.Context, eventID int64) (int, error) {
	return r.countOne(ctx, "count event registrations",
		`SELECT COUNT(*) FROM registrations WHERE event_id=$1 AND status=$2`,
		eventID, StatusRegistered)
}

func (r *sqlRegistrationRepo) CountForUser(ctx context.Context, userID int64) (int, error) {
	return r.countOne(ctx, "count user registrations",
		`SELECT COUNT(*) FROM registrations WHERE user_id=$1`, userID)
}

func (r *sqlRegistrationRepo) ActiveUserIDs(ctx context.Context, eventID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM registrations WHERE event_id=$1 AND status=$2 ORDER BY user_id`,
		eventID, StatusRegistered)
	if err != nil {
		return nil, sqlErr("list registered users", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, sqlErr("scan user id", err)
		}
		out = append(out, id)
	}
	return out, sqlErr("list registered users", rows.Err())
}

func (r *sqlRegistrationRepo) ListForUser(ctx context.Context, userID int64, p Page) ([]UserRegistrationEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, e.id, e.name, e.location, e.city, e.country, e.date, e.price, r.status, r.registration_date
		 FROM registrations r JOIN events e ON e.id = r.event_id
		 WHERE r.user_id=$1
		 ORDER BY e.date DESC, r.id DESC
		 LIMIT $2 OFFSET $3`,
		userID, p.Limit, p.Offset())
	if err != nil {
		return nil, sqlErr("list user registrations", err)
	}
	defer rows.Close()

	out := []UserRegistrationEvent{}
	for rows.Next() {
		var u UserRegistrationEvent
		if err := rows.Scan(&u.RegistrationID, &u.EventID, &u.Name, &u.Location, &u.City, &u.Country,
			&u.EventDate, &u.Price, &u.Status, &u.RegistrationDate); err != nil {
			return nil, sqlErr("scan user registration", err)
		}
		out = append(out, u)
	}
	return out, sqlErr("list user registrations", rows.Err())
}
