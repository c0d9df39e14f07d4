package models

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type sqlEventRepo struct{ db *sql.DB }

func NewSQLEventRepository(db *sql.DB) EventRepository { return &sqlEventRepo{db} }

const eventColumns = `id, name, description, location, city, country, date, max_capacity, price, organizer_id`

func scanEvent(row rowScanner) (Event, error) {
	var (
		e     Event
		orgID sql.NullInt64
	)
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Location, &e.City, &e.Country,
		&e.Date, &e.MaxCapacity, &e.Price, &orgID)
	if orgID.Valid {
		id := orgID.Int64
		e.OrganizerID = &id
	}
	return e, err
}

func collectEvents(rows *sql.Rows, err error) ([]Event, error) {
	if err != nil {
		return nil, sqlErr("list events", err)
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, sqlErr("scan event", err)
		}
		out = append(out, e)
	}
	return out, sqlErr("list events", rows.Err())
}

// where renders f as a WHERE clause plus its positional args.
func (f EventFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Date != "" {
		add("date::date = $%d::date", f.Date)
	}
	if f.Country != "" {
		add("LOWER(country) = LOWER($%d)", f.Country)
	}
	if f.OrganizerID != 0 {
		add("organizer_id = $%d", f.OrganizerID)
	}
	if f.CategoryID != 0 {
		add("id IN (SELECT event_id FROM event_categories WHERE category_id = $%d)", f.CategoryID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *sqlEventRepo) List(ctx context.Context) ([]Event, error) {
	return collectEvents(r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY id`))
}

func (r *sqlEventRepo) ListPage(ctx context.Context, f EventFilter, p Page) ([]Event, error) {
	where, args := f.where()
	n := len(args)
	args = append(args, p.Limit, p.Offset())
	q := fmt.Sprintf(`SELECT %s FROM events%s ORDER BY date DESC, id DESC LIMIT $%d OFFSET $%d`,
		eventColumns, where, n+1, n+2)
	return collectEvents(r.db.QueryContext(ctx, q, args...))
}

func (r *sqlEventRepo) Count(ctx context.Context, f EventFilter) (int, error) {
	where, args := f.where()
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`+where, args...).Scan(&n); err != nil {
		return 0, sqlErr("count events", err)
	}
	return n, nil
}

func (r *sqlEventRepo) Upcoming(ctx context.Context, now time.Time, limit int) ([]Event, error) {
	return collectEvents(r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE date > $1 ORDER BY date ASC LIMIT $2`, now, limit))
}

func (r *sqlEventRepo) StartingBetween(ctx context.Context, from, to time.Time) ([]Event, error) {
	return collectEvents(r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE date > $1 AND date <= $2 ORDER BY date ASC`, from, to))
}

func (r *sqlEventRepo) GetByID(ctx context.Context, id int64) (Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1`, id))
	if err != nil {
		return Event{}, sqlErr("get event", err)
	}
	return e, nil
}

func (r *sqlEventRepo) Create(ctx context.Context, e *Event) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO events(name, description, location, city, country, date, max_capacity, price, organizer_id)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
		e.Name, e.Description, e.Location, e.City, e.Country, e.Date, e.MaxCapacity, e.Price, nullInt64(e.OrganizerID),
	).Scan(&e.ID)
	return sqlErr("create event", err)
}

func (r *sqlEventRepo) Update(ctx context.Context, e *Event) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET name=$1, description=$2, location=$3, city=$4, country=$5,
			date=$6, max_capacity=$7, price=$8, organizer_id=$9
		 WHERE id=$10`,
		e.Name, e.Description, e.Location, e.City, e.Country, e.Date, e.MaxCapacity, e.Price, nullInt64(e.OrganizerID), e.ID,
	)
	return mustAffect("update event", res, err)
}

func (r *sqlEventRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id=$1`, id)
	return mustAffect("delete event", res, err)
}

func (r *sqlEventRepo) CountByDate(ctx context.Context) ([]DateCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT to_char(date::date, 'YYYY-MM-DD') AS event_date, COUNT(*)
		 FROM events GROUP BY event_date ORDER BY event_date`)
	if err != nil {
		return nil, sqlErr("count events by date", err)
	}
	defer rows.Close()

	out := []DateCount{}
	for rows.Next() {
		var d DateCount
		if err := rows.Scan(&d.EventDate, &d.EventCount); err != nil {
			return nil, sqlErr("scan date count", err)
		}
		out = append(out, d)
	}
	return out, sqlErr("count events by date", rows.Err())
}

func (r *sqlEventRepo) CountByCountry(ctx context.Context) ([]CountryCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT country, COUNT(*) FROM events GROUP BY country ORDER BY COUNT(*) DESC, country`)
	if err != nil {
		return nil, sqlErr("count events by country", err)
	}
	defer rows.Close()

	out := []CountryCount{}
	for rows.Next() {
		var c CountryCount
		if err := rows.Scan(&c.Country, &c.EventCount); err != nil {
			return nil, sqlErr("scan country count", err)
		}
		out = append(out, c)
	}
	return out, sqlErr("count events by country", rows.Err())
}

func (r *sqlEventRepo) CountByOrganizer(ctx context.Context) ([]OrganizerCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT o.id, o.name, COUNT(e.id)
		 FROM organizers o LEFT JOIN events e ON e.organizer_id = o.id
		 GROUP BY o.id, o.name ORDER BY COUNT(e.id) DESC, o.id`)
	if err != nil {
		return nil, sqlErr("count events by organizer", err)
	}
	defer rows.Close()

	out := []OrganizerCount{}
	for rows.Next() {
		var c OrganizerCount
		if err := rows.Scan(&c.OrganizerID, &c.OrganizerName, &c.EventCount); err != nil {
			return nil, sqlErr("scan organizer count", err)
		}
		out = append(out, c)
	}
	return out, sqlErr("count events by organizer", rows.Err())
}
