package models

import (
	"context"
	"database/sql"
	"errors"
)

type sqlCategoryRepo struct{ db *sql.DB }

func NewSQLCategoryRepository(db *sql.DB) CategoryRepository { return &sqlCategoryRepo{db} }

func collectCategories(op string, rows *sql.Rows, err error) ([]Category, error) {
	if err != nil {
		return nil, sqlErr(op, err)
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, sqlErr("scan category", err)
		}
		out = append(out, c)
	}
	return out, sqlErr(op, rows.Err())
}

func (r *sqlCategoryRepo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	return collectCategories("list categories", rows, err)
}

func (r *sqlCategoryRepo) GetByID(ctx context.Context, id int64) (Category, error) {
	var c Category
	if err := r.db.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE id=$1`, id).Scan(&c.ID, &c.Name); err != nil {
		return Category{}, sqlErr("get category", err)
	}
	return c, nil
}

func (r *sqlCategoryRepo) Create(ctx context.Context, c *Category) error {
	err := r.db.QueryRowContext(ctx, `INSERT INTO categories(name) VALUES ($1) RETURNING id`, c.Name).Scan(&c.ID)
	return sqlErr("create category", err)
}

func (r *sqlCategoryRepo) Update(ctx context.Context, c *Category) error {
	res, err := r.db.ExecContext(ctx, `UPDATE categories SET name=$1 WHERE id=$2`, c.Name, c.ID)
	return mustAffect("update category", res, err)
}

func (r *sqlCategoryRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id=$1`, id)
	return mustAffect("delete category", res, err)
}

func (r *sqlCategoryRepo) ListWithEventCount(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.name, COUNT(ec.event_id)
		 FROM categories c LEFT JOIN event_categories ec ON ec.category_id = c.id
		 GROUP BY c.id, c.name ORDER BY c.id`)
	if err != nil {
		return nil, sqlErr("count category events", err)
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var (
			c Category
			n int
		)
		if err := rows.Scan(&c.ID, &c.Name, &n); err != nil {
			return nil, sqlErr("scan category count", err)
		}
		c.EventCount = &n
		out = append(out, c)
	}
	return out, sqlErr("count category events", rows.Err())
}

func (r *sqlCategoryRepo) ListForEvent(ctx context.Context, eventID int64) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.name FROM categories c
		 JOIN event_categories ec ON ec.category_id = c.id
		 WHERE ec.event_id=$1 ORDER BY c.id`, eventID)
	return collectCategories("list event categories", rows, err)
}

// AddToEvent links a category to an event. The event row is locked so two
// concurrent links cannot both pass the per-event limit.
func (r *sqlCategoryRepo) AddToEvent(ctx context.Context, eventID, categoryID int64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return sqlErr("begin link category", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var locked int64
	if err = tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id=$1 FOR UPDATE`, eventID).Scan(&locked); err != nil {
		return sqlErr("lock event", err)
	}

	var n int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_categories WHERE event_id=$1`, eventID).Scan(&n); err != nil {
		return sqlErr("count event categories", err)
	}
	if n >= MaxCategoriesPerEvent {
		return Rule("an event can have at most %d categories", MaxCategoriesPerEvent)
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO event_categories(event_id, category_id) VALUES ($1,$2)`, eventID, categoryID); err != nil {
		err = sqlErr("link category", err)
		if errors.Is(err, ErrDuplicate) {
			return Rule("category already linked to this event")
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return sqlErr("commit link category", err)
	}
	return nil
}

func (r *sqlCategoryRepo) RemoveFromEvent(ctx context.Context, eventID, categoryID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM event_categories WHERE event_id=$1 AND category_id=$2`, eventID, categoryID)
	return mustAffect("unlink category", res, err)
}
