package models

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Postgres SQLSTATE codes we translate.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// sqlErr maps driver errors onto the package sentinels.
func sqlErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		case pqForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, Rule("referenced %s does not exist", fkTarget(pqErr)))
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// mustAffect turns "0 rows affected" into ErrNotFound.
func mustAffect(op string, res sql.Result, err error) error {
	if err != nil {
		return sqlErr(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return sqlErr(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// nullInt64 stores a missing foreign key as NULL.
func nullInt64(p *int64) sql.NullInt64 {
	if p == nil || *p == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// fkTarget guesses the referenced entity from a constraint such as
// "events_organizer_id_fkey".
func fkTarget(e *pq.Error) string {
	c := strings.TrimSuffix(e.Constraint, "_fkey")
	c = strings.TrimPrefix(c, e.Table+"_")
	c = strings.TrimSuffix(c, "_id")
	if c == "" || c == e.Constraint {
		return "row"
	}
	return c
}
