package insights

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MaxRows caps every statistics result.
const MaxRows = 500

// Result is a tabular query answer.
type Result struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// Runner executes checked statements inside a read-only transaction.
type Runner struct {
	db      *sql.DB
	maxRows int
	timeout time.Duration
}

func NewRunner(db *sql.DB) *Runner {
	return &Runner{db: db, maxRows: MaxRows, timeout: 5 * time.Second}
}

// Run checks stmt, executes it read-only and returns at most MaxRows rows.
// The transaction is always rolled back.
func (r *Runner) Run(ctx context.Context, stmt string) (Result, error) {
	q, err := CheckReadOnly(stmt)
	if err != nil {
		return Result{}, err
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return Result{}, fmt.Errorf("begin read-only tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", r.timeout.Milliseconds())); err != nil {
		return Result{}, fmt.Errorf("set statement timeout: %w", err)
	}

	rows, err := tx.QueryContext(ctx, fmt.Sprintf("SELECT * FROM (%s) AS stats LIMIT %d", q, r.maxRows))
	if err != nil {
		return Result{}, &QueryError{Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Result{}, &QueryError{Err: err}
	}

	res := Result{Columns: cols, Rows: []map[string]any{}}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return Result{}, &QueryError{Err: err}
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = jsonValue(vals[i])
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return Result{}, &QueryError{Err: err}
	}
	return res, nil
}

// QueryError is a statement the database rejected.
type QueryError struct{ Err error }

func (e *QueryError) Error() string { return "statistics query failed: " + e.Err.Error() }
func (e *QueryError) Unwrap() error { return e.Err }

// jsonValue turns driver values into something encoding/json renders well.
// lib/pq returns NUMERIC as []byte.
func jsonValue(v any) any {
	switch t := v.(type) {
	case []byte:
		if d, err := decimal.NewFromString(string(t)); err == nil {
			return d
		}
		return string(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return v
	}
}
