package models

import (
	"context"
	"database/sql"
	"fmt"

	"stellargather/utils"
)

type sqlUserRepo struct{ db *sql.DB }

func NewSQLUserRepository(db *sql.DB) UserRepository { return &sqlUserRepo{db} }

const userColumns = `id, username, email, password, full_name, country, is_admin, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.FullName, &u.Country, &u.IsAdmin, &u.CreatedAt)
	return u, err
}

func (r *sqlUserRepo) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, sqlErr("list users", err)
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, sqlErr("scan user", err)
		}
		out = append(out, u.Public())
	}
	return out, sqlErr("list users", rows.Err())
}

func (r *sqlUserRepo) GetByID(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if err != nil {
		return User{}, sqlErr("get user", err)
	}
	return u.Public(), nil
}

func (r *sqlUserRepo) Create(ctx context.Context, u *User) error {
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`INSERT INTO users(username, email, password, full_name, country)
		 VALUES ($1,$2,$3,$4,$5) RETURNING id, is_admin, created_at`,
		u.Username, u.Email, hashed, u.FullName, u.Country,
	).Scan(&u.ID, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return sqlErr("create user", err)
	}
	u.Password = MaskedPassword
	return nil
}

func (r *sqlUserRepo) Update(ctx context.Context, id int64, upd UserUpdate) (User, error) {
	var hashed sql.NullString
	if upd.Password != nil {
		h, err := utils.HashPassword(*upd.Password)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		hashed = sql.NullString{String: h, Valid: true}
	}

	u, err := scanUser(r.db.QueryRowContext(ctx,
		`UPDATE users SET
			username  = COALESCE($1, username),
			email     = COALESCE($2, email),
			full_name = COALESCE($3, full_name),
			country   = COALESCE($4, country),
			password  = COALESCE($5, password)
		 WHERE id=$6
		 RETURNING `+userColumns,
		nullString(upd.Username), nullString(upd.Email), nullString(upd.FullName),
		nullString(upd.Country), hashed, id,
	))
	if err != nil {
		return User{}, sqlErr("update user", err)
	}
	return u.Public(), nil
}

func (r *sqlUserRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	return mustAffect("delete user", res, err)
}

func (r *sqlUserRepo) ValidateCredentials(ctx context.Context, email, plain string) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
	if err != nil {
		return User{}, sqlErr("find user by email", err)
	}
	if !utils.CheckPasswordHash(plain, u.Password) {
		return User{}, ErrInvalidCredentials
	}
	return u.Public(), nil
}

func (r *sqlUserRepo) CheckPassword(ctx context.Context, id int64, plain string) error {
	var hashed string
	if err := r.db.QueryRowContext(ctx, `SELECT password FROM users WHERE id=$1`, id).Scan(&hashed); err != nil {
		return sqlErr("get password", err)
	}
	if !utils.CheckPasswordHash(plain, hashed) {
		return ErrInvalidCredentials
	}
	return nil
}
