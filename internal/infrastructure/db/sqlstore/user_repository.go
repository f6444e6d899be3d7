package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/adboard/board-api/internal/core/domain"
)

const userColumns = `id, username, password_hash, fullname, email, role, is_active, created_at, updated_at`

type UserRepository struct {
	q    queryer
	lock string
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const query = `
		INSERT INTO users (username, password_hash, fullname, email, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	out := *user
	err := r.q.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash, nullString(user.Fullname), nullString(user.Email),
		string(user.Role), user.IsActive, user.CreatedAt, user.UpdatedAt,
	).Scan(&out.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &out, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1` + r.lock
	user, err := scanUser(r.q.QueryRowContext(ctx, query, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", username, err)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const query = `
		UPDATE users
		SET username = $1, password_hash = $2, fullname = $3, email = $4, role = $5, is_active = $6, updated_at = $7
		WHERE id = $8`

	res, err := r.q.ExecContext(ctx, query,
		user.Username, user.PasswordHash, nullString(user.Fullname), nullString(user.Email),
		string(user.Role), user.IsActive, user.UpdatedAt, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("update user %d: %w", user.ID, err)
	}
	return expectOne(res, domain.ErrUserNotFound)
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return expectOne(res, domain.ErrUserNotFound)
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*domain.User, error) {
	var (
		u               domain.User
		fullname, email sql.NullString
		role            string
	)
	if err := s.Scan(&u.ID, &u.Username, &u.PasswordHash, &fullname, &email, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Fullname = fullname.String
	u.Email = email.String
	u.Role = domain.Role(role)
	return &u, nil
}
