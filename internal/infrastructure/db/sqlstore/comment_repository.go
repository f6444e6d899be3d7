package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/adboard/board-api/internal/core/domain"
)

const commentColumns = `id, body, author_id, advertisement_id, created_at, updated_at`

type CommentRepository struct {
	q    queryer
	lock string
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const query = `
		INSERT INTO comments (body, author_id, advertisement_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	if err := r.q.QueryRowContext(ctx, query,
		c.Body, c.Author, c.AdvertisementID, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id int64) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1` + r.lock
	c, err := scanComment(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find comment %d: %w", id, err)
	}
	return c, nil
}

func (r *CommentRepository) ListByAdvertisement(ctx context.Context, advertisementID int64) ([]*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE advertisement_id = $1 ORDER BY id`, advertisementID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*domain.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *CommentRepository) Update(ctx context.Context, c *domain.Comment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.q.ExecContext(ctx,
		`UPDATE comments SET body = $1, updated_at = $2 WHERE id = $3`, c.Body, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update comment %d: %w", c.ID, err)
	}
	return expectOne(res, domain.ErrCommentNotFound)
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.q.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	return expectOne(res, domain.ErrCommentNotFound)
}

func scanComment(s scanner) (*domain.Comment, error) {
	var c domain.Comment
	if err := s.Scan(&c.ID, &c.Body, &c.Author, &c.AdvertisementID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
