package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/adboard/board-api/internal/core/domain"
	"github.com/adboard/board-api/internal/core/ports"
)

const advertisementColumns = `id, title, body, adv_group, is_active, author_id, created_at, updated_at`

type AdvertisementRepository struct {
	q    queryer
	lock string
}

func (r *AdvertisementRepository) Create(ctx context.Context, adv *domain.Advertisement) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const query = `
		INSERT INTO advertisements (title, body, adv_group, is_active, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.q.QueryRowContext(ctx, query,
		adv.Title, nullString(adv.Body), string(adv.Group), adv.IsActive, adv.Author, adv.CreatedAt, adv.UpdatedAt,
	).Scan(&adv.ID)
	if err != nil {
		return fmt.Errorf("insert advertisement: %w", err)
	}
	return nil
}

func (r *AdvertisementRepository) FindByID(ctx context.Context, id int64) (*domain.Advertisement, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `SELECT ` + advertisementColumns + ` FROM advertisements WHERE id = $1` + r.lock
	adv, err := scanAdvertisement(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAdvertisementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find advertisement %d: %w", id, err)
	}
	return adv, nil
}

func (r *AdvertisementRepository) List(ctx context.Context, filter ports.ListAdvertisementsFilter) ([]*domain.Advertisement, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		conds []string
		args  []any
	)
	if filter.Group != "" {
		args = append(args, string(filter.Group))
		conds = append(conds, "adv_group = $"+strconv.Itoa(len(args)))
	}
	if filter.AuthorID != 0 {
		args = append(args, filter.AuthorID)
		conds = append(conds, "author_id = $"+strconv.Itoa(len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM advertisements`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count advertisements: %w", err)
	}

	query := `SELECT ` + advertisementColumns + ` FROM advertisements` + where + ` ORDER BY id`
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		args = append(args, filter.Limit, (page-1)*filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list advertisements: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.Advertisement, 0)
	for rows.Next() {
		adv, err := scanAdvertisement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan advertisement: %w", err)
		}
		items = append(items, adv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *AdvertisementRepository) Update(ctx context.Context, adv *domain.Advertisement) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const query = `
		UPDATE advertisements
		SET title = $1, body = $2, adv_group = $3, is_active = $4, updated_at = $5
		WHERE id = $6`

	res, err := r.q.ExecContext(ctx, query,
		adv.Title, nullString(adv.Body), string(adv.Group), adv.IsActive, adv.UpdatedAt, adv.ID,
	)
	if err != nil {
		return fmt.Errorf("update advertisement %d: %w", adv.ID, err)
	}
	return expectOne(res, domain.ErrAdvertisementNotFound)
}

func (r *AdvertisementRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.q.ExecContext(ctx, `DELETE FROM advertisements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete advertisement %d: %w", id, err)
	}
	return expectOne(res, domain.ErrAdvertisementNotFound)
}

func scanAdvertisement(s scanner) (*domain.Advertisement, error) {
	var (
		a     domain.Advertisement
		body  sql.NullString
		group string
	)
	if err := s.Scan(&a.ID, &a.Title, &body, &group, &a.IsActive, &a.Author, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Body = body.String
	a.Group = domain.Group(group)
	return &a, nil
}
