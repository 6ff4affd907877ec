package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dharmasatrya/tripbuilder/internal/models"
	"github.com/dharmasatrya/tripbuilder/internal/storage"
)

const discountColumns = `id, code, kind, percentage, waive_item, expires_at, max_uses, used_count, active, created_at`

func scanDiscount(row pgx.Row) (models.DiscountCode, error) {
	var dc models.DiscountCode
	err := row.Scan(
		&dc.ID, &dc.Code, &dc.Kind, &dc.Percentage, &dc.WaiveItem,
		&dc.ExpiresAt, &dc.MaxUses, &dc.UsedCount, &dc.Active, &dc.CreatedAt,
	)
	return dc, err
}

func (r *Repository) FindDiscountByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+discountColumns+` FROM discount_codes WHERE code = $1`, models.NormalizeCode(code))
	dc, err := scanDiscount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get discount code: %w", err)
	}
	return &dc, nil
}

func (r *Repository) ListDiscounts(ctx context.Context) ([]models.DiscountCode, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+discountColumns+` FROM discount_codes ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query discount codes: %w", err)
	}
	defer rows.Close()

	var codes []models.DiscountCode
	for rows.Next() {
		dc, err := scanDiscount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan discount code: %w", err)
		}
		codes = append(codes, dc)
	}
	return codes, rows.Err()
}

func (r *Repository) CreateDiscount(ctx context.Context, dc *models.DiscountCode) error {
	dc.ID = newID(dc.ID)
	err := r.pool.QueryRow(ctx, `
		INSERT INTO discount_codes (id, code, kind, percentage, waive_item, expires_at, max_uses, used_count, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8)
		RETURNING created_at
	`, dc.ID, dc.Code, dc.Kind, dc.Percentage, dc.WaiveItem, dc.ExpiresAt, dc.MaxUses, dc.Active).Scan(&dc.CreatedAt)
	if err != nil {
		return mapError("create discount code", err)
	}
	return nil
}

// UpdateDiscount leaves used_count alone; only booking creation moves it.
func (r *Repository) UpdateDiscount(ctx context.Context, dc *models.DiscountCode) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE discount_codes
		SET code = $2, kind = $3, percentage = $4, waive_item = $5, expires_at = $6, max_uses = $7, active = $8
		WHERE id = $1
		RETURNING used_count, created_at
	`, dc.ID, dc.Code, dc.Kind, dc.Percentage, dc.WaiveItem, dc.ExpiresAt, dc.MaxUses, dc.Active).Scan(&dc.UsedCount, &dc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrNotFound
		}
		return mapError("update discount code", err)
	}
	return nil
}

func (r *Repository) DeleteDiscount(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM discount_codes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete discount code: %w", err)
	}
	return requireRow(tag)
}
