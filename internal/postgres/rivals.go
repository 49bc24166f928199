package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pong-stats-service/internal/domain"
)

// InsertRival adds a directed rival edge. The UNIQUE(owner_id, rival_id)
// constraint makes the check-then-insert atomic; a duplicate edge maps to a
// conflict.
func (r *Repository) InsertRival(ctx context.Context, rival domain.Rival) (*domain.Rival, error) {
	query := `
		INSERT INTO rivals (owner_id, owner_username, rival_id, rival_username, registered, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	stored := rival
	err := r.pool.QueryRow(ctx, query,
		rival.OwnerID,
		rival.OwnerUsername,
		rival.RivalID,
		rival.RivalUsername,
		rival.Registered,
		time.Now(),
	).Scan(&stored.ID, &stored.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrRivalExists
		}
		return nil, fmt.Errorf("inserting rival: %w", err)
	}
	return &stored, nil
}

const rivalColumns = `
	id, owner_id, COALESCE(owner_username, ''), rival_id, rival_username, registered, created_at
`

func scanRivals(rows pgx.Rows) ([]domain.Rival, error) {
	defer rows.Close()

	var rivals []domain.Rival
	for rows.Next() {
		var rival domain.Rival
		err := rows.Scan(
			&rival.ID,
			&rival.OwnerID,
			&rival.OwnerUsername,
			&rival.RivalID,
			&rival.RivalUsername,
			&rival.Registered,
			&rival.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning rival: %w", err)
		}
		rivals = append(rivals, rival)
	}
	return rivals, rows.Err()
}

// ListRivals retrieves an owner's rival edges by owner id
func (r *Repository) ListRivals(ctx context.Context, ownerID string) ([]domain.Rival, error) {
	query := `SELECT ` + rivalColumns + ` FROM rivals WHERE owner_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing rivals: %w", err)
	}
	return scanRivals(rows)
}

// ListRivalsByUsername retrieves an owner's rival edges by owner username
func (r *Repository) ListRivalsByUsername(ctx context.Context, ownerUsername string) ([]domain.Rival, error) {
	query := `SELECT ` + rivalColumns + ` FROM rivals WHERE owner_username = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, ownerUsername)
	if err != nil {
		return nil, fmt.Errorf("listing rivals by username: %w", err)
	}
	return scanRivals(rows)
}

// DeleteRival removes the owner's edge to rivalID. Deleting a missing edge is
// reported, not silently ignored.
func (r *Repository) DeleteRival(ctx context.Context, ownerID, rivalID string) error {
	query := `DELETE FROM rivals WHERE owner_id = $1 AND rival_id = $2`
	result, err := r.pool.Exec(ctx, query, ownerID, rivalID)
	if err != nil {
		return fmt.Errorf("deleting rival: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrRivalNotFound
	}
	return nil
}

// DeleteRivalByUsername removes the owner's edge to the named rival.
func (r *Repository) DeleteRivalByUsername(ctx context.Context, ownerID, rivalUsername string) error {
	query := `DELETE FROM rivals WHERE owner_id = $1 AND rival_username = $2`
	result, err := r.pool.Exec(ctx, query, ownerID, rivalUsername)
	if err != nil {
		return fmt.Errorf("deleting rival by username: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrRivalNotFound
	}
	return nil
}
