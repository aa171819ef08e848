package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BadgeRepository stores badge definitions and awards.
type BadgeRepository struct {
	db DBTX
}

// NewBadgeRepository builds a badge repository.
func NewBadgeRepository(db DBTX) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// HasBadge reports whether the user already holds the badge.
func (r *BadgeRepository) HasBadge(ctx context.Context, userID uuid.UUID, badgeID string) (bool, error) {
	var held bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_badges WHERE user_id = $1 AND badge_id = $2)`,
		userID, badgeID).Scan(&held)
	return held, err
}

// Award inserts the (user, badge) pair. It reports false when the pair already existed.
func (r *BadgeRepository) Award(ctx context.Context, userID uuid.UUID, badgeID string, earnedAt time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO user_badges (user_id, badge_id, earned_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, badge_id) DO NOTHING`,
		userID, badgeID, earnedAt)
	if err != nil {
		return false, fmt.Errorf("award badge: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListForUser returns the badges a user has earned, oldest award first.
func (r *BadgeRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]Badge, error) {
	rows, err := r.db.Query(ctx,
		`SELECT b.id, b.name, b.description, b.icon, ub.earned_at
		 FROM user_badges ub JOIN badges b ON b.id = ub.badge_id
		 WHERE ub.user_id = $1
		 ORDER BY ub.earned_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	defer rows.Close()

	var out []Badge
	for rows.Next() {
		var b Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &b.EarnedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Get loads a badge definition.
func (r *BadgeRepository) Get(ctx context.Context, badgeID string) (Badge, error) {
	var b Badge
	err := r.db.QueryRow(ctx,
		`SELECT id, name, description, icon FROM badges WHERE id = $1`, badgeID,
	).Scan(&b.ID, &b.Name, &b.Description, &b.Icon)
	if err != nil {
		return Badge{}, translate(err)
	}
	return b, nil
}

// Upsert creates or refreshes a badge definition.
func (r *BadgeRepository) Upsert(ctx context.Context, b Badge) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO badges (id, name, description, icon) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description, icon = EXCLUDED.icon`,
		b.ID, b.Name, b.Description, b.Icon)
	return err
}
