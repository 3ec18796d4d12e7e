package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UpsertBirthProfile stores or replaces the birth profile of a user
func (db *DB) UpsertBirthProfile(ctx context.Context, p *BirthProfile) error {
	if p == nil {
		return fmt.Errorf("birth profile is required")
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO birth_profiles (user_id, birth_at, timezone, hour_known, type_code)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE
		 SET birth_at = $2, timezone = $3, hour_known = $4, type_code = $5, updated_at = NOW()
		 RETURNING created_at, updated_at`,
		p.UserID, p.BirthAt.UTC(), p.Timezone, p.HourKnown, p.TypeCode,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert birth profile: %w", err)
	}
	return nil
}

// GetBirthProfile retrieves a user's birth profile. Returns nil, nil if none is stored.
// BirthAt is returned in the profile's timezone when it can be loaded.
func (db *DB) GetBirthProfile(ctx context.Context, userID uuid.UUID) (*BirthProfile, error) {
	var p BirthProfile
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, birth_at, timezone, hour_known, type_code, created_at, updated_at
		 FROM birth_profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.BirthAt, &p.Timezone, &p.HourKnown, &p.TypeCode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get birth profile: %w", err)
	}
	if loc, err := time.LoadLocation(p.Timezone); err == nil {
		p.BirthAt = p.BirthAt.In(loc)
	}
	return &p, nil
}
