// internal/adapter/storage/profile_store.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"socialpulse/internal/domain/profile"
)

// Schema creates the profile tables when missing
const Schema = `
	CREATE TABLE IF NOT EXISTS profiles (
		id                   TEXT PRIMARY KEY,
		name                 TEXT NOT NULL DEFAULT '',
		short_description    TEXT NOT NULL DEFAULT '',
		detailed_description TEXT NOT NULL DEFAULT '',
		core_value           TEXT NOT NULL DEFAULT '',
		keywords             TEXT[] NOT NULL DEFAULT '{}',
		hashtags             TEXT[] NOT NULL DEFAULT '{}',
		unique_components    TEXT[] NOT NULL DEFAULT '{}',
		updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS tracked_accounts (
		profile_id  TEXT NOT NULL,
		position    INT NOT NULL,
		handle      TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (profile_id, position)
	);
`

// ProfileStore implements profile.Store on PostgreSQL
type ProfileStore struct {
	db        *pgxpool.Pool
	profileID string
}

// NewProfileStore creates a profile store for the profile with profileID
func NewProfileStore(db *pgxpool.Pool, profileID string) *ProfileStore {
	if profileID == "" {
		profileID = "default"
	}
	return &ProfileStore{
		db:        db,
		profileID: profileID,
	}
}

// EnsureSchema creates the tables used by the store
func (s *ProfileStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("error creating profile schema: %w", err)
	}
	return nil
}

// LoadProfile retrieves the profile, or nil when none is stored
func (s *ProfileStore) LoadProfile(ctx context.Context) (*profile.Profile, error) {
	query := `
		SELECT
			name, short_description, detailed_description, core_value,
			keywords, hashtags, unique_components
		FROM profiles
		WHERE id = $1
	`

	var p profile.Profile
	err := s.db.QueryRow(ctx, query, s.profileID).Scan(
		&p.Name,
		&p.ShortDescription,
		&p.DetailedDescription,
		&p.CoreValue,
		&p.Keywords,
		&p.Hashtags,
		&p.Components,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying profile: %w", err)
	}

	p.Normalize()
	return &p, nil
}

// LoadAccounts retrieves the tracked accounts in their stored order
func (s *ProfileStore) LoadAccounts(ctx context.Context) ([]profile.TrackedAccount, error) {
	query := `
		SELECT handle, description
		FROM tracked_accounts
		WHERE profile_id = $1
		ORDER BY position
	`

	rows, err := s.db.Query(ctx, query, s.profileID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	accounts := []profile.TrackedAccount{}
	for rows.Next() {
		var a profile.TrackedAccount
		if err := rows.Scan(&a.Handle, &a.Description); err != nil {
			return nil, fmt.Errorf("error scanning tracked account: %w", err)
		}
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracked accounts: %w", err)
	}

	return profile.NormalizeAccounts(accounts), nil
}

// SaveProfile upserts the profile
func (s *ProfileStore) SaveProfile(ctx context.Context, p *profile.Profile) error {
	if p == nil {
		p = &profile.Profile{}
	}

	query := `
		INSERT INTO profiles (
			id, name, short_description, detailed_description, core_value,
			keywords, hashtags, unique_components, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9
		)
		ON CONFLICT (id) DO UPDATE
		SET
			name = $2,
			short_description = $3,
			detailed_description = $4,
			core_value = $5,
			keywords = $6,
			hashtags = $7,
			unique_components = $8,
			updated_at = $9
	`

	_, err := s.db.Exec(
		ctx,
		query,
		s.profileID,
		p.Name,
		p.ShortDescription,
		p.DetailedDescription,
		p.CoreValue,
		nonNil(p.Keywords),
		nonNil(p.Hashtags),
		nonNil(p.Components),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// SaveAccounts replaces the tracked accounts in one transaction
func (s *ProfileStore) SaveAccounts(ctx context.Context, accounts []profile.TrackedAccount) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM tracked_accounts WHERE profile_id = $1`, s.profileID); err != nil {
		return fmt.Errorf("error clearing tracked accounts: %w", err)
	}

	for i, a := range accounts {
		_, err := tx.Exec(
			ctx,
			`INSERT INTO tracked_accounts (profile_id, position, handle, description) VALUES ($1, $2, $3, $4)`,
			s.profileID, i, a.Handle, a.Description,
		)
		if err != nil {
			return fmt.Errorf("error inserting tracked account %s: %w", a.Handle, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing tracked accounts: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
