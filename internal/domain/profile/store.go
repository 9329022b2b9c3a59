// internal/domain/profile/store.go

package profile

import (
	"context"
)

// Store supplies the profile and tracked accounts for a session
type Store interface {
	// LoadProfile returns the stored profile, or nil when none exists
	LoadProfile(ctx context.Context) (*Profile, error)

	// LoadAccounts returns the tracked accounts in their stored order
	LoadAccounts(ctx context.Context) ([]TrackedAccount, error)

	// SaveProfile replaces the stored profile
	SaveProfile(ctx context.Context, p *Profile) error

	// SaveAccounts replaces the stored tracked accounts
	SaveAccounts(ctx context.Context, accounts []TrackedAccount) error
}
