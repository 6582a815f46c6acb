package session

import "context"

// TokenStore persists the terminal's single session token slot.
// It performs no validation of what it holds.
type TokenStore interface {
	// Save overwrites the slot with token.
	Save(ctx context.Context, token string) error
	// Read returns the raw token and whether one is stored.
	Read(ctx context.Context) (string, bool, error)
	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context) error
}
