package shortener

import "context"

// Repository defines the storage operations the shortener needs.
type Repository interface {
	// Exists reports whether code is stored, expired or not.
	Exists(ctx context.Context, code Code) (bool, error)

	// Insert persists a new shortlink and sets its ID.
	// Returns ErrDuplicateCode if the code is already taken.
	Insert(ctx context.Context, link *Shortlink) error

	// GetByCode returns the shortlink for code, or ErrNotFound.
	GetByCode(ctx context.Context, code Code) (*Shortlink, error)
}
