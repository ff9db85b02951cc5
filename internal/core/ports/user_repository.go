package ports

import (
	"context"

	"github.com/bwils5/cloudbooks-manager/internal/core/domain"
)

// UserRepository defines persistence for user accounts.
//
// Create must be an atomic check-and-insert: when two concurrent calls race
// on the same username, the storage layer (not the application) rejects the
// second with domain.ErrUserExists.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}
