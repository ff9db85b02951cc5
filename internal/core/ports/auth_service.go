package ports

import (
	"context"

	"github.com/bwils5/cloudbooks-manager/internal/core/domain"
)

// AuthService implements registration, login, and bearer token validation.
type AuthService interface {
	// Register creates a new account. Role defaults to domain.RoleUser when
	// empty.
	Register(ctx context.Context, username, password, role string) (*domain.User, error)

	// Login verifies credentials and mints a signed, expiring bearer token.
	// Unknown usernames and wrong passwords both fail with
	// domain.ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (string, *domain.User, error)

	// Authenticate validates a bearer token and resolves its subject to a
	// live user record. Fails with domain.ErrTokenExpired or
	// domain.ErrTokenInvalid.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
