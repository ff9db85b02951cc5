package ports

import (
	"context"

	"github.com/bwils5/cloudbooks-manager/internal/core/domain"
)

// ListBooksFilter carries the query parameters for listing books.
type ListBooksFilter struct {
	Title  string // optional: case-insensitive substring match on title
	Author string // optional: case-insensitive substring match on author
	Skip   int    // number of rows to skip
	Limit  int    // max rows returned (capped by the service)
}

// BookRepository defines persistence operations for books.
type BookRepository interface {
	Create(ctx context.Context, b *domain.Book) (*domain.Book, error)
	FindByID(ctx context.Context, id string) (*domain.Book, error)
	// Update replaces the mutable fields of the book with the given ID.
	// Returns domain.ErrBookNotFound when no document matched.
	Update(ctx context.Context, b *domain.Book) error
	// Delete removes the book with the given ID.
	// Returns domain.ErrBookNotFound when no document matched.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListBooksFilter) ([]*domain.Book, error)
}
