package ports

import (
	"context"

	"github.com/bwils5/cloudbooks-manager/internal/core/domain"
)

// BookInput carries the writable fields of a book.
type BookInput struct {
	Title       string
	Author      string
	Description string
}

// ListBooksInput carries all parameters for the list endpoint.
type ListBooksInput struct {
	Title  string
	Author string
	Skip   int
	Limit  int
}

// BookService defines use-case operations on the catalog.
type BookService interface {
	Create(ctx context.Context, in BookInput) (*domain.Book, error)
	Get(ctx context.Context, id string) (*domain.Book, error)
	Update(ctx context.Context, id string, in BookInput) (*domain.Book, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, in ListBooksInput) ([]*domain.Book, error)
}
