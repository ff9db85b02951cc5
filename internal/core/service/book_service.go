package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bwils5/cloudbooks-manager/internal/core/domain"
	"github.com/bwils5/cloudbooks-manager/internal/core/ports"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// BookService implements catalog CRUD on top of a BookRepository.
type BookService struct {
	repo ports.BookRepository
	log  zerolog.Logger
}

func NewBookService(repo ports.BookRepository, log zerolog.Logger) *BookService {
	return &BookService{repo: repo, log: log}
}

func (s *BookService) Create(ctx context.Context, in ports.BookInput) (*domain.Book, error) {
	book := &domain.Book{
		Title:       in.Title,
		Author:      in.Author,
		Description: in.Description,
	}

	created, err := s.repo.Create(ctx, book)
	if err != nil {
		s.log.Error().Err(err).Str("title", in.Title).Msg("failed to create book")
		return nil, err
	}

	s.log.Info().Str("book_id", created.ID).Str("title", created.Title).Msg("book created")
	return created, nil
}

func (s *BookService) Get(ctx context.Context, id string) (*domain.Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *BookService) Update(ctx context.Context, id string, in ports.BookInput) (*domain.Book, error) {
	book := &domain.Book{
		ID:          id,
		Title:       in.Title,
		Author:      in.Author,
		Description: in.Description,
	}

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, err
	}

	s.log.Info().Str("book_id", id).Msg("book updated")
	return book, nil
}

func (s *BookService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("book_id", id).Msg("book deleted")
	return nil
}

func (s *BookService) List(ctx context.Context, in ports.ListBooksInput) ([]*domain.Book, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	skip := in.Skip
	if skip < 0 {
		skip = 0
	}

	return s.repo.List(ctx, ports.ListBooksFilter{
		Title:  in.Title,
		Author: in.Author,
		Skip:   skip,
		Limit:  limit,
	})
}
