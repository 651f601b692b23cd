package book

import (
	"context"
)

// Service provides book-related business logic.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Catalog returns every book wrapped as a fetch payload.
func (s *Service) Catalog(ctx context.Context) (Data, error) {
	books, err := s.repo.ListAll(ctx)
	if err != nil {
		return Data{}, err
	}
	return Data{Items: books}, nil
}

// GetByISBN returns a book by its ISBN.
func (s *Service) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	return s.repo.GetByISBN(ctx, isbn)
}
