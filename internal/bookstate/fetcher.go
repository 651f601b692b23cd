package bookstate

import (
	"context"

	"bookstore/internal/book"
)

//go:generate mockgen -source=fetcher.go -destination=mock_fetcher_test.go -package=bookstate

// Fetcher loads the current books payload from wherever the catalog lives.
type Fetcher interface {
	Fetch(ctx context.Context) (book.Data, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context) (book.Data, error)

func (f FetcherFunc) Fetch(ctx context.Context) (book.Data, error) {
	return f(ctx)
}
