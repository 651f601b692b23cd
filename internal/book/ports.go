package book

import (
	"context"
)

// Repository defines the contract for book data storage.
type Repository interface {
	ListAll(ctx context.Context) ([]Book, error)
	GetByISBN(ctx context.Context, isbn string) (Book, error)
}
