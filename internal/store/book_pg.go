package store

//Repository implementation (Postgres)

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookstore/internal/book"
	"bookstore/internal/bookstate"
)

const bookColumns = `id, isbn, title, subtitle, genre, publisher, description,
	published_date, page_count, language, cover_url, created_at, updated_at`

type BookPG struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewBookPG(db *pgxpool.Pool, timeout time.Duration) *BookPG {
	return &BookPG{db: db, timeout: timeout}
}

func (r *BookPG) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// ListAll returns the whole catalog ordered by title.
func (r *BookPG) ListAll(ctx context.Context) ([]book.Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+bookColumns+` FROM books ORDER BY title, id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanBook)
}

func (r *BookPG) GetByISBN(ctx context.Context, isbn string) (book.Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+bookColumns+` FROM books WHERE isbn = $1`, isbn)
	if err != nil {
		return book.Book{}, err
	}
	b, err := pgx.CollectExactlyOneRow(rows, scanBook)
	if errors.Is(err, pgx.ErrNoRows) {
		return book.Book{}, book.ErrNotFound
	}
	return b, err
}

// Fetch lets a co-located store load straight from the catalog database.
func (r *BookPG) Fetch(ctx context.Context) (book.Data, error) {
	books, err := r.ListAll(ctx)
	if err != nil {
		return book.Data{}, err
	}
	return book.Data{Items: books}, nil
}

func scanBook(row pgx.CollectableRow) (book.Book, error) {
	var (
		b                                       book.Book
		subtitle, genre, publisher, description *string
		publishedDate, language                 *string
	)
	err := row.Scan(
		&b.ID, &b.ISBN, &b.Title, &subtitle, &genre, &publisher, &description,
		&publishedDate, &b.PageCount, &language, &b.CoverURL, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return book.Book{}, err
	}
	b.Subtitle = deref(subtitle)
	b.Genre = deref(genre)
	b.Publisher = deref(publisher)
	b.Description = deref(description)
	b.PublishedDate = deref(publishedDate)
	b.Language = deref(language)
	return b, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var (
	_ book.Repository   = (*BookPG)(nil)
	_ bookstate.Fetcher = (*BookPG)(nil)
)
