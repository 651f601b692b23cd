package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookstore/internal/config"
	"bookstore/internal/logging"
)

var (
	genres     = []string{"Fiction", "Science Fiction", "History", "Science", "Technology", "Romance", "Mystery", "Biography", "Philosophy", "Art"}
	languages  = []string{"en", "es", "fr", "de", "it", "pt", "zh", "ja"}
	publishers = []string{"Penguin", "HarperCollins", "Oxford", "Cambridge", "MIT Press", "Springer", "Wiley", "Elsevier"}
	words      = []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
		"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
		"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
	}
)

var seedColumns = []string{
	"isbn", "title", "subtitle", "genre", "publisher", "description",
	"published_date", "page_count", "language",
}

func main() {
	count := flag.Int("n", 500, "number of books to insert")
	truncate := flag.Bool("truncate", false, "empty the books table first")
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stdout, logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}))

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.API.DSN)
	if err != nil {
		slog.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if *truncate {
		if _, err := pool.Exec(ctx, "TRUNCATE books"); err != nil {
			slog.Error("truncate books", slog.Any("error", err))
			os.Exit(1)
		}
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	slog.Info("generating books", slog.Int("count", *count))

	inserted, err := pool.CopyFrom(ctx, pgx.Identifier{"books"}, seedColumns, pgx.CopyFromRows(generateRows(rnd, *count)))
	if err != nil {
		slog.Error("failed to insert books", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("books inserted", slog.Int64("rows", inserted))

	var total int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM books").Scan(&total); err != nil {
		slog.Warn("count books", slog.Any("error", err))
		return
	}
	slog.Info("books in database", slog.Int("total", total))
}

// generateRows builds count rows matching seedColumns. ISBNs embed a run
// stamp so repeated seeds do not collide on the unique index.
func generateRows(rnd *rand.Rand, count int) [][]any {
	stamp := time.Now().Unix() % 100000
	rows := make([][]any, 0, count)
	for i := 0; i < count; i++ {
		year := 1950 + rnd.Intn(75)
		pages := 100 + rnd.Intn(800)
		rows = append(rows, []any{
			fmt.Sprintf("978-%05d-%05d", stamp, i+1),
			fmt.Sprintf("Book Title %d - %s", i+1, pick(rnd, words)),
			fmt.Sprintf("A %s Story", pick(rnd, words)),
			pick(rnd, genres),
			pick(rnd, publishers),
			fmt.Sprintf("This is a book about %s.", pick(rnd, words)),
			fmt.Sprintf("%d-01-01", year),
			pages,
			pick(rnd, languages),
		})
	}
	return rows
}

func pick(rnd *rand.Rand, from []string) string {
	return from[rnd.Intn(len(from))]
}
