package bookstate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore/internal/book"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *MockFetcher) {
	t.Helper()
	ctrl := gomock.NewController(t)
	fetcher := NewMockFetcher(ctrl)
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return NewStore(fetcher, opts...), fetcher
}

func TestStore_DefaultState(t *testing.T) {
	store, _ := newTestStore(t)

	assert.Equal(t, Default(), store.State())
	books := store.Books()
	require.NotNil(t, books)
	assert.Empty(t, books)
}

func TestStore_DispatchBooksGet(t *testing.T) {
	ctx := context.Background()

	t.Run("successful fetch", func(t *testing.T) {
		store, fetcher := newTestStore(t)
		fetcher.EXPECT().Fetch(gomock.Any()).Return(book.Data{Items: []book.Book{b1, b2}}, nil)

		require.NoError(t, store.Dispatch(ctx, BooksGet{}))
		assert.Equal(t, []book.Book{b1, b2}, store.Books())
	})

	t.Run("second fetch replaces first", func(t *testing.T) {
		store, fetcher := newTestStore(t)
		gomock.InOrder(
			fetcher.EXPECT().Fetch(gomock.Any()).Return(book.Data{Items: []book.Book{b1}}, nil),
			fetcher.EXPECT().Fetch(gomock.Any()).Return(book.Data{Items: []book.Book{b3}}, nil),
		)

		require.NoError(t, store.Dispatch(ctx, BooksGet{}))
		require.NoError(t, store.Dispatch(ctx, &BooksGet{}))
		assert.Equal(t, []book.Book{b3}, store.Books())
	})

	t.Run("missing items field", func(t *testing.T) {
		store, fetcher := newTestStore(t)
		fetcher.EXPECT().Fetch(gomock.Any()).Return(book.Data{}, nil)

		require.NoError(t, store.Dispatch(ctx, BooksGet{}))
		books := store.Books()
		require.NotNil(t, books)
		assert.Empty(t, books)
	})

	t.Run("fetch error propagates unchanged", func(t *testing.T) {
		store, fetcher := newTestStore(t)
		fetchErr := errors.New("backend down")
		gomock.InOrder(
			fetcher.EXPECT().Fetch(gomock.Any()).Return(book.Data{Items: []book.Book{b1}}, nil),
			fetcher.EXPECT().Fetch(gomock.Any()).Return(book.Data{}, fetchErr),
		)

		require.NoError(t, store.Dispatch(ctx, BooksGet{}))
		err := store.Dispatch(ctx, BooksGet{})
		assert.Same(t, fetchErr, err)
		assert.Equal(t, []book.Book{b1}, store.Books())
	})

	t.Run("context is passed to fetcher", func(t *testing.T) {
		store, fetcher := newTestStore(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		fetcher.EXPECT().Fetch(cctx).DoAndReturn(func(ctx context.Context) (book.Data, error) {
			return book.Data{}, ctx.Err()
		})

		err := store.Dispatch(cctx, BooksGet{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

type otherAction struct{}

func (otherAction) Type() string { return "other" }

func TestStore_DispatchUnknownAction(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Dispatch(context.Background(), otherAction{})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestStore_SelectorStableWithoutDispatch(t *testing.T) {
	store, fetcher := newTestStore(t)
	fetcher.EXPECT().Fetch(gomock.Any()).Return(book.Data{Items: []book.Book{b1, b2}}, nil)
	require.NoError(t, store.Dispatch(context.Background(), BooksGet{}))

	first := store.Books()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, store.Books())
	}
}

func TestStore_Subscribe(t *testing.T) {
	store, fetcher := newTestStore(t)
	fetcher.EXPECT().Fetch(gomock.Any()).Return(book.Data{Items: []book.Book{b1}}, nil)
	fetcher.EXPECT().Fetch(gomock.Any()).Return(book.Data{}, errors.New("boom"))
	fetcher.EXPECT().Fetch(gomock.Any()).Return(book.Data{Items: []book.Book{b2}}, nil)

	var seen [][]book.Book
	unsubscribe := store.Subscribe(func(s State) {
		seen = append(seen, SelectBooks(s))
	})

	ctx := context.Background()
	require.NoError(t, store.Dispatch(ctx, BooksGet{}))
	require.Error(t, store.Dispatch(ctx, BooksGet{}))

	unsubscribe()
	unsubscribe()
	require.NoError(t, store.Dispatch(ctx, BooksGet{}))

	assert.Equal(t, [][]book.Book{{b1}}, seen)
}

func TestStore_LastCompletedFetchWins(t *testing.T) {
	store, fetcher := newTestStore(t)
	started := make(chan struct{})
	release := make(chan struct{})

	gomock.InOrder(
		fetcher.EXPECT().Fetch(gomock.Any()).DoAndReturn(func(context.Context) (book.Data, error) {
			close(started)
			<-release
			return book.Data{Items: []book.Book{b1}}, nil
		}),
		fetcher.EXPECT().Fetch(gomock.Any()).Return(book.Data{Items: []book.Book{b3}}, nil),
	)

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- store.Dispatch(ctx, BooksGet{}) }()

	<-started
	require.NoError(t, store.Dispatch(ctx, BooksGet{}))
	assert.Equal(t, []book.Book{b3}, store.Books())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, []book.Book{b1}, store.Books())
}

func TestStore_WithCoalescing(t *testing.T) {
	store, fetcher := newTestStore(t, WithCoalescing())
	started := make(chan struct{})
	release := make(chan struct{})

	fetcher.EXPECT().Fetch(gomock.Any()).DoAndReturn(func(context.Context) (book.Data, error) {
		close(started)
		<-release
		return book.Data{Items: []book.Book{b2}}, nil
	}).Times(1)

	var notifications int
	store.Subscribe(func(State) { notifications++ })

	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, 3)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- store.Dispatch(ctx, BooksGet{})
	}()
	<-started

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.Dispatch(ctx, BooksGet{})
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, []book.Book{b2}, store.Books())
	assert.Equal(t, 1, notifications)
}

func TestStore_ConcurrentReads(t *testing.T) {
	store, fetcher := newTestStore(t)
	fetcher.EXPECT().Fetch(gomock.Any()).Return(book.Data{Items: []book.Book{b1, b2}}, nil).AnyTimes()

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Dispatch(ctx, BooksGet{})
		}()
		go func() {
			defer wg.Done()
			books := store.Books()
			assert.True(t, len(books) == 0 || len(books) == 2)
		}()
	}
	wg.Wait()
	assert.Equal(t, []book.Book{b1, b2}, store.Books())
}

func TestStore_NilCollaborators(t *testing.T) {
	store := NewStore(nil, WithLogger(quietLogger()))

	unsubscribe := store.Subscribe(nil)
	unsubscribe()

	err := store.Dispatch(context.Background(), BooksGet{})
	assert.ErrorIs(t, err, ErrNoFetcher)
	assert.Equal(t, Default(), store.State())
	assert.Empty(t, store.Books())
}
