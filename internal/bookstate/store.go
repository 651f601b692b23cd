package bookstate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"bookstore/internal/book"
)

const booksFetchKey = "books"

// Store is the state container for the books slice. Reads are synchronous;
// the write path runs when a dispatched fetch resolves.
//
// Without coalescing, overlapping BooksGet dispatches each hit the fetcher
// and the last one to complete wins.
type Store struct {
	fetcher Fetcher
	logger  *slog.Logger
	group   *singleflight.Group

	mu     sync.RWMutex
	state  State
	subs   map[uint64]func(State)
	nextID uint64

	// held while listeners run so they observe transitions in apply order
	notifyMu sync.Mutex
}

type Option func(*Store)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCoalescing collapses BooksGet dispatches that overlap an in-flight
// fetch into that fetch. Every caller receives its result and the state is
// replaced once. The fetch runs under the first caller's context.
func WithCoalescing() Option {
	return func(s *Store) {
		s.group = &singleflight.Group{}
	}
}

// NewStore returns a store in the default state. A nil fetcher is allowed;
// BooksGet dispatches on such a store fail with ErrNoFetcher.
func NewStore(fetcher Fetcher, opts ...Option) *Store {
	s := &Store{
		fetcher: fetcher,
		logger:  slog.Default(),
		state:   Default(),
		subs:    make(map[uint64]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch runs the handler registered for action and blocks until it
// resolves. A fetch error is returned as is and leaves the state untouched.
func (s *Store) Dispatch(ctx context.Context, action Action) error {
	switch action.(type) {
	case BooksGet, *BooksGet:
		return s.getBooks(ctx)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownAction, action)
	}
}

func (s *Store) getBooks(ctx context.Context) error {
	if s.group == nil {
		return s.loadBooks(ctx)
	}
	_, err, shared := s.group.Do(booksFetchKey, func() (any, error) {
		return nil, s.loadBooks(ctx)
	})
	if shared {
		s.logger.Debug("books fetch coalesced")
	}
	return err
}

func (s *Store) loadBooks(ctx context.Context) error {
	if s.fetcher == nil {
		return ErrNoFetcher
	}
	start := time.Now()
	s.logger.Debug("books fetch start")

	data, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.logger.Warn("books fetch failed",
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.Any("error", err),
		)
		return err
	}

	s.apply(BooksLoaded{Data: data})
	s.logger.Debug("books fetch done",
		slog.Int("items", len(data.Items)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

func (s *Store) apply(ev Event) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.state = Reduce(s.state, ev)
	next := s.state
	listeners := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next.clone())
	}
}

// State returns a copy of the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Books is SelectBooks over the current snapshot.
func (s *Store) Books() []book.Book {
	return SelectBooks(s.State())
}

// Subscribe registers fn to run after every state replacement. Listeners run
// synchronously on the dispatching goroutine and must not dispatch back into
// the store. The returned func removes the listener and is safe to call more
// than once. Each listener receives its own copy of the new state. A nil fn
// registers nothing.
func (s *Store) Subscribe(fn func(State)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}
