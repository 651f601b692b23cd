package bookstate

import (
	"errors"
)

// ErrUnknownAction is returned by Dispatch for actions the store has no
// handler for. ErrNoFetcher is returned for BooksGet on a store built
// without a fetcher.
var (
	ErrUnknownAction = errors.New("unknown action")
	ErrNoFetcher     = errors.New("books store has no fetcher")
)

// Action is a trigger dispatched to the store.
type Action interface {
	Type() string
}

// BooksGet asks the store to (re)fetch all books.
type BooksGet struct{}

func (BooksGet) Type() string { return "[Books] Get" }
