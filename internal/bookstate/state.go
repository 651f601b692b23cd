// Package bookstate holds the client-side books slice: a state snapshot, the
// transition applied when a fetch resolves, and the selector read by views.
package bookstate

import (
	"slices"

	"bookstore/internal/book"
)

// State is the books slice snapshot.
type State struct {
	Data book.Data `json:"data"`
}

func (s State) clone() State {
	return State{Data: book.Data{Items: slices.Clone(s.Data.Items)}}
}

// Default returns the initial state, { data: {} }.
func Default() State {
	return State{Data: book.Data{}}
}

// Event is a resolved outcome that moves the state forward.
type Event interface {
	isEvent()
}

// BooksLoaded carries the payload of a successful fetch.
type BooksLoaded struct {
	Data book.Data
}

func (BooksLoaded) isEvent() {}

// Reduce returns the state that follows ev. BooksLoaded replaces Data
// wholesale; nothing from the previous Data survives. Unknown events leave
// the state as is.
func Reduce(state State, ev Event) State {
	switch e := ev.(type) {
	case BooksLoaded:
		state.Data = book.Data{Items: slices.Clone(e.Data.Items)}
	case *BooksLoaded:
		if e != nil {
			state.Data = book.Data{Items: slices.Clone(e.Data.Items)}
		}
	}
	return state
}

// SelectBooks projects the book list out of state. It never returns nil and
// the result does not alias the snapshot.
func SelectBooks(state State) []book.Book {
	if len(state.Data.Items) == 0 {
		return []book.Book{}
	}
	return slices.Clone(state.Data.Items)
}
