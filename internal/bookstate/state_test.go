package bookstate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore/internal/book"
)

var (
	b1 = book.Book{ID: "1", ISBN: "9780000000001", Title: "Dune"}
	b2 = book.Book{ID: "2", ISBN: "9780000000002", Title: "Emma"}
	b3 = book.Book{ID: "3", ISBN: "9780000000003", Title: "Ulysses"}
)

func TestDefault_SelectsEmptyList(t *testing.T) {
	got := SelectBooks(Default())
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReduce_BooksLoaded(t *testing.T) {
	tests := []struct {
		name  string
		state State
		data  book.Data
		want  []book.Book
	}{
		{
			name:  "loads into default",
			state: Default(),
			data:  book.Data{Items: []book.Book{b1, b2}},
			want:  []book.Book{b1, b2},
		},
		{
			name:  "replaces previous items",
			state: State{Data: book.Data{Items: []book.Book{b1}}},
			data:  book.Data{Items: []book.Book{b3}},
			want:  []book.Book{b3},
		},
		{
			name:  "missing items clears list",
			state: State{Data: book.Data{Items: []book.Book{b1}}},
			data:  book.Data{},
			want:  []book.Book{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := Reduce(tt.state, BooksLoaded{Data: tt.data})
			assert.Equal(t, tt.want, SelectBooks(next))
		})
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	prev := State{Data: book.Data{Items: []book.Book{b1}}}
	_ = Reduce(prev, BooksLoaded{Data: book.Data{Items: []book.Book{b3}}})

	assert.Equal(t, []book.Book{b1}, prev.Data.Items)
}

func TestReduce_DetachesFromPayload(t *testing.T) {
	payload := []book.Book{b1, b2}
	next := Reduce(Default(), BooksLoaded{Data: book.Data{Items: payload}})

	payload[0] = b3

	assert.Equal(t, []book.Book{b1, b2}, SelectBooks(next))
}

func TestReduce_PointerEvent(t *testing.T) {
	next := Reduce(Default(), &BooksLoaded{Data: book.Data{Items: []book.Book{b2}}})
	assert.Equal(t, []book.Book{b2}, SelectBooks(next))

	var nilEvent *BooksLoaded
	assert.Equal(t, next, Reduce(next, nilEvent))
}

func TestSelectBooks_IsPure(t *testing.T) {
	state := State{Data: book.Data{Items: []book.Book{b1, b2}}}

	first := SelectBooks(state)
	first[0] = b3
	second := SelectBooks(state)

	assert.Equal(t, []book.Book{b1, b2}, second)
	assert.Equal(t, second, SelectBooks(state))
}

func TestStore_SnapshotsDoNotAliasState(t *testing.T) {
	store := NewStore(FetcherFunc(func(context.Context) (book.Data, error) {
		return book.Data{Items: []book.Book{b1, b2}}, nil
	}), WithLogger(quietLogger()))

	unsubscribe := store.Subscribe(func(s State) {
		s.Data.Items[1] = b3
	})
	defer unsubscribe()

	require.NoError(t, store.Dispatch(context.Background(), BooksGet{}))
	assert.Equal(t, []book.Book{b1, b2}, store.Books())

	snap := store.State()
	snap.Data.Items[0] = b3
	assert.Equal(t, []book.Book{b1, b2}, store.Books())
	assert.Equal(t, []book.Book{b1, b2}, store.State().Data.Items)
}
