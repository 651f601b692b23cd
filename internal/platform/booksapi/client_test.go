package booksapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/books", r.URL.Path)
		assert.Equal(t, "bookstore-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Fetch(t *testing.T) {
	ctx := context.Background()

	t.Run("catalog envelope", func(t *testing.T) {
		srv := newTestServer(t, http.StatusOK, `{"success":true,"data":{"items":[{"id":"1","isbn":"111","title":"Dune"},{"id":"2","isbn":"222","title":"Emma"}]},"meta":{"total":2}}`)
		c := NewClient(srv.URL+"/", "bookstore-test", 0, time.Second)

		data, err := c.Fetch(ctx)
		require.NoError(t, err)
		require.Len(t, data.Items, 2)
		assert.Equal(t, "Dune", data.Items[0].Title)
		assert.Equal(t, "222", data.Items[1].ISBN)
	})

	t.Run("bare items body", func(t *testing.T) {
		srv := newTestServer(t, http.StatusOK, `{"items":[{"id":"3","title":"Ulysses"}]}`)
		c := NewClient(srv.URL, "bookstore-test", 10, time.Second)

		data, err := c.Fetch(ctx)
		require.NoError(t, err)
		require.Len(t, data.Items, 1)
		assert.Equal(t, "Ulysses", data.Items[0].Title)
	})

	t.Run("missing items", func(t *testing.T) {
		srv := newTestServer(t, http.StatusOK, `{}`)
		c := NewClient(srv.URL, "bookstore-test", 0, time.Second)

		data, err := c.Fetch(ctx)
		require.NoError(t, err)
		assert.Nil(t, data.Items)
	})

	t.Run("envelope without items", func(t *testing.T) {
		srv := newTestServer(t, http.StatusOK, `{"success":true,"data":{}}`)
		c := NewClient(srv.URL, "bookstore-test", 0, time.Second)

		data, err := c.Fetch(ctx)
		require.NoError(t, err)
		assert.Nil(t, data.Items)
	})

	t.Run("error envelope", func(t *testing.T) {
		srv := newTestServer(t, http.StatusOK, `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"db down"}}`)
		c := NewClient(srv.URL, "bookstore-test", 0, time.Second)

		_, err := c.Fetch(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "INTERNAL_ERROR")
	})

	t.Run("non-200 status", func(t *testing.T) {
		srv := newTestServer(t, http.StatusServiceUnavailable, `oops`)
		c := NewClient(srv.URL, "bookstore-test", 0, time.Second)

		_, err := c.Fetch(ctx)
		assert.ErrorIs(t, err, ErrUnexpectedStatus)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := newTestServer(t, http.StatusOK, `{"items":`)
		c := NewClient(srv.URL, "bookstore-test", 0, time.Second)

		_, err := c.Fetch(ctx)
		assert.Error(t, err)
	})
}

func TestClient_Fetch_CanceledContext(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "bookstore-test", 1, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Fetch(ctx)
	assert.Error(t, err)
}
