package booksapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"bookstore/internal/book"
	"bookstore/internal/bookstate"
)

// ErrUnexpectedStatus is returned when the books backend answers with
// anything but 200.
var ErrUnexpectedStatus = errors.New("unexpected status code")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client fetches the book catalog over HTTP. Each call is a single attempt.
type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
}

func NewClient(baseURL, userAgent string, rps int, timeout time.Duration) *Client {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Every(time.Second / time.Duration(rps))
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
		baseURL:   strings.TrimRight(baseURL, "/"),
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// envelope accepts both the catalog API response ({success, data:{items}})
// and a bare {items} body.
type envelope struct {
	Success *bool               `json:"success"`
	Data    jsoniter.RawMessage `json:"data"`
	Items   []book.Book         `json:"items"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Fetch implements bookstate.Fetcher against GET {baseURL}/books.
func (c *Client) Fetch(ctx context.Context) (book.Data, error) {
	body, err := c.get(ctx, c.baseURL+"/books")
	if err != nil {
		return book.Data{}, err
	}
	return decodeData(body)
}

func decodeData(body []byte) (book.Data, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return book.Data{}, fmt.Errorf("decode books: %w", err)
	}

	if env.Success == nil {
		return book.Data{Items: env.Items}, nil
	}
	if !*env.Success {
		if env.Error != nil {
			return book.Data{}, fmt.Errorf("books backend error %s: %s", env.Error.Code, env.Error.Message)
		}
		return book.Data{}, errors.New("books backend reported failure")
	}

	var data book.Data
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return data, nil
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return book.Data{}, fmt.Errorf("decode books data: %w", err)
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("books request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		slog.Debug("books fetch unexpected status",
			slog.Int("status", resp.StatusCode),
			slog.String("url", url),
			slog.String("body", strings.TrimSpace(string(snippet))),
		)
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

var _ bookstate.Fetcher = (*Client)(nil)
