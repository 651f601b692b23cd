package storefront

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"bookstore/internal/book"
)

const messageTypeBooks = "books.snapshot"

var json = jsoniter.ConfigFastest

// Message is the frame pushed to websocket subscribers.
type Message struct {
	Type      string      `json:"type"`
	Items     []book.Book `json:"items"`
	Timestamp time.Time   `json:"timestamp"`
}

func encodeBooks(items []book.Book) ([]byte, error) {
	return json.Marshal(Message{
		Type:      messageTypeBooks,
		Items:     items,
		Timestamp: time.Now().UTC(),
	})
}
