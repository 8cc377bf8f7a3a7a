package entity

import (
	"time"

	userentity "github.com/ovaphlow/pitchfork/service-messagely/internal/user/entity"
)

// Message is a row in the `messages` table. ReadAt stays nil until the
// recipient marks it read and is never cleared afterwards.
type Message struct {
	ID           string     `db:"id" json:"id"`
	FromUsername string     `db:"from_username" json:"from_username"`
	ToUsername   string     `db:"to_username" json:"to_username"`
	Body         string     `db:"body" json:"body"`
	SentAt       time.Time  `db:"sent_at" json:"sent_at"`
	ReadAt       *time.Time `db:"read_at" json:"read_at"`
}

// Detail is a message with both participants embedded.
type Detail struct {
	ID       string             `json:"id"`
	Body     string             `json:"body"`
	SentAt   time.Time          `json:"sent_at"`
	ReadAt   *time.Time         `json:"read_at"`
	FromUser userentity.Summary `json:"from_user"`
	ToUser   userentity.Summary `json:"to_user"`
}

// Sent is an outbox entry.
type Sent struct {
	ID     string             `json:"id"`
	ToUser userentity.Summary `json:"to_user"`
	Body   string             `json:"body"`
	SentAt time.Time          `json:"sent_at"`
	ReadAt *time.Time         `json:"read_at"`
}

// Received is an inbox entry.
type Received struct {
	ID       string             `json:"id"`
	FromUser userentity.Summary `json:"from_user"`
	Body     string             `json:"body"`
	SentAt   time.Time          `json:"sent_at"`
	ReadAt   *time.Time         `json:"read_at"`
}
