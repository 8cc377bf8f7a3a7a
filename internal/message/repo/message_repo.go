package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/ovaphlow/pitchfork/service-messagely/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-messagely/internal/message/entity"
	userentity "github.com/ovaphlow/pitchfork/service-messagely/internal/user/entity"
)

// NOTE: expected table schema lives in internal/migrations.

// IDSource generates message ids.
type IDSource interface {
	Next() string
}

// MessageRepo provides data access for the messages table using sqlx.
type MessageRepo struct {
	db  *sqlx.DB
	ids IDSource
}

func NewMessageRepo(db *sqlx.DB, ids IDSource) *MessageRepo {
	return &MessageRepo{db: db, ids: ids}
}

const messageColumns = `id, from_username, to_username, body, sent_at, read_at`

// Create assigns m.ID and inserts the row with read_at NULL. An unknown
// sender or recipient yields apperr.ErrNotFound.
func (r *MessageRepo) Create(ctx context.Context, m *entity.Message) error {
	const q = `INSERT INTO messages (id, from_username, to_username, body, sent_at)
		VALUES ($1, $2, $3, $4, $5)`
	id := r.ids.Next()
	if _, err := r.db.ExecContext(ctx, q, id, m.FromUsername, m.ToUsername, m.Body, m.SentAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return fmt.Errorf("recipient %q: %w", m.ToUsername, apperr.ErrNotFound)
		}
		return fmt.Errorf("db error: %w", err)
	}
	m.ID = id
	m.ReadAt = nil
	return nil
}

// GetByID returns the bare message row or apperr.ErrNotFound.
func (r *MessageRepo) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	const q = `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`
	var m entity.Message
	if err := r.db.GetContext(ctx, &m, q, id); err != nil {
		return nil, notFoundOr(err, id)
	}
	return &m, nil
}

type detailRow struct {
	ID            string     `db:"id"`
	Body          string     `db:"body"`
	SentAt        time.Time  `db:"sent_at"`
	ReadAt        *time.Time `db:"read_at"`
	FromUsername  string     `db:"from_username"`
	FromFirstName string     `db:"from_first_name"`
	FromLastName  string     `db:"from_last_name"`
	FromPhone     string     `db:"from_phone"`
	ToUsername    string     `db:"to_username"`
	ToFirstName   string     `db:"to_first_name"`
	ToLastName    string     `db:"to_last_name"`
	ToPhone       string     `db:"to_phone"`
}

// GetDetail returns the message joined with both participants.
func (r *MessageRepo) GetDetail(ctx context.Context, id string) (*entity.Detail, error) {
	const q = `SELECT m.id, m.body, m.sent_at, m.read_at,
			f.username AS from_username, f.first_name AS from_first_name,
			f.last_name AS from_last_name, f.phone AS from_phone,
			t.username AS to_username, t.first_name AS to_first_name,
			t.last_name AS to_last_name, t.phone AS to_phone
		FROM messages AS m
			JOIN users AS f ON f.username = m.from_username
			JOIN users AS t ON t.username = m.to_username
		WHERE m.id = $1`
	var row detailRow
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, notFoundOr(err, id)
	}
	return &entity.Detail{
		ID:     row.ID,
		Body:   row.Body,
		SentAt: row.SentAt,
		ReadAt: row.ReadAt,
		FromUser: userentity.Summary{
			Username: row.FromUsername, FirstName: row.FromFirstName, LastName: row.FromLastName, Phone: row.FromPhone,
		},
		ToUser: userentity.Summary{
			Username: row.ToUsername, FirstName: row.ToFirstName, LastName: row.ToLastName, Phone: row.ToPhone,
		},
	}, nil
}

// MarkRead sets read_at to at only if it is still NULL, in a single
// statement, and returns the row as stored. Repeated or concurrent calls
// keep the first timestamp.
func (r *MessageRepo) MarkRead(ctx context.Context, id string, at time.Time) (*entity.Message, error) {
	const q = `UPDATE messages SET read_at = COALESCE(read_at, $2)
		WHERE id = $1
		RETURNING ` + messageColumns
	var m entity.Message
	if err := r.db.GetContext(ctx, &m, q, id, at); err != nil {
		return nil, notFoundOr(err, id)
	}
	return &m, nil
}

// peerRow is a message joined with the other participant.
type peerRow struct {
	ID        string     `db:"id"`
	Body      string     `db:"body"`
	SentAt    time.Time  `db:"sent_at"`
	ReadAt    *time.Time `db:"read_at"`
	Username  string     `db:"username"`
	FirstName string     `db:"first_name"`
	LastName  string     `db:"last_name"`
	Phone     string     `db:"phone"`
}

func (p peerRow) peer() userentity.Summary {
	return userentity.Summary{Username: p.Username, FirstName: p.FirstName, LastName: p.LastName, Phone: p.Phone}
}

// ListFrom returns messages sent by username, oldest first.
func (r *MessageRepo) ListFrom(ctx context.Context, username string) ([]entity.Sent, error) {
	const q = `SELECT m.id, m.body, m.sent_at, m.read_at,
			u.username, u.first_name, u.last_name, u.phone
		FROM messages AS m
			JOIN users AS u ON u.username = m.to_username
		WHERE m.from_username = $1
		ORDER BY m.sent_at, m.id`
	var rows []peerRow
	if err := r.db.SelectContext(ctx, &rows, q, username); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return lo.Map(rows, func(p peerRow, _ int) entity.Sent {
		return entity.Sent{ID: p.ID, ToUser: p.peer(), Body: p.Body, SentAt: p.SentAt, ReadAt: p.ReadAt}
	}), nil
}

// ListTo returns messages received by username, oldest first.
func (r *MessageRepo) ListTo(ctx context.Context, username string) ([]entity.Received, error) {
	const q = `SELECT m.id, m.body, m.sent_at, m.read_at,
			u.username, u.first_name, u.last_name, u.phone
		FROM messages AS m
			JOIN users AS u ON u.username = m.from_username
		WHERE m.to_username = $1
		ORDER BY m.sent_at, m.id`
	var rows []peerRow
	if err := r.db.SelectContext(ctx, &rows, q, username); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return lo.Map(rows, func(p peerRow, _ int) entity.Received {
		return entity.Received{ID: p.ID, FromUser: p.peer(), Body: p.Body, SentAt: p.SentAt, ReadAt: p.ReadAt}
	}), nil
}

func notFoundOr(err error, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("message %s: %w", id, apperr.ErrNotFound)
	}
	return fmt.Errorf("db error: %w", err)
}
