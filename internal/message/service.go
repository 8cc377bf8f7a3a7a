// Package message implements direct messages between users: creation,
// participant-only reads and the recipient-only read transition.
package message

import (
	"context"
	"time"

	"github.com/ovaphlow/pitchfork/service-messagely/internal/message/entity"
)

// Repository is the message store.
type Repository interface {
	Create(ctx context.Context, m *entity.Message) error
	GetByID(ctx context.Context, id string) (*entity.Message, error)
	GetDetail(ctx context.Context, id string) (*entity.Detail, error)
	MarkRead(ctx context.Context, id string, at time.Time) (*entity.Message, error)
	ListFrom(ctx context.Context, username string) ([]entity.Sent, error)
	ListTo(ctx context.Context, username string) ([]entity.Received, error)
}

// Service applies the authorization policy around the message store.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(r Repository) *Service {
	return &Service{repo: r, now: time.Now}
}

// Create stores a message from the caller. from must be the caller's own
// identity; the handler never takes it from the request body.
func (s *Service) Create(ctx context.Context, from, to, body string) (*entity.Message, error) {
	m := &entity.Message{
		FromUsername: from,
		ToUsername:   to,
		Body:         body,
		SentAt:       s.now().UTC(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Get resolves the message, then checks the requester against its
// participants. A missing message is apperr.ErrNotFound for everyone.
func (s *Service) Get(ctx context.Context, requester, id string) (*entity.Detail, error) {
	d, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeView(requester, d.FromUser.Username, d.ToUser.Username); err != nil {
		return nil, err
	}
	return d, nil
}

// MarkRead lets the recipient set read_at. Once set it never changes, so a
// repeated call returns the first timestamp.
func (s *Service) MarkRead(ctx context.Context, requester, id string) (*entity.Message, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeMarkRead(requester, m.ToUsername); err != nil {
		return nil, err
	}
	if m.ReadAt != nil {
		return m, nil
	}
	return s.repo.MarkRead(ctx, id, s.now().UTC())
}

// ListFrom returns the outbox of username.
func (s *Service) ListFrom(ctx context.Context, username string) ([]entity.Sent, error) {
	return s.repo.ListFrom(ctx, username)
}

// ListTo returns the inbox of username.
func (s *Service) ListTo(ctx context.Context, username string) ([]entity.Received, error) {
	return s.repo.ListTo(ctx, username)
}
