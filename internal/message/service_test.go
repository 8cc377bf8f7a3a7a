package message

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-messagely/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-messagely/internal/message/entity"
	userentity "github.com/ovaphlow/pitchfork/service-messagely/internal/user/entity"
)

// memRepo mirrors the SQL store: MarkRead only fills a NULL read_at.
type memRepo struct {
	mu     sync.Mutex
	seq    int
	rows   map[string]entity.Message
	writes int
}

func newMemRepo() *memRepo { return &memRepo{rows: map[string]entity.Message{}} }

func summary(u string) userentity.Summary {
	return userentity.Summary{Username: u, FirstName: u + "-first"}
}

func (r *memRepo) Create(_ context.Context, m *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ToUsername == "ghost" {
		return fmt.Errorf("recipient %q: %w", m.ToUsername, apperr.ErrNotFound)
	}
	r.seq++
	m.ID = fmt.Sprint(r.seq)
	r.rows[m.ID] = *m
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &m, nil
}

func (r *memRepo) GetDetail(ctx context.Context, id string) (*entity.Detail, error) {
	m, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &entity.Detail{
		ID: m.ID, Body: m.Body, SentAt: m.SentAt, ReadAt: m.ReadAt,
		FromUser: summary(m.FromUsername), ToUser: summary(m.ToUsername),
	}, nil
}

func (r *memRepo) MarkRead(_ context.Context, id string, at time.Time) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	r.writes++
	if m.ReadAt == nil {
		m.ReadAt = &at
		r.rows[id] = m
	}
	return &m, nil
}

func (r *memRepo) sorted() []entity.Message {
	out := make([]entity.Message, 0, len(r.rows))
	for _, m := range r.rows {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	return out
}

func (r *memRepo) ListFrom(_ context.Context, username string) ([]entity.Sent, error) {
	out := []entity.Sent{}
	for _, m := range r.sorted() {
		if m.FromUsername == username {
			out = append(out, entity.Sent{ID: m.ID, ToUser: summary(m.ToUsername), Body: m.Body, SentAt: m.SentAt, ReadAt: m.ReadAt})
		}
	}
	return out, nil
}

func (r *memRepo) ListTo(_ context.Context, username string) ([]entity.Received, error) {
	out := []entity.Received{}
	for _, m := range r.sorted() {
		if m.ToUsername == username {
			out = append(out, entity.Received{ID: m.ID, FromUser: summary(m.FromUsername), Body: m.Body, SentAt: m.SentAt, ReadAt: m.ReadAt})
		}
	}
	return out, nil
}

func newService(t *testing.T) (*Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	svc := NewService(repo)
	tick := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return svc, repo
}

func TestCreate(t *testing.T) {
	svc, _ := newService(t)

	m, err := svc.Create(context.Background(), "alice", "bob", "hi")
	require.NoError(t, err)
	require.NotEmpty(t, m.ID)
	require.Equal(t, "alice", m.FromUsername)
	require.False(t, m.SentAt.IsZero())
	require.Nil(t, m.ReadAt)
}

func TestCreate_UnknownRecipient(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), "alice", "ghost", "hi")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGet_OnlyParticipants(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	m, err := svc.Create(ctx, "alice", "bob", "hi")
	require.NoError(t, err)

	asAlice, err := svc.Get(ctx, "alice", m.ID)
	require.NoError(t, err)
	asBob, err := svc.Get(ctx, "bob", m.ID)
	require.NoError(t, err)
	require.Equal(t, asAlice, asBob)
	require.Equal(t, "alice", asBob.FromUser.Username)

	_, err = svc.Get(ctx, "carol", m.ID)
	require.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.Get(ctx, "", m.ID)
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestGet_Missing(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Get(context.Background(), "carol", "404")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMarkRead(t *testing.T) {
	req := require.New(t)
	svc, repo := newService(t)
	ctx := context.Background()
	m, err := svc.Create(ctx, "alice", "bob", "hi")
	req.NoError(err)

	_, err = svc.MarkRead(ctx, "alice", m.ID)
	req.ErrorIs(err, apperr.ErrForbidden)
	_, err = svc.MarkRead(ctx, "carol", m.ID)
	req.ErrorIs(err, apperr.ErrForbidden)
	req.Zero(repo.writes, "rejected callers must not reach the store")

	first, err := svc.MarkRead(ctx, "bob", m.ID)
	req.NoError(err)
	req.NotNil(first.ReadAt)

	again, err := svc.MarkRead(ctx, "bob", m.ID)
	req.NoError(err)
	req.Equal(*first.ReadAt, *again.ReadAt)
}

func TestMarkRead_Missing(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.MarkRead(context.Background(), "bob", "404")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMarkRead_Concurrent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	m, err := svc.Create(ctx, "alice", "bob", "hi")
	require.NoError(t, err)

	// svc.now is not safe for concurrent use; give each call a fixed clock
	var clockMu sync.Mutex
	base := time.Now().UTC()
	n := 0
	svc.now = func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		n++
		return base.Add(time.Duration(n) * time.Millisecond)
	}

	var wg sync.WaitGroup
	results := make([]time.Time, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := svc.MarkRead(ctx, "bob", m.ID)
			if err == nil {
				results[i] = *got.ReadAt
			}
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		require.Equal(t, results[0], r)
	}
}

func TestListFromAndTo(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, "alice", "bob", "one")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "alice", "bob", "two")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "bob", "alice", "reply")
	require.NoError(t, err)

	sent, err := svc.ListFrom(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, sent, 2)
	require.Equal(t, "one", sent[0].Body)
	require.Equal(t, "two", sent[1].Body)
	require.Equal(t, "bob", sent[0].ToUser.Username)

	inbox, err := svc.ListTo(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	require.Equal(t, "bob", inbox[0].FromUser.Username)
}
