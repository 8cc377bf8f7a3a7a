package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-messagely/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-messagely/internal/user/entity"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Repository is the credential store.
type Repository interface {
	Create(ctx context.Context, u *entity.User) error
	GetPasswordHash(ctx context.Context, username string) (string, error)
	TouchLogin(ctx context.Context, username string, at time.Time) error
	List(ctx context.Context) ([]entity.Summary, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}

// TokenIssuer mints bearer tokens after registration and login.
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// UserService orchestrates registration, authentication and profile reads.
type UserService struct {
	repo   Repository
	hasher PasswordHasher
	tokens TokenIssuer
	now    func() time.Time
}

func NewUserService(r Repository, hasher PasswordHasher, tokens TokenIssuer) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	return &UserService{repo: r, hasher: hasher, tokens: tokens, now: time.Now}
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Register hashes the password and stores the user with join_at and
// last_login_at both set to now. A taken username yields apperr.ErrConflict.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password longer than 72 bytes", apperr.ErrInvalidInput)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	u := &entity.User{
		Username:     in.Username,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		JoinAt:       now,
		LastLoginAt:  &now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

// Authenticate reports whether password matches the stored hash. An
// unknown username is apperr.ErrInvalidCredentials; a wrong password is a
// plain false.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	hash, err := s.repo.GetPasswordHash(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, apperr.ErrInvalidCredentials
		}
		return false, err
	}
	return s.hasher.Verify(hash, password), nil
}

// TouchLogin records a successful login.
func (s *UserService) TouchLogin(ctx context.Context, username string) error {
	return s.repo.TouchLogin(ctx, username, s.now().UTC())
}

// Login authenticates, records the login and returns a fresh token. Unknown
// user and wrong password produce the same error.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	ok, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperr.ErrInvalidCredentials
	}
	if err := s.TouchLogin(ctx, username); err != nil {
		return "", err
	}
	return s.IssueToken(username)
}

// IssueToken mints a token for username.
func (s *UserService) IssueToken(username string) (string, error) {
	return s.tokens.Issue(username)
}

// ListAll returns public fields of all users.
func (s *UserService) ListAll(ctx context.Context) ([]entity.Summary, error) {
	return s.repo.List(ctx)
}

// GetByUsername returns the full profile or apperr.ErrNotFound.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return s.repo.GetByUsername(ctx, username)
}
