package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/willemschots/newsroom/internal/errorz"
	"github.com/willemschots/newsroom/internal/krypto"
)

var (
	// ErrInvalidCredentials is returned for every credential check that
	// failed because of the provided input. Callers are deliberately not
	// told whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPasswordMismatch indicates the two copies of a new password
	// did not match.
	ErrPasswordMismatch = errors.New("new passwords do not match")

	ErrDuplicateUser = errors.New("duplicate user")
)

// Hasher runs the expensive password hash operations. Implemented by
// *HashPool.
type Hasher interface {
	Hash(ctx context.Context, pwd Password) (krypto.Argon2Hash, error)
	Verify(ctx context.Context, pwd Password, hash krypto.Argon2Hash) (bool, error)
}

// Service provides the main rules for authentication.
type Service struct {
	store  Store
	hasher Hasher

	// fallbackHash is verified against when no user was found, so a
	// credential check always pays the cost of an argon2 verification.
	// Without it the response time would reveal which usernames exist.
	fallbackHash krypto.Argon2Hash

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewService(s Store, hasher Hasher) (*Service, error) {
	tok, err := krypto.GenerateToken()
	if err != nil {
		return nil, err
	}

	hash, err := krypto.HashArgon2(tok[:])
	if err != nil {
		return nil, err
	}

	return &Service{
		store:        s,
		hasher:       hasher,
		fallbackHash: hash,
		NowFunc:      time.Now,
	}, nil
}

// ValidateCredentials checks the provided credentials and returns the ID
// of the matching user. It returns ErrInvalidCredentials if they don't
// check out, any other error means the check itself failed.
//
// The password verification is always performed, even if no user with the
// given username exists. See fallbackHash.
func (s *Service) ValidateCredentials(ctx context.Context, c Credentials) (uuid.UUID, error) {
	userID := uuid.Nil
	hash := s.fallbackHash

	users, err := s.store.FindUsers(ctx, &UserFilter{
		Usernames: []string{c.Username},
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to find user: %w", err)
	}

	if len(users) == 1 {
		userID = users[0].ID
		hash = users[0].PasswordHash
	}

	ok, err := s.hasher.Verify(ctx, c.Password, hash)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to verify password: %w", err)
	}

	if !ok || userID == uuid.Nil {
		return uuid.Nil, ErrInvalidCredentials
	}

	return userID, nil
}

// ChangePassword changes the password of an existing user:
//   - The two copies of the new password must match.
//   - The new password must pass the strength policy.
//   - The current password must check out.
//
// The new password is hashed with a fresh salt before it's stored.
func (s *Service) ChangePassword(ctx context.Context, c ChangePassword) error {
	if subtle.ConstantTimeCompare(c.New.plain, c.NewCheck.plain) != 1 {
		return ErrPasswordMismatch
	}

	newPwd, err := ParsePassword(string(c.New.plain))
	if err != nil {
		return err
	}

	username, err := s.Username(ctx, c.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve username: %w", err)
	}

	_, err = s.ValidateCredentials(ctx, Credentials{
		Username: username,
		Password: c.Current,
	})
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(ctx, newPwd)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.inTx(ctx, func(tx Tx) error {
		users, txErr := tx.FindUsers(&UserFilter{
			IDs: []uuid.UUID{c.UserID},
		})
		if txErr != nil {
			return txErr
		}

		if len(users) != 1 {
			return errorz.ErrNotFound
		}

		user := users[0]
		user.PasswordHash = hash
		user.UpdatedAt = s.NowFunc()

		return tx.UpdateUser(&user)
	})
}

// Username resolves the username for the given user ID.
func (s *Service) Username(ctx context.Context, id uuid.UUID) (string, error) {
	users, err := s.store.FindUsers(ctx, &UserFilter{
		IDs: []uuid.UUID{id},
	})
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	if len(users) != 1 {
		return "", errorz.ErrNotFound
	}

	return users[0].Username, nil
}

// CreateUser creates a new user with the given username and password.
// It returns ErrDuplicateUser if the username is already taken.
func (s *Service) CreateUser(ctx context.Context, username string, pwd Password) (uuid.UUID, error) {
	if username == "" {
		return uuid.Nil, errorz.InvalidInput{errors.New("empty username")}
	}

	hash, err := s.hasher.Hash(ctx, pwd)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.NowFunc()
	user := User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.inTx(ctx, func(tx Tx) error {
		return tx.CreateUser(&user)
	})
	if err != nil {
		if errors.Is(err, errorz.ErrConstraintViolated) {
			return uuid.Nil, ErrDuplicateUser
		}
		return uuid.Nil, err
	}

	return user.ID, nil
}

func (s *Service) inTx(ctx context.Context, f func(tx Tx) error) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}

	err = f(tx)
	if err != nil {
		rBackErr := tx.Rollback()
		if rBackErr != nil {
			err = errors.Join(err, rBackErr)
		}
		return err
	}

	return tx.Commit()
}
