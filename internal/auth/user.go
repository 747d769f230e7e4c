package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/willemschots/newsroom/internal/krypto"
)

// User contains the data for a user.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash krypto.Argon2Hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Credentials identify a user attempting to authenticate.
type Credentials struct {
	Username string   `schema:"username"`
	Password Password `schema:"password"`
}

// ChangePassword carries everything needed to change a users password.
type ChangePassword struct {
	UserID   uuid.UUID `schema:"-"`
	Current  Password  `schema:"current_password"`
	New      Password  `schema:"new_password"`
	NewCheck Password  `schema:"verify_new_password"`
}
