package sessions

import (
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// Session wraps a gorilla session and tracks whether it was modified.
type Session struct {
	base      *sessions.Session
	needsSave bool
}

func (s *Session) NeedsSave() bool {
	return s.needsSave
}

func (s *Session) UserID() (uuid.UUID, bool) {
	raw, ok := s.base.Values["userID"].(string)
	if !ok {
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}

	return userID, true
}

func (s *Session) SetUserID(userID uuid.UUID) {
	s.needsSave = true
	// Stored as a string so the session codec doesn't need to know
	// about the uuid type.
	s.base.Values["userID"] = userID.String()
}

func (s *Session) DeleteUserID() {
	s.needsSave = true
	delete(s.base.Values, "userID")
}

func (s *Session) AddFlash(flash any, vars ...string) {
	s.needsSave = true
	s.base.AddFlash(flash, vars...)
}

// Flashes returns and clears the flash messages. The session needs to
// be saved afterwards, otherwise the messages will show up again.
func (s *Session) Flashes() []any {
	s.needsSave = true
	return s.base.Flashes()
}
