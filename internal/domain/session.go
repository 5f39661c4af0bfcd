package domain

import "time"

// Session is the authenticated state returned by the login endpoint. The
// SessionID is replayed as the peloton_session_id cookie on later requests.
type Session struct {
	UserID    string
	SessionID string
	CreatedAt time.Time
}

func (s Session) Valid() bool {
	return s.UserID != ""
}
