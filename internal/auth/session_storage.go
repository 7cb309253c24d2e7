package auth

import (
	"log"

	"github.com/gin-contrib/sessions"
	"github.com/logto-io/go/v2/client"
)

// SessionStorage adapts the gin cookie session to the storage interface the
// Logto client persists its tokens through.
type SessionStorage struct {
	session sessions.Session
}

func NewSessionStorage(session sessions.Session) client.Storage {
	return &SessionStorage{session: session}
}

func (s *SessionStorage) GetItem(key string) string {
	value := s.session.Get(key)
	if value == nil {
		return ""
	}
	return value.(string)
}

func (s *SessionStorage) SetItem(key, value string) {
	s.session.Set(key, value)
	if err := s.session.Save(); err != nil {
		log.Printf("[SessionStorage] Failed to save session: %v", err)
	}
}
