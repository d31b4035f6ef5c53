package client

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"cogniflow/internal/domain/user"
)

// session is the state persisted across client runs: who is logged in and,
// in remote mode, the bearer token.
type session struct {
	Mode      string       `json:"mode"`
	Profile   user.Profile `json:"profile"`
	Token     string       `json:"token,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// sessionStore reads and writes the session file under the config dir.
type sessionStore struct {
	path string
}

func newSessionStore(path string) *sessionStore {
	return &sessionStore{path: path}
}

// Load returns the persisted session, or nil when none exists.
func (s *sessionStore) Load() (*session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var sess session
	if err := json.Unmarshal(data, &sess); err != nil {
		// A corrupt session file means logging in again, not a crash.
		return nil, nil
	}
	return &sess, nil
}

func (s *sessionStore) Save(sess *session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *sessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
