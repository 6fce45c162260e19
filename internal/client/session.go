package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/iliyamo/messestand-kalkulator/internal/model"
)

// ErrNoSession is returned by SessionStore.Load when nobody is logged in.
var ErrNoSession = errors.New("nicht angemeldet")

// Session is what survives between two runs of the client.
type Session struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

// SessionStore keeps the session in a JSON file readable only by the
// current user.
type SessionStore struct {
	Path string
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{Path: path}
}

func (s *SessionStore) Load() (Session, error) {
	raw, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, fmt.Errorf("session file %s: %w", s.Path, err)
	}
	if sess.Token == "" {
		return Session{}, ErrNoSession
	}
	return sess, nil
}

func (s *SessionStore) Save(sess Session) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, raw, 0o600)
}

// Clear removes the session.  Clearing twice is not an error.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
