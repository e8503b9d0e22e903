package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/yukikurage/taskboard/internal/dto"
)

// Session is everything the client keeps between runs.
type Session struct {
	Token       string       `json:"token,omitempty"`
	User        *dto.UserDTO `json:"user,omitempty"`
	FilterState *FilterState `json:"filterState,omitempty"`
}

type Storage interface {
	Load() (Session, error)
	Save(Session) error
}

// FileStorage keeps the session as a JSON file.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// DefaultStatePath is state.json under the user config directory.
func DefaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "taskboard", "state.json"), nil
}

func (s *FileStorage) Path() string {
	return s.path
}

// Load returns an empty session when the file does not exist yet.
func (s *FileStorage) Load() (Session, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, err
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return Session{}, fmt.Errorf("corrupt state file %s: %w", s.path, err)
	}
	return session, nil
}

func (s *FileStorage) Save(session Session) error {
	raw, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	// Write then rename so a crash never leaves half a file
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Store is the in-memory session backed by a Storage. It satisfies
// client.Credentials.
type Store struct {
	mu      sync.Mutex
	storage Storage
	session Session
}

// OpenStore loads the session from storage.
func OpenStore(storage Storage) (*Store, error) {
	session, err := storage.Load()
	if err != nil {
		return nil, err
	}
	return &Store{storage: storage, session: session}, nil
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Token
}

func (s *Store) User() *dto.UserDTO {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.User == nil {
		return nil
	}
	user := *s.session.User
	return &user
}

// LoggedIn requires both a token and a user, like the login check at startup.
func (s *Store) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Token != "" && s.session.User != nil
}

func (s *Store) SetAuth(token string, user dto.UserDTO) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Token = token
	s.session.User = &user
	return s.storage.Save(s.session)
}

// ClearAuth forgets the token and user. The filter preference survives.
func (s *Store) ClearAuth() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Token = ""
	s.session.User = nil
	return s.storage.Save(s.session)
}

func (s *Store) Filter() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.FilterState == nil {
		return DefaultFilterState()
	}
	return s.session.FilterState.withDefaults()
}

func (s *Store) SetFilter(f FilterState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.FilterState = &f
	return s.storage.Save(s.session)
}
