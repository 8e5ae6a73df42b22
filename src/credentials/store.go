package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/SmooSenseAI/itrade/src/eventmodels"
)

// MaxAge is how long a cached credential is trusted. The broker expires
// access tokens at midnight US Eastern; 12 hours is a conservative proxy.
const MaxAge = 12 * time.Hour

// DefaultPath returns ~/.itrade/auth.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("DefaultPath: failed to resolve home directory: %w", err)
	}

	return filepath.Join(home, ".itrade", "auth.json"), nil
}

// Store is a single-slot credential cache backed by one JSON file.
type Store struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path: path,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) Path() string {
	return s.path
}

// Save overwrites the cached credential. CreatedAt is stamped with the
// current time unless the caller already set it.
func (s *Store) Save(cred eventmodels.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = s.now()
	}
	cred.CreatedAt = cred.CreatedAt.UTC()

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("Store.Save: failed to marshal credential: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("Store.Save: failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".auth-*.json")
	if err != nil {
		return fmt.Errorf("Store.Save: failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("Store.Save: failed to write temp file: %w", err)
	}

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("Store.Save: failed to chmod temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("Store.Save: failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("Store.Save: failed to move credential into place: %w", err)
	}

	log.Debugf("saved credential to %s", s.path)

	return nil
}

// cachedCredential mirrors the file layout; created_at is kept as a string so
// a malformed timestamp reads as a cache miss instead of a decode error.
type cachedCredential struct {
	ConsumerKey       string  `json:"consumer_key"`
	ConsumerSecret    string  `json:"consumer_secret"`
	AccessToken       string  `json:"oauth_token"`
	AccessTokenSecret string  `json:"oauth_token_secret"`
	CreatedAt         *string `json:"created_at"`
}

// Load returns the cached credential, or false when there is none usable. An
// expired credential is deleted.
func (s *Store) Load() (*eventmodels.Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warnf("Store.Load: failed to read %s: %v", s.path, err)
		}
		return nil, false
	}

	var cached cachedCredential
	if err := json.Unmarshal(data, &cached); err != nil {
		log.Warnf("Store.Load: ignoring malformed credential file %s: %v", s.path, err)
		return nil, false
	}

	if cached.CreatedAt == nil || *cached.CreatedAt == "" {
		return nil, false
	}

	createdAt, err := time.Parse(time.RFC3339Nano, *cached.CreatedAt)
	if err != nil {
		log.Warnf("Store.Load: ignoring credential with bad created_at %q", *cached.CreatedAt)
		return nil, false
	}

	cred := eventmodels.Credential{
		ConsumerKey:       cached.ConsumerKey,
		ConsumerSecret:    cached.ConsumerSecret,
		AccessToken:       cached.AccessToken,
		AccessTokenSecret: cached.AccessTokenSecret,
		CreatedAt:         createdAt,
	}

	if cred.Age(s.now()) > MaxAge {
		log.Infof("cached credential expired (created %s), removing", createdAt.Format(time.RFC3339))
		if err := s.remove(); err != nil {
			log.Warnf("Store.Load: %v", err)
		}
		return nil, false
	}

	if !cred.IsComplete() {
		return nil, false
	}

	return &cred, true
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.remove()
}

func (s *Store) remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", s.path, err)
	}

	return nil
}
