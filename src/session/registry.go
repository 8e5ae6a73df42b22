package session

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/SmooSenseAI/itrade/src/eventmodels"
	"github.com/SmooSenseAI/itrade/src/utils"
)

// CredentialStore is the persistence the registry writes through to.
type CredentialStore interface {
	Save(cred eventmodels.Credential) error
	Load() (*eventmodels.Credential, bool)
}

// Session is either pending (Handle set, Credential nil) or authenticated.
type Session struct {
	ID         string
	Handle     *eventmodels.OAuthHandle
	Credential *eventmodels.Credential
}

func (s *Session) IsAuthenticated() bool {
	return s.Credential != nil
}

type Registry struct {
	store    CredentialStore
	sessions map[string]*Session
	mu       sync.RWMutex
}

func NewRegistry(store CredentialStore) *Registry {
	return &Registry{
		store:    store,
		sessions: make(map[string]*Session),
	}
}

func newSessionID() (string, error) {
	return utils.RandomHex(16)
}

// CreatePending registers an in-flight OAuth handshake and returns its id.
func (r *Registry) CreatePending(handle eventmodels.OAuthHandle, consumerKey, consumerSecret string) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", fmt.Errorf("Registry.CreatePending: %w", err)
	}

	handle.ConsumerKey = consumerKey
	handle.ConsumerSecret = consumerSecret

	r.mu.Lock()
	r.sessions[id] = &Session{ID: id, Handle: &handle}
	r.mu.Unlock()

	return id, nil
}

// CompleteAuthentication attaches cred to a known session and persists it.
// The session is authenticated in memory even when the save fails.
func (r *Registry) CompleteAuthentication(id string, cred eventmodels.Credential) error {
	r.mu.Lock()
	s, found := r.sessions[id]
	if !found {
		r.mu.Unlock()
		return fmt.Errorf("Registry.CompleteAuthentication: %w", eventmodels.ErrSessionNotFound)
	}

	s.Credential = &cred
	s.Handle = nil
	r.mu.Unlock()

	if err := r.store.Save(cred); err != nil {
		return fmt.Errorf("Registry.CompleteAuthentication: failed to persist credential: %w", err)
	}

	return nil
}

// RestoreFromCache mints a fresh authenticated session from the cached
// credential, if there is one.
func (r *Registry) RestoreFromCache() (string, bool) {
	cred, found := r.store.Load()
	if !found {
		return "", false
	}

	id, err := newSessionID()
	if err != nil {
		log.Errorf("Registry.RestoreFromCache: %v", err)
		return "", false
	}

	r.mu.Lock()
	r.sessions[id] = &Session{ID: id, Credential: cred}
	r.mu.Unlock()

	return id, true
}

func (r *Registry) Get(id string) (*eventmodels.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, found := r.sessions[id]
	if !found {
		return nil, eventmodels.ErrSessionNotFound
	}

	if !s.IsAuthenticated() {
		return nil, eventmodels.ErrSessionNotAuthenticated
	}

	cred := *s.Credential
	return &cred, nil
}

// PendingHandle returns the request-token handle of a session that has not
// yet been authenticated.
func (r *Registry) PendingHandle(id string) (*eventmodels.OAuthHandle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, found := r.sessions[id]
	if !found || s.Handle == nil {
		return nil, eventmodels.ErrSessionNotFound
	}

	handle := *s.Handle
	return &handle, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
