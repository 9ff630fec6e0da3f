package supplier

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Credential is the supplier OAuth credential persisted in the token store.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the access token is past (or within the safety
// margin of) its expiry. Expiry is decided by timestamp, never by waiting
// for the gateway to reject a call.
func (c Credential) Expired(margin time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !time.Now().Add(margin).Before(c.ExpiresAt)
}

// TokenStore reads and writes the credential file supplied by the operator.
type TokenStore struct {
	path string
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

func (s *TokenStore) Load() (Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Credential{}, fmt.Errorf("failed to read token file: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return Credential{}, fmt.Errorf("failed to parse token file: %w", err)
	}
	return cred, nil
}

func (s *TokenStore) Save(cred Credential) error {
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// refreshFunc exchanges a refresh token for a new credential.
type refreshFunc func(refreshToken string) (Credential, error)

// TokenManager owns the live credential for the process. Refresh is
// single-flight: one refresh in flight, concurrent callers wait on the
// mutex and observe the refreshed credential instead of issuing their own.
type TokenManager struct {
	mu      sync.Mutex
	cred    Credential
	store   *TokenStore
	refresh refreshFunc
	margin  time.Duration
}

func NewTokenManager(store *TokenStore, refresh refreshFunc) (*TokenManager, error) {
	cred, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &TokenManager{
		cred:    cred,
		store:   store,
		refresh: refresh,
		margin:  5 * time.Minute,
	}, nil
}

// AccessToken returns a usable access token, refreshing first when the
// current one is expired. A failed refresh surfaces as ErrAuthExpired so
// batch callers can stop immediately instead of retrying every item.
func (m *TokenManager) AccessToken() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.cred.Expired(m.margin) {
		return m.cred.AccessToken, nil
	}

	refreshed, err := m.refresh(m.cred.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthExpired, err)
	}
	m.cred = refreshed

	// Persist only after a successful refresh; a write failure is not fatal
	// for the running batch, the next process start just refreshes again.
	if err := m.store.Save(refreshed); err != nil {
		return refreshed.AccessToken, nil
	}
	return refreshed.AccessToken, nil
}
