// Package auth gates remote operations on the presence of stored credentials.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrNotAuthenticated is returned when no usable credentials are stored.
// Scan and download fail fast on it, since nothing useful can proceed.
var ErrNotAuthenticated = errors.New("not authenticated: no stored credentials")

// Manager loads and caches the bearer token used by the remote services.
//
// The OAuth consent flow itself is owned by the setup tooling; this layer
// only consumes its stored result.
type Manager struct {
	tokenPath string

	mu    sync.Mutex
	token string
}

// NewManager returns a manager reading credentials from tokenPath.
func NewManager(tokenPath string) *Manager {
	return &Manager{tokenPath: tokenPath}
}

type storedToken struct {
	AccessToken string `json:"access_token"`
}

// Authenticated reports whether stored credentials are present and readable.
func (m *Manager) Authenticated() bool {
	_, err := m.Token()
	return err == nil
}

// Token returns the cached bearer token, loading it on first use.
func (m *Manager) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" {
		return m.token, nil
	}

	data, err := os.ReadFile(m.tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotAuthenticated
		}
		return "", fmt.Errorf("failed to read token file %q: %w", m.tokenPath, err)
	}

	var st storedToken
	if err := json.Unmarshal(data, &st); err != nil {
		return "", fmt.Errorf("malformed token file %q: %w", m.tokenPath, err)
	}
	if st.AccessToken == "" {
		return "", ErrNotAuthenticated
	}

	m.token = st.AccessToken
	return m.token, nil
}

// Invalidate drops the cached token so the next call re-reads the stored
// credentials. Call after re-authentication, stale handles after token
// rotation fail otherwise.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
}
