// Package session holds the authenticated session and the persisted UI
// layout flag. It is the single source of truth for the auth token; it never
// talks to the network itself.
package session

import (
	"encoding/json"
	"sync"

	"pmadmin/internal/models"
	"pmadmin/internal/store"
)

// StorageKey is the single key the session persists under.
const StorageKey = "auth-storage"

// state is the persisted shape. Only these fields survive a restart.
type state struct {
	Token           string       `json:"token"`
	User            *models.User `json:"user"`
	IsAuthenticated bool         `json:"is_authenticated"`
	SidebarOpen     bool         `json:"sidebar_open"`
}

// Store holds the current session. All mutators persist synchronously.
type Store struct {
	mu      sync.Mutex
	st      state
	backing *store.Store
}

// New creates a session store backed by st and restores any persisted
// session. A corrupt or missing record starts logged out.
func New(st *store.Store) (*Store, error) {
	s := &Store{
		st:      state{SidebarOpen: true},
		backing: st,
	}

	raw, err := st.Get(StorageKey)
	if err != nil {
		return nil, err
	}
	if raw != "" {
		var persisted state
		if err := json.Unmarshal([]byte(raw), &persisted); err == nil {
			s.st = persisted
		}
	}

	return s, nil
}

// Login records the server's login payload and marks the session
// authenticated.
func (s *Store) Login(resp models.LoginResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := resp.Data.User
	s.st.Token = resp.Data.AccessToken
	s.st.User = &user
	s.st.IsAuthenticated = true
	return s.persist()
}

// Logout clears the token, user and auth flag. The sidebar flag is layout
// state and survives.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.Token = ""
	s.st.User = nil
	s.st.IsAuthenticated = false
	return s.persist()
}

// ToggleSidebar flips the layout flag.
func (s *Store) ToggleSidebar() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.SidebarOpen = !s.st.SidebarOpen
	return s.persist()
}

// Token returns the current bearer token, empty when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Token
}

// User returns the logged-in user, nil when logged out.
func (s *Store) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.User
}

// IsAuthenticated reports whether a login has been recorded.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.IsAuthenticated
}

// SidebarOpen reports the persisted layout flag.
func (s *Store) SidebarOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.SidebarOpen
}

func (s *Store) persist() error {
	raw, err := json.Marshal(s.st)
	if err != nil {
		return err
	}
	return s.backing.Set(StorageKey, string(raw))
}
