package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmadmin/internal/models"
	"pmadmin/internal/store"
)

func openStore(t *testing.T, path string) *store.Store {
	t.Helper()
	st, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func loginResponse() models.LoginResponse {
	return models.LoginResponse{
		StatusCode: 200,
		Data: models.LoginData{
			User:        models.User{ID: "u1", Name: "Ann", Email: "ann@example.com"},
			AccessToken: "token-abc",
		},
		Success: true,
	}
}

func TestFreshStoreStartsLoggedOut(t *testing.T) {
	st := openStore(t, filepath.Join(t.TempDir(), "s.db"))

	sess, err := New(st)
	require.NoError(t, err)

	assert.False(t, sess.IsAuthenticated())
	assert.Empty(t, sess.Token())
	assert.Nil(t, sess.User())
	assert.True(t, sess.SidebarOpen())
}

func TestLoginSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.db")
	st := openStore(t, path)

	sess, err := New(st)
	require.NoError(t, err)
	require.NoError(t, sess.Login(loginResponse()))

	// Reopen from the same file.
	st2 := openStore(t, path)
	restored, err := New(st2)
	require.NoError(t, err)

	assert.True(t, restored.IsAuthenticated())
	assert.Equal(t, "token-abc", restored.Token())
	require.NotNil(t, restored.User())
	assert.Equal(t, "Ann", restored.User().Name)
}

func TestLogoutClearsAuthButKeepsSidebar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.db")
	st := openStore(t, path)

	sess, err := New(st)
	require.NoError(t, err)
	require.NoError(t, sess.Login(loginResponse()))
	require.NoError(t, sess.ToggleSidebar())
	require.False(t, sess.SidebarOpen())

	require.NoError(t, sess.Logout())

	assert.False(t, sess.IsAuthenticated())
	assert.Empty(t, sess.Token())
	assert.Nil(t, sess.User())
	assert.False(t, sess.SidebarOpen())

	// The cleared state is what persists.
	st2 := openStore(t, path)
	restored, err := New(st2)
	require.NoError(t, err)
	assert.False(t, restored.IsAuthenticated())
	assert.False(t, restored.SidebarOpen())
}

func TestCorruptRecordStartsLoggedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.db")
	st := openStore(t, path)
	require.NoError(t, st.Set(StorageKey, "{not json"))

	sess, err := New(st)
	require.NoError(t, err)
	assert.False(t, sess.IsAuthenticated())
	assert.True(t, sess.SidebarOpen())
}
