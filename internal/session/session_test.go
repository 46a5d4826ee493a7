package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockStorage struct {
	LoadFunc  func() (Credential, bool, error)
	SaveFunc  func(Credential) error
	ClearFunc func() error
}

func (m *mockStorage) Load() (Credential, bool, error) {
	if m.LoadFunc == nil {
		return Credential{}, false, nil
	}
	return m.LoadFunc()
}

func (m *mockStorage) Save(c Credential) error {
	if m.SaveFunc == nil {
		return nil
	}
	return m.SaveFunc(c)
}

func (m *mockStorage) Clear() error {
	if m.ClearFunc == nil {
		return nil
	}
	return m.ClearFunc()
}

func TestStore_StartsLoading(t *testing.T) {
	s := New(&mockStorage{}, zap.NewNop())
	assert.Equal(t, Loading, s.Phase())

	_, ok := s.Credential()
	assert.False(t, ok, "no credential may be visible while loading")
}

func TestRestore_Empty(t *testing.T) {
	s := New(&mockStorage{}, zap.NewNop())
	s.Restore()
	assert.Equal(t, Anonymous, s.Phase())
}

func TestRestore_StoredPair(t *testing.T) {
	stored := Credential{Token: "tok", UserID: 7}
	s := New(&mockStorage{
		LoadFunc: func() (Credential, bool, error) { return stored, true, nil },
	}, zap.NewNop())

	s.Restore()

	assert.Equal(t, Authenticated, s.Phase())
	cred, ok := s.Credential()
	require.True(t, ok)
	assert.Equal(t, stored, cred, "restore must yield exactly the persisted pair")
}

func TestRestore_FailsSoft(t *testing.T) {
	s := New(&mockStorage{
		LoadFunc: func() (Credential, bool, error) {
			return Credential{}, false, errors.New("disk on fire")
		},
	}, zap.NewNop())

	s.Restore()

	assert.Equal(t, Anonymous, s.Phase())
}

func TestRestore_Once(t *testing.T) {
	calls := 0
	s := New(&mockStorage{
		LoadFunc: func() (Credential, bool, error) {
			calls++
			return Credential{}, false, nil
		},
	}, zap.NewNop())

	s.Restore()
	s.Restore()

	assert.Equal(t, 1, calls, "the loading phase terminates exactly once")
}

func TestLogin_PersistsBeforePublishing(t *testing.T) {
	saved := false
	s := New(&mockStorage{
		SaveFunc: func(c Credential) error {
			saved = true
			return nil
		},
	}, zap.NewNop())
	s.Restore()

	var observed Phase
	s.Subscribe(func(p Phase, _ Credential) {
		observed = p
		assert.True(t, saved, "credential must be persisted before the transition is published")
	})

	require.NoError(t, s.Login("tok", 3))
	assert.Equal(t, Authenticated, observed)
}

func TestLogin_SaveFailureKeepsPhase(t *testing.T) {
	s := New(&mockStorage{
		SaveFunc: func(Credential) error { return errors.New("no space") },
	}, zap.NewNop())
	s.Restore()

	err := s.Login("tok", 3)
	require.Error(t, err)
	assert.Equal(t, Anonymous, s.Phase(), "a failed persist must not transition the session")
}

func TestSubscribe_Cancel(t *testing.T) {
	s := New(&mockStorage{}, zap.NewNop())
	s.Restore()

	calls := 0
	cancel := s.Subscribe(func(Phase, Credential) { calls++ })
	require.NoError(t, s.Login("tok", 1))
	cancel()
	require.NoError(t, s.Logout())

	assert.Equal(t, 1, calls)
}

func TestLoginLogoutRestore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	storage := NewFileStorage(path)

	s := New(storage, zap.NewNop())
	s.Restore()
	require.NoError(t, s.Login("tok", 5))
	require.NoError(t, s.Logout())

	// Simulated restart.
	restarted := New(NewFileStorage(path), zap.NewNop())
	restarted.Restore()
	assert.Equal(t, Anonymous, restarted.Phase())
}

func TestFileStorage_SaveRestoreRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	s := New(NewFileStorage(path), zap.NewNop())
	s.Restore()
	require.NoError(t, s.Login("tok", 5))

	restarted := New(NewFileStorage(path), zap.NewNop())
	restarted.Restore()

	assert.Equal(t, Authenticated, restarted.Phase())
	cred, ok := restarted.Credential()
	require.True(t, ok)
	assert.Equal(t, Credential{Token: "tok", UserID: 5}, cred)
}

func TestFileStorage_CorruptFileFailsSoft(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := New(NewFileStorage(path), zap.NewNop())
	s.Restore()

	assert.Equal(t, Anonymous, s.Phase())
}

func TestFileStorage_ClearTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	storage := NewFileStorage(path)

	require.NoError(t, storage.Save(Credential{Token: "t", UserID: 1}))
	require.NoError(t, storage.Clear())
	require.NoError(t, storage.Clear(), "clearing an empty store is not an error")

	_, ok, err := storage.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}
