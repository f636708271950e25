package agrly

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingTokenStore struct{}

func (failingTokenStore) LoadToken() (string, error) { return "", errors.New("db locked") }
func (failingTokenStore) SaveToken(string) error     { return errors.New("db locked") }
func (failingTokenStore) ClearToken() error          { return errors.New("db locked") }

func TestSessionWithoutStoreIsInMemory(t *testing.T) {
	s := NewSession(nil)
	assert.False(t, s.Authenticated())

	s.SetToken("abc")
	assert.Equal(t, "abc", s.Token())
	assert.True(t, s.Authenticated())

	s.Clear()
	assert.False(t, s.Authenticated())
	// Clearing twice is fine.
	s.Clear()
	assert.Equal(t, "", s.Token())
}

func TestSessionRestoresStoredToken(t *testing.T) {
	store := &memTokenStore{token: "persisted"}
	s := NewSession(store)
	assert.Equal(t, "persisted", s.Token())
}

func TestStoreFailureKeepsMemoryToken(t *testing.T) {
	s := NewSession(failingTokenStore{})
	assert.False(t, s.Authenticated())

	// The durable write fails but the in-memory session stays valid.
	s.SetToken("abc")
	assert.True(t, s.Authenticated())

	s.Clear()
	assert.False(t, s.Authenticated())
}
