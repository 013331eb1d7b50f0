package cart

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	return NewEngine(store), dir
}

func TestEngine_SessionsAreIsolated(t *testing.T) {
	engine, _ := newTestEngine(t)

	engine.Add("alice", tour("p1", "City Tour", 100), 2)
	engine.Add("bob", tour("p2", "Beach Day", 50), 1)

	assert.Equal(t, 2, engine.TotalItems("alice"))
	assert.Equal(t, 1, engine.TotalItems("bob"))
	assert.Equal(t, 200.0, engine.TotalPrice("alice"))
	assert.Equal(t, 50.0, engine.TotalPrice("bob"))
}

func TestEngine_CartSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	engine := NewEngine(store)
	engine.Add("alice", tour("p1", "City Tour", 100), 2)
	engine.Add("alice", tour("p2", "Beach Day", 50), 1)

	// A fresh engine over the same directory rehydrates from disk
	store2, err := NewFileStore(dir)
	require.NoError(t, err)
	engine2 := NewEngine(store2)

	lines := engine2.Snapshot("alice")
	require.Len(t, lines, 2)
	assert.Equal(t, "p1", lines[0].Product.ID)
	assert.Equal(t, 250.0, engine2.TotalPrice("alice"))
}

func TestEngine_CorruptStateResetsToEmpty(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice.json"), []byte("garbage"), 0o644))

	engine := NewEngine(store)

	assert.Empty(t, engine.Snapshot("alice"))

	// The session keeps working after the reset
	engine.Add("alice", tour("p1", "City Tour", 100), 1)
	assert.Equal(t, 1, engine.TotalItems("alice"))
}

type failingStore struct{}

func (failingStore) Load(string) ([]Line, error) { return nil, nil }
func (failingStore) Save(string, []Line) error   { return errors.New("disk full") }
func (failingStore) Delete(string) error         { return errors.New("disk full") }

func TestEngine_MutationSucceedsWhenFlushFails(t *testing.T) {
	engine := NewEngine(failingStore{})

	merged := engine.Add("alice", tour("p1", "City Tour", 100), 2)

	assert.False(t, merged)
	assert.Equal(t, 2, engine.TotalItems("alice"))
}

func TestEngine_UpdateAndRemove(t *testing.T) {
	engine, _ := newTestEngine(t)
	engine.Add("alice", tour("p1", "City Tour", 100), 2)
	engine.Add("alice", tour("p2", "Beach Day", 50), 1)

	engine.UpdateQuantity("alice", "p1", 5)
	engine.Remove("alice", "p2")

	lines := engine.Snapshot("alice")
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)

	engine.UpdateQuantity("alice", "p1", 0)
	assert.Empty(t, engine.Snapshot("alice"))
}

func TestEngine_Clear(t *testing.T) {
	engine, _ := newTestEngine(t)
	engine.Add("alice", tour("p1", "City Tour", 100), 2)

	engine.Clear("alice")

	assert.Empty(t, engine.Snapshot("alice"))
	assert.Equal(t, 0.0, engine.TotalPrice("alice"))
}
