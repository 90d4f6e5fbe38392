package storage

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/seclave/shardwise/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend is an in-memory backend with switchable availability.
type stubBackend struct {
	name      string
	available bool
	failStore bool
	stored    map[interfaces.ArtifactID][]byte
}

func newStubBackend(name string, available bool) *stubBackend {
	return &stubBackend{
		name:      name,
		available: available,
		stored:    make(map[interfaces.ArtifactID][]byte),
	}
}

func (s *stubBackend) Fetch(_ context.Context, id interfaces.ArtifactID, _ interfaces.ArtifactKind) ([]byte, error) {
	data, ok := s.stored[id]
	if !ok {
		return nil, interfaces.ErrArtifactNotFound
	}
	return data, nil
}

func (s *stubBackend) Store(_ context.Context, data []byte, _ interfaces.ArtifactKind) (interfaces.ArtifactID, error) {
	id := interfaces.ComputeArtifactID(data)
	if s.failStore {
		return id, errors.New("disk full")
	}
	s.stored[id] = data
	return id, nil
}

func (s *stubBackend) Available(context.Context) bool { return s.available }
func (s *stubBackend) Name() string                   { return s.name }
func (s *stubBackend) LocationURI() string            { return "stub://" + s.name }

func TestMultiStorage_StoresEverywhere(t *testing.T) {
	a := newStubBackend("a", true)
	b := newStubBackend("b", true)
	multi := NewMultiStorageBackend([]interfaces.StorageBackend{a, b}, slog.Default())

	data := []byte("an artifact")
	id, err := multi.Store(context.Background(), data, interfaces.EncryptedKind)
	require.NoError(t, err)

	assert.Contains(t, a.stored, id)
	assert.Contains(t, b.stored, id)
}

func TestMultiStorage_FetchFirstHolder(t *testing.T) {
	a := newStubBackend("a", true)
	b := newStubBackend("b", true)
	multi := NewMultiStorageBackend([]interfaces.StorageBackend{a, b}, slog.Default())

	data := []byte("only on b")
	id, err := b.Store(context.Background(), data, interfaces.ShareKind)
	require.NoError(t, err)

	fetched, err := multi.Fetch(context.Background(), id, interfaces.ShareKind)
	require.NoError(t, err)
	assert.Equal(t, data, fetched)
}

func TestMultiStorage_SkipsUnavailable(t *testing.T) {
	down := newStubBackend("down", false)
	up := newStubBackend("up", true)
	multi := NewMultiStorageBackend([]interfaces.StorageBackend{down, up}, slog.Default())

	data := []byte("resilient")
	id, err := multi.Store(context.Background(), data, interfaces.ShareKind)
	require.NoError(t, err)

	assert.Empty(t, down.stored)
	assert.Contains(t, up.stored, id)
}

func TestMultiStorage_PartialStoreFailureStillSucceeds(t *testing.T) {
	broken := newStubBackend("broken", true)
	broken.failStore = true
	good := newStubBackend("good", true)
	multi := NewMultiStorageBackend([]interfaces.StorageBackend{broken, good}, slog.Default())

	_, err := multi.Store(context.Background(), []byte("data"), interfaces.ShareKind)
	assert.NoError(t, err, "One surviving backend is enough")
}

func TestMultiStorage_AllStoresFail(t *testing.T) {
	broken := newStubBackend("broken", true)
	broken.failStore = true
	multi := NewMultiStorageBackend([]interfaces.StorageBackend{broken}, slog.Default())

	_, err := multi.Store(context.Background(), []byte("data"), interfaces.ShareKind)
	assert.Error(t, err)
}

func TestMultiStorage_FetchMissEverywhere(t *testing.T) {
	multi := NewMultiStorageBackend([]interfaces.StorageBackend{
		newStubBackend("a", true),
		newStubBackend("b", true),
	}, slog.Default())

	_, err := multi.Fetch(context.Background(), interfaces.ComputeArtifactID([]byte("missing")), interfaces.ShareKind)
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrArtifactNotFound, "A uniform miss keeps its sentinel so callers can try other namespaces")
}

func TestMultiStorage_FetchNoBackendReachable(t *testing.T) {
	multi := NewMultiStorageBackend([]interfaces.StorageBackend{newStubBackend("down", false)}, slog.Default())

	_, err := multi.Fetch(context.Background(), interfaces.ComputeArtifactID([]byte("anything")), interfaces.ShareKind)
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrBackendUnavailable)
	assert.NotErrorIs(t, err, interfaces.ErrArtifactNotFound, "Unreachable storage is not the same as a missing artifact")
}

func TestMultiStorage_Available(t *testing.T) {
	multi := NewMultiStorageBackend([]interfaces.StorageBackend{
		newStubBackend("down", false),
		newStubBackend("up", true),
	}, slog.Default())
	assert.True(t, multi.Available(context.Background()))

	allDown := NewMultiStorageBackend([]interfaces.StorageBackend{newStubBackend("down", false)}, slog.Default())
	assert.False(t, allDown.Available(context.Background()))
}
