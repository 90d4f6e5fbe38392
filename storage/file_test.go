package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/seclave/shardwise/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackend_StoreAndFetch(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir(), slog.Default())
	require.NoError(t, err)

	data := []byte("shardwise1 i=1 t=2 n=3 p=AAECAw")
	id, err := backend.Store(context.Background(), data, interfaces.ShareKind)
	require.NoError(t, err)
	assert.Equal(t, interfaces.ComputeArtifactID(data), id, "Content addressing determines the ID")

	fetched, err := backend.Fetch(context.Background(), id, interfaces.ShareKind)
	require.NoError(t, err)
	assert.Equal(t, data, fetched)
}

func TestFileBackend_KindsAreSeparateNamespaces(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir(), slog.Default())
	require.NoError(t, err)

	data := []byte("same bytes")
	id, err := backend.Store(context.Background(), data, interfaces.EncryptedKind)
	require.NoError(t, err)

	_, err = backend.Fetch(context.Background(), id, interfaces.ShareKind)
	assert.ErrorIs(t, err, interfaces.ErrArtifactNotFound, "Kinds must not alias each other")
}

func TestFileBackend_FetchMissing(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir(), slog.Default())
	require.NoError(t, err)

	_, err = backend.Fetch(context.Background(), interfaces.ComputeArtifactID([]byte("never stored")), interfaces.ShareKind)
	assert.ErrorIs(t, err, interfaces.ErrArtifactNotFound)
}

func TestFileBackend_StoreIsIdempotent(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir(), slog.Default())
	require.NoError(t, err)

	data := []byte("stored twice")
	first, err := backend.Store(context.Background(), data, interfaces.ShareKind)
	require.NoError(t, err)
	second, err := backend.Store(context.Background(), data, interfaces.ShareKind)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}

func TestFileBackend_Available(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(filepath.Join(dir, "artifacts"), slog.Default())
	require.NoError(t, err)
	assert.True(t, backend.Available(context.Background()))
}
