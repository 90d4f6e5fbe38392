package storage

import (
	"log/slog"
	"testing"

	"github.com/seclave/shardwise/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_FileBackend(t *testing.T) {
	factory := NewStorageBackendFactory(slog.Default())

	backend, err := factory.StorageBackendFor(interfaces.StorageBackendLocation("file://" + t.TempDir()))
	require.NoError(t, err)
	assert.Contains(t, backend.Name(), "file-")
}

func TestFactory_S3Backend(t *testing.T) {
	factory := NewStorageBackendFactory(slog.Default())

	backend, err := factory.StorageBackendFor("s3://key:secret@my-bucket/backups/?region=eu-west-1")
	require.NoError(t, err)
	assert.Equal(t, "s3-my-bucket", backend.Name())
}

func TestFactory_IPFSBackend(t *testing.T) {
	factory := NewStorageBackendFactory(slog.Default())

	backend, err := factory.StorageBackendFor("ipfs://localhost:5001/")
	require.NoError(t, err)
	assert.Equal(t, "ipfs-localhost-5001", backend.Name())
}

func TestFactory_VaultBackend(t *testing.T) {
	factory := NewStorageBackendFactory(slog.Default())

	backend, err := factory.StorageBackendFor("vault://vault.example.com:8200/secret/shardwise?token=abc&tls=false")
	require.NoError(t, err)
	assert.Equal(t, "vault-secret-shardwise", backend.Name())
}

func TestFactory_Rejections(t *testing.T) {
	factory := NewStorageBackendFactory(slog.Default())

	cases := []string{
		"ftp://somewhere/else",
		"s3://",
		"vault://host:8200/onlymount",
		"file://",
	}
	for _, uri := range cases {
		_, err := factory.StorageBackendFor(interfaces.StorageBackendLocation(uri))
		assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI, uri)
	}
}

func TestFactory_MultiBackendSkipsInvalid(t *testing.T) {
	factory := NewStorageBackendFactory(slog.Default())

	backend, err := factory.CreateMultiBackend([]interfaces.StorageBackendLocation{
		"ftp://invalid/",
		interfaces.StorageBackendLocation("file://" + t.TempDir()),
	})
	require.NoError(t, err, "One valid location is enough")
	assert.Equal(t, "multi-storage", backend.Name())
}

func TestFactory_MultiBackendAllInvalid(t *testing.T) {
	factory := NewStorageBackendFactory(slog.Default())

	_, err := factory.CreateMultiBackend([]interfaces.StorageBackendLocation{"ftp://nope/"})
	assert.Error(t, err)
}
