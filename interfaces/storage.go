package interfaces

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ArtifactID is the 32-byte SHA-256 hash identifying a stored shard
// artifact. Content addressing means backing the same artifact up twice
// is a no-op and a fetched artifact can always be verified against its ID.
type ArtifactID [32]byte

// NewArtifactIDFromHex parses a 64-character hex string into an ID.
func NewArtifactIDFromHex(source string) (ArtifactID, error) {
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 64 {
		return ArtifactID{}, errors.New("invalid artifact ID length: hex string must be 64 characters")
	}

	raw, err := hex.DecodeString(clean)
	if err != nil {
		return ArtifactID{}, fmt.Errorf("invalid hex format: %w", err)
	}

	var id ArtifactID
	copy(id[:], raw)
	return id, nil
}

// ComputeArtifactID calculates the ID of artifact data.
func ComputeArtifactID(data []byte) ArtifactID {
	return ArtifactID(sha256.Sum256(data))
}

// String returns the hex representation.
func (id ArtifactID) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns the raw 32-byte hash.
func (id ArtifactID) Bytes() []byte {
	return id[:]
}

// Equal compares two artifact IDs.
func (id ArtifactID) Equal(other ArtifactID) bool {
	return bytes.Equal(id[:], other[:])
}

// ArtifactKind separates the storage namespaces for plaintext shard
// files and encrypted artifacts.
type ArtifactKind int

const (
	// ShareKind for plaintext shard files (preamble + token).
	ShareKind ArtifactKind = iota
	// EncryptedKind for armored or binary encrypted artifacts.
	EncryptedKind
)

// String returns the kind name, also used as the storage sub-namespace.
func (k ArtifactKind) String() string {
	switch k {
	case ShareKind:
		return "shares"
	case EncryptedKind:
		return "encrypted"
	default:
		return "unknown"
	}
}

var (
	// ErrArtifactNotFound is returned when a requested artifact does not
	// exist in the storage backend.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrBackendUnavailable is returned when a storage backend cannot be
	// reached: network trouble, sealed vault, stopped daemon.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrInvalidLocationURI is returned for malformed or unsupported
	// backend URIs. The expected shape is
	// [scheme]://[auth@]host[:port][/path][?params].
	ErrInvalidLocationURI = errors.New("invalid storage location URI")
)

// StorageBackendLocation is a backend URI such as
// file:///var/backups/shards/ or s3://bucket/prefix/?region=eu-west-1.
type StorageBackendLocation string

// StorageBackend archives shard artifacts by content ID. Backup of
// generated artifacts and retrieval during recovery both go through
// this interface.
type StorageBackend interface {
	// Fetch retrieves an artifact by ID and kind.
	Fetch(ctx context.Context, id ArtifactID, kind ArtifactKind) ([]byte, error)

	// Store saves an artifact and returns its content ID.
	Store(ctx context.Context, data []byte, kind ArtifactKind) (ArtifactID, error)

	// Available checks whether the backend is reachable.
	Available(ctx context.Context) bool

	// Name returns an identifier for logging.
	Name() string

	// LocationURI returns the URI this backend was created from.
	LocationURI() string
}

// StorageBackendFactory builds storage backends from URIs.
type StorageBackendFactory interface {
	// StorageBackendFor creates a backend from one URI. Supports
	// file://, s3://, ipfs:// and vault://.
	StorageBackendFor(location StorageBackendLocation) (StorageBackend, error)

	// CreateMultiBackend aggregates several locations into one backend
	// that stores everywhere and fetches from the first holder.
	CreateMultiBackend(locations []StorageBackendLocation) (StorageBackend, error)
}
