package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/seclave/shardwise/interfaces"
)

// IPFSBackend archives artifacts through an IPFS node's API. IPFS is
// itself content addressed, but by its own CID rather than our SHA-256
// artifact ID, so the backend keeps an ID-to-CID index pinned locally.
type IPFSBackend struct {
	shell       *shell.Shell
	host        string
	port        string
	log         *slog.Logger
	locationURI string

	mu    sync.Mutex
	index map[string]string // artifact ID hex -> IPFS CID
}

// NewIPFSBackend creates an IPFS backend talking to the node API at
// host:port.
func NewIPFSBackend(host, port, timeout string, log *slog.Logger) (*IPFSBackend, error) {
	apiURL := fmt.Sprintf("%s:%s", host, port)

	return &IPFSBackend{
		shell:       shell.NewShell(apiURL),
		host:        host,
		port:        port,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s/?timeout=%s", apiURL, timeout),
		index:       make(map[string]string),
	}, nil
}

// Fetch retrieves an artifact by ID. Only artifacts stored through
// this backend instance can be found; the CID index does not survive a
// restart. Returns ErrBackendUnavailable when the node is down.
func (b *IPFSBackend) Fetch(ctx context.Context, id interfaces.ArtifactID, kind interfaces.ArtifactKind) ([]byte, error) {
	start := time.Now()

	b.mu.Lock()
	cid, ok := b.index[b.indexKey(id, kind)]
	b.mu.Unlock()
	if !ok {
		return nil, interfaces.ErrArtifactNotFound
	}

	if !b.shell.IsUp() {
		b.log.Warn("IPFS node unavailable",
			slog.String("host", b.host),
			slog.String("port", b.port))
		return nil, interfaces.ErrBackendUnavailable
	}

	reader, err := b.shell.Cat(cid)
	if err != nil {
		if strings.Contains(err.Error(), "no link named") {
			return nil, interfaces.ErrArtifactNotFound
		}
		return nil, fmt.Errorf("failed to fetch artifact from IPFS: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact from IPFS: %w", err)
	}

	// Guard against index corruption or a tampered node.
	if !interfaces.ComputeArtifactID(data).Equal(id) {
		return nil, fmt.Errorf("artifact fetched from IPFS does not match its ID %s", id)
	}

	b.log.Debug("Fetched artifact from IPFS",
		slog.String("cid", cid),
		slog.String("artifact_id", id.String()),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))
	return data, nil
}

// Store pins an artifact to IPFS and records its CID. Returns
// ErrBackendUnavailable when the node is down.
func (b *IPFSBackend) Store(ctx context.Context, data []byte, kind interfaces.ArtifactKind) (interfaces.ArtifactID, error) {
	id := interfaces.ComputeArtifactID(data)

	if !b.shell.IsUp() {
		return id, interfaces.ErrBackendUnavailable
	}

	cid, err := b.shell.Add(bytes.NewReader(data))
	if err != nil {
		return id, fmt.Errorf("failed to add artifact to IPFS: %w", err)
	}

	b.mu.Lock()
	b.index[b.indexKey(id, kind)] = cid
	b.mu.Unlock()

	b.log.Debug("Stored artifact in IPFS",
		slog.String("cid", cid),
		slog.String("artifact_id", id.String()),
		slog.String("kind", kind.String()))
	return id, nil
}

// Available checks whether the IPFS node answers.
func (b *IPFSBackend) Available(ctx context.Context) bool {
	return b.shell.IsUp()
}

// Name returns an identifier for logging.
func (b *IPFSBackend) Name() string {
	return fmt.Sprintf("ipfs-%s-%s", b.host, b.port)
}

// LocationURI returns the URI this backend was created from.
func (b *IPFSBackend) LocationURI() string {
	return b.locationURI
}

func (b *IPFSBackend) indexKey(id interfaces.ArtifactID, kind interfaces.ArtifactKind) string {
	return kind.String() + "/" + id.String()
}
