package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/seclave/shardwise/interfaces"
)

// MultiStorageBackend spreads artifacts over several backends: Store
// writes to every available backend, Fetch returns from the first one
// that holds the artifact.
type MultiStorageBackend struct {
	backends []interfaces.StorageBackend
	log      *slog.Logger
}

// NewMultiStorageBackend aggregates the given backends.
func NewMultiStorageBackend(backends []interfaces.StorageBackend, log *slog.Logger) *MultiStorageBackend {
	if log == nil {
		log = slog.Default()
	}
	return &MultiStorageBackend{backends: backends, log: log}
}

// Fetch tries each backend in order and returns the first hit.
func (m *MultiStorageBackend) Fetch(ctx context.Context, id interfaces.ArtifactID, kind interfaces.ArtifactKind) ([]byte, error) {
	start := time.Now()
	var errs []error

	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			m.log.Debug("Backend unavailable",
				slog.String("backend", backend.Name()),
				slog.String("artifact_id", id.String()))
			continue
		}

		data, err := backend.Fetch(ctx, id, kind)
		if err == nil {
			m.log.Debug("Fetched artifact",
				slog.String("backend", backend.Name()),
				slog.String("artifact_id", id.String()),
				slog.Duration("duration", time.Since(start)))
			return data, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
	}

	m.log.Error("All backends failed to fetch artifact",
		slog.String("artifact_id", id.String()),
		slog.Int("failed_backends", len(errs)))

	if len(errs) == 0 {
		return nil, fmt.Errorf("no backend reachable for %s: %w", id, interfaces.ErrBackendUnavailable)
	}

	// A uniform miss stays a miss so callers can look elsewhere.
	missedEverywhere := true
	for _, err := range errs {
		if !errors.Is(err, interfaces.ErrArtifactNotFound) {
			missedEverywhere = false
			break
		}
	}
	if missedEverywhere {
		return nil, fmt.Errorf("no backend holds %s: %w", id, interfaces.ErrArtifactNotFound)
	}
	return nil, fmt.Errorf("all backends failed to fetch %s: %w", id, errors.Join(errs...))
}

// Store writes to every available backend; success means at least one
// accepted the artifact.
func (m *MultiStorageBackend) Store(ctx context.Context, data []byte, kind interfaces.ArtifactKind) (interfaces.ArtifactID, error) {
	start := time.Now()
	id := interfaces.ComputeArtifactID(data)
	stored := 0
	var errs []error

	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			m.log.Debug("Backend unavailable", slog.String("backend", backend.Name()))
			continue
		}

		if _, err := backend.Store(ctx, data, kind); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
			m.log.Warn("Failed to store artifact",
				slog.String("backend", backend.Name()),
				"err", err)
			continue
		}
		stored++
	}

	if stored == 0 {
		return id, fmt.Errorf("all backends failed to store artifact: %v", errs)
	}

	m.log.Debug("Stored artifact",
		slog.String("artifact_id", id.String()),
		slog.Int("backends", stored),
		slog.Duration("duration", time.Since(start)))
	return id, nil
}

// Available reports whether any backend is reachable.
func (m *MultiStorageBackend) Available(ctx context.Context) bool {
	for _, backend := range m.backends {
		if backend.Available(ctx) {
			return true
		}
	}
	return false
}

// Name returns an identifier for logging.
func (m *MultiStorageBackend) Name() string {
	return "multi-storage"
}

// LocationURI returns the combined URI of all aggregated backends.
func (m *MultiStorageBackend) LocationURI() string {
	locations := make([]string, 0, len(m.backends))
	for _, backend := range m.backends {
		locations = append(locations, backend.LocationURI())
	}
	return "multi:[" + strings.Join(locations, ",") + "]"
}
