package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/seclave/shardwise/interfaces"
)

// Restore fetches backed-up shard artifacts by content ID and feeds
// them into the session the way uploaded files are. Encrypted backups
// are tried first since backup never stores plaintext alongside an
// encrypted artifact. Fetched content is verified against its ID
// before classification.
func Restore(ctx context.Context, backend interfaces.StorageBackend, ids []interfaces.ArtifactID, sess *Session, log *slog.Logger) ([]interfaces.ClassifiedInput, error) {
	if log == nil {
		log = slog.Default()
	}

	inputs := make([]interfaces.ClassifiedInput, 0, len(ids))
	for _, id := range ids {
		data, kind, err := fetchEitherKind(ctx, backend, id)
		if err != nil {
			return inputs, fmt.Errorf("failed to restore artifact %s: %w", id, err)
		}
		if !interfaces.ComputeArtifactID(data).Equal(id) {
			return inputs, fmt.Errorf("failed to restore artifact %s: stored content does not match its ID", id)
		}

		in, err := sess.AddFile(restoredFileName(id, kind), data)
		if err != nil {
			return inputs, fmt.Errorf("failed to restore artifact %s: %w", id, err)
		}
		inputs = append(inputs, in)

		log.Debug("Artifact restored from storage",
			slog.String("session", sess.ID()),
			slog.String("artifact_id", id.String()),
			slog.String("kind", kind.String()),
			slog.String("format", in.Format.String()))
	}
	return inputs, nil
}

// fetchEitherKind looks an artifact up in both storage namespaces,
// encrypted first.
func fetchEitherKind(ctx context.Context, backend interfaces.StorageBackend, id interfaces.ArtifactID) ([]byte, interfaces.ArtifactKind, error) {
	data, err := backend.Fetch(ctx, id, interfaces.EncryptedKind)
	if err == nil {
		return data, interfaces.EncryptedKind, nil
	}
	if !errors.Is(err, interfaces.ErrArtifactNotFound) {
		return nil, 0, err
	}

	data, err = backend.Fetch(ctx, id, interfaces.ShareKind)
	if err != nil {
		return nil, 0, err
	}
	return data, interfaces.ShareKind, nil
}

// restoredFileName synthesizes a session file name for a fetched
// artifact. Encrypted backups are armored text, so they carry the
// armored extension.
func restoredFileName(id interfaces.ArtifactID, kind interfaces.ArtifactKind) string {
	ext := ".txt"
	if kind == interfaces.EncryptedKind {
		ext = ".asc"
	}
	return id.String()[:12] + ext
}
