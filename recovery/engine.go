package recovery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/seclave/shardwise/interfaces"
)

// Engine orchestrates one full recovery attempt: classification has
// already happened on the way into the session; the engine validates,
// drives decryption when needed, and hands threshold-many payloads to
// the opaque combine primitive.
type Engine struct {
	splitter interfaces.SecretSplitter
	log      *slog.Logger
}

// NewEngine creates a recovery engine on top of the given splitting
// primitive.
func NewEngine(splitter interfaces.SecretSplitter, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{splitter: splitter, log: log}
}

// Recover produces the secret from the session's batch or fails with a
// taxonomy error describing what is missing.
//
// When the plaintext subset already validates Ready, pending encrypted
// inputs are left untouched: the caller chose to proceed with what
// validates. Otherwise encrypted inputs are run through the decryption
// coordinator (source may be nil when no interaction is possible, in
// which case the latest verdict decides), and the batch is revalidated.
//
// Reconstruction takes the first threshold-many usable records in
// stable input order. A combine failure, typically from structurally
// valid but mutually inconsistent shards, is surfaced verbatim inside
// ErrReconstruction.
func (e *Engine) Recover(ctx context.Context, sess *Session, source interfaces.PasswordSource) (string, error) {
	verdict := sess.Verdict()

	if verdict.Kind != interfaces.VerdictReady && sess.PendingEncrypted() > 0 && source != nil {
		coordinator := NewCoordinator(source, e.log)
		var err error
		verdict, err = coordinator.Run(ctx, sess)
		if err != nil {
			return "", err
		}
	}

	if verdict.Kind != interfaces.VerdictReady {
		e.log.Info("Recovery not ready",
			slog.String("session", sess.ID()),
			slog.String("verdict", verdict.Message()))
		return "", interfaces.VerdictError(verdict)
	}

	records := sess.UsableRecords()
	if len(records) < verdict.Threshold {
		// Validator and session disagree only if the batch mutated
		// between the calls; treat it as insufficiency.
		return "", &interfaces.InsufficientSharesError{Have: len(records), Need: verdict.Threshold}
	}

	parts := make([][]byte, 0, verdict.Threshold)
	for _, rec := range records[:verdict.Threshold] {
		parts = append(parts, rec.Payload)
	}

	secret, err := e.splitter.Combine(parts)
	if err != nil {
		return "", fmt.Errorf("%w: %w", interfaces.ErrReconstruction, err)
	}

	e.log.Info("Secret reconstructed",
		slog.String("session", sess.ID()),
		slog.Int("shards_used", verdict.Threshold))
	return string(secret), nil
}
