package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/seclave/shardwise/cryptoutils"
	"github.com/seclave/shardwise/interfaces"
	"github.com/seclave/shardwise/shard"
)

// MaxPasswordAttempts bounds the password retry loop. The observed
// behavior this replaces retried until the user gave up; three attempts
// is the documented cap here, with cancellation always available.
const MaxPasswordAttempts = 3

// PassResult summarizes one decryption pass over the pending encrypted
// inputs.
type PassResult struct {
	// Decrypted counts inputs that became usable plaintext shards.
	Decrypted int
	// WrongPassword counts inputs left pending by an authentication
	// failure; a retry with another password may still resolve them.
	WrongPassword int
	// Invalid counts inputs taken out of the rotation: decrypted
	// payload that is not a shard token, or framing no password fixes.
	Invalid int
	// Verdict is the batch verdict after the pass.
	Verdict interfaces.Verdict
}

// ApplyPassword runs a single decryption pass: every pending encrypted
// input is tried with the given password, outcomes are recorded on the
// session, and the batch is revalidated. A successful decrypt whose
// payload does not decode is marked invalid and never retried; only a
// wrong-password outcome keeps an input pending.
func (s *Session) ApplyPassword(ctx context.Context, password string) (PassResult, error) {
	var res PassResult

	for _, pending := range s.pendingSnapshot() {
		if err := ctx.Err(); err != nil {
			res.Verdict = s.Verdict()
			return res, err
		}

		plaintext, err := cryptoutils.DecryptArtifact(pending.raw, password)
		switch {
		case err == nil:
			rec, derr := shard.Decode(strings.TrimSpace(string(plaintext)))
			if derr != nil {
				// Password was right, payload is garbage. Not a password
				// problem; retrying cannot help.
				s.markInvalid(pending.index, fmt.Errorf("%s: decrypted payload is not a shard token: %w", pending.source, derr))
				res.Invalid++
				continue
			}
			s.resolvePending(pending.index, rec)
			res.Decrypted++
		case errors.Is(err, cryptoutils.ErrWrongPassword):
			res.WrongPassword++
		default:
			s.markInvalid(pending.index, fmt.Errorf("%s: %w", pending.source, err))
			res.Invalid++
		}
	}

	res.Verdict = s.Verdict()
	return res, nil
}

// Coordinator drives password acquisition and retry for all pending
// encrypted inputs of a session. It suspends at every prompt and never
// loops unbounded: after MaxPasswordAttempts the latest verdict stands.
type Coordinator struct {
	source interfaces.PasswordSource
	log    *slog.Logger
}

// NewCoordinator creates a coordinator asking the given source.
func NewCoordinator(source interfaces.PasswordSource, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{source: source, log: log}
}

// Run prompts and decrypts until no encrypted input is pending, the
// attempt budget is spent, or the prompt is cancelled. Cancellation
// unwinds only the current pass: shards decrypted by earlier passes
// stay usable, and the session's verdict is returned alongside the
// cancellation error. Spending the whole budget on wrong passwords is
// its own terminal outcome, wrapping cryptoutils.ErrWrongPassword so
// callers can tell "the password was wrong" from "no password was
// given".
//
// The returned verdict is never Ready while encrypted inputs remain
// unresolved with zero usable shards; Ready always means threshold-many
// decoded plaintext records.
func (c *Coordinator) Run(ctx context.Context, sess *Session) (interfaces.Verdict, error) {
	afterWrong := false

	for attempt := 1; attempt <= MaxPasswordAttempts; attempt++ {
		if sess.PendingEncrypted() == 0 {
			break
		}

		password, err := c.source.Password(ctx, attempt, afterWrong)
		if err != nil {
			if errors.Is(err, interfaces.ErrPromptCancelled) || errors.Is(err, context.Canceled) {
				return sess.Verdict(), fmt.Errorf("decryption pass abandoned: %w", interfaces.ErrPromptCancelled)
			}
			return sess.Verdict(), fmt.Errorf("password prompt failed: %w", err)
		}

		res, err := sess.ApplyPassword(ctx, password)
		if err != nil {
			return res.Verdict, fmt.Errorf("decryption pass interrupted: %w", err)
		}

		c.log.Debug("Decryption pass finished",
			slog.String("session", sess.ID()),
			slog.Int("attempt", attempt),
			slog.Int("decrypted", res.Decrypted),
			slog.Int("wrong_password", res.WrongPassword),
			slog.Int("invalid", res.Invalid))

		afterWrong = res.WrongPassword > 0
	}

	if afterWrong && sess.PendingEncrypted() > 0 {
		return sess.Verdict(), fmt.Errorf("password attempts exhausted: %w", cryptoutils.ErrWrongPassword)
	}
	return sess.Verdict(), nil
}
