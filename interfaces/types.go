package interfaces

import (
	"context"
	"fmt"

	"github.com/seclave/shardwise/shard"
)

// Format is the verdict of format detection over one raw input.
type Format int

const (
	// FormatUnrecognized means the input matched no known shape. The raw
	// content is kept attached so later decryption attempts can still
	// try it.
	FormatUnrecognized Format = iota

	// FormatPlaintext means the input decoded to a valid shard record.
	FormatPlaintext

	// FormatArmored means the input carries the textual armor header of
	// an encrypted shard.
	FormatArmored

	// FormatBinary means the input looks like a binary encrypted packet.
	FormatBinary
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatPlaintext:
		return "plaintext"
	case FormatArmored:
		return "armored-encrypted"
	case FormatBinary:
		return "binary-encrypted"
	case FormatUnrecognized:
		return "unrecognized"
	default:
		return "unknown"
	}
}

// Encrypted reports whether the input still needs a password.
func (f Format) Encrypted() bool {
	return f == FormatArmored || f == FormatBinary
}

// ClassifiedInput is one raw input together with its detection verdict.
// Inputs are transient: they live for a single recovery attempt and are
// discarded with the session.
type ClassifiedInput struct {
	// Source describes where the input came from, for error reporting:
	// "paste line 3", "file shard-2.enc".
	Source string

	// Format is the detector's verdict.
	Format Format

	// Record is the decoded shard record when Format is
	// FormatPlaintext. For unrecognized inputs that decoded
	// structurally but failed validation it holds the partial record,
	// so threshold consensus can still count its claimed threshold.
	Record *shard.Record

	// Raw is the original content, kept for decryption attempts.
	Raw []byte

	// Err records a per-input problem (decode failure, decrypt of a
	// malformed payload). Per-input errors never abort the batch.
	Err error
}

// Usable reports whether the input contributes a valid plaintext record.
func (c ClassifiedInput) Usable() bool {
	return c.Format == FormatPlaintext && c.Record != nil
}

// VerdictKind enumerates the possible states of a recovery batch.
type VerdictKind int

const (
	// VerdictWaiting: the batch is empty; nothing to judge yet.
	VerdictWaiting VerdictKind = iota

	// VerdictInvalidFormat: inputs were supplied but none is a shard or
	// an encrypted candidate.
	VerdictInvalidFormat

	// VerdictPasswordRequired: no usable shard yet, but encrypted
	// candidates are pending a password.
	VerdictPasswordRequired

	// VerdictDuplicateIndices: two usable shards claim the same ordinal
	// index; the batch is in conflict and is never silently deduplicated.
	VerdictDuplicateIndices

	// VerdictInsufficientShares: fewer usable shards than the effective
	// threshold.
	VerdictInsufficientShares

	// VerdictReady: enough usable shards to attempt reconstruction.
	VerdictReady
)

// Verdict is the validator's judgement over a batch. Usable counts the
// valid plaintext records; Threshold is the consensus threshold the
// batch is held against.
type Verdict struct {
	Kind      VerdictKind
	Usable    int
	Threshold int
}

// Message renders the stable user-facing description of the verdict.
func (v Verdict) Message() string {
	switch v.Kind {
	case VerdictWaiting:
		return "waiting for shards"
	case VerdictInvalidFormat:
		return "no shard could be recognized in the supplied input"
	case VerdictPasswordRequired:
		return "encrypted shards found; a password is required"
	case VerdictDuplicateIndices:
		return "shards conflict: two or more shards share the same index"
	case VerdictInsufficientShares:
		return fmt.Sprintf("need more shards: have %d, need %d", v.Usable, v.Threshold)
	case VerdictReady:
		return fmt.Sprintf("ready to recover with %d of %d required shards", v.Usable, v.Threshold)
	default:
		return "unknown verdict"
	}
}

// SecretSplitter is the opaque splitting/recombination primitive. The
// production implementation is shard.ShamirSplitter; engines never care
// about the underlying math.
type SecretSplitter interface {
	// Split divides the secret into total parts, any threshold of which
	// reconstruct it.
	Split(secret []byte, total, threshold int) ([][]byte, error)

	// Combine reconstructs the secret from threshold-many parts.
	Combine(parts [][]byte) ([]byte, error)
}

// PasswordSource supplies passwords for pending encrypted inputs. The
// call suspends until the user answers; implementations must honor
// context cancellation and return ErrPromptCancelled when the user
// backs out.
type PasswordSource interface {
	// Password asks for a password. attempt is 1-based;
	// afterWrongPassword is true when the previous attempt failed
	// authentication, so the prompt can say "incorrect, retry" instead
	// of the neutral first-time wording.
	Password(ctx context.Context, attempt int, afterWrongPassword bool) (string, error)
}
