package interfaces

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat: the batch holds inputs but none is usable or
	// pending decryption.
	ErrInvalidFormat = errors.New("no shard could be recognized in the supplied input")

	// ErrDuplicateIndices: the batch holds two shards with the same
	// ordinal index. Fatal for the whole batch until an input is removed.
	ErrDuplicateIndices = errors.New("shards conflict: duplicate shard indices")

	// ErrPasswordRequired: encrypted inputs remain unresolved.
	ErrPasswordRequired = errors.New("encrypted shards remain; a password is required")

	// ErrPromptCancelled: the user backed out of the password prompt.
	// A distinct terminal outcome, not a generic failure.
	ErrPromptCancelled = errors.New("password prompt cancelled")

	// ErrReconstruction wraps a failure of the opaque combine primitive,
	// surfaced verbatim underneath. Typically structurally valid but
	// mutually inconsistent shards.
	ErrReconstruction = errors.New("secret reconstruction failed")

	// Per-input file acceptance errors, reported individually before
	// classification without aborting the rest of the batch.
	ErrFileTooLarge         = errors.New("file exceeds the maximum accepted size")
	ErrDuplicateFilename    = errors.New("a file with this name was already added")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
)

// InsufficientSharesError reports that the batch holds fewer usable
// shards than the effective threshold. Recoverable by adding input.
type InsufficientSharesError struct {
	Have int
	Need int
}

// Error formats the stable have/need message.
func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("need more shards: have %d, need %d", e.Have, e.Need)
}

// VerdictError translates a non-Ready verdict into its taxonomy error.
// Ready and Waiting verdicts have no error form; callers should not ask.
func VerdictError(v Verdict) error {
	switch v.Kind {
	case VerdictInvalidFormat:
		return ErrInvalidFormat
	case VerdictPasswordRequired:
		return ErrPasswordRequired
	case VerdictDuplicateIndices:
		return ErrDuplicateIndices
	case VerdictInsufficientShares:
		return &InsufficientSharesError{Have: v.Usable, Need: v.Threshold}
	case VerdictWaiting:
		return &InsufficientSharesError{Have: 0, Need: v.Threshold}
	default:
		return nil
	}
}
