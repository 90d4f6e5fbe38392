package shard

import (
	"errors"
	"fmt"

	"github.com/hashicorp/vault/shamir"
)

// ShamirSplitter implements secret splitting and recombination on top of
// hashicorp/vault's Shamir implementation. It is the production
// SecretSplitter; tests substitute failing implementations to exercise
// reconstruction error paths.
type ShamirSplitter struct{}

// Split divides the secret into total parts of which any threshold
// recombine to the original. Arguments are validated against the
// package bounds before the underlying implementation runs.
func (ShamirSplitter) Split(secret []byte, total, threshold int) ([][]byte, error) {
	if len(secret) == 0 {
		return nil, errors.New("cannot split an empty secret")
	}
	if threshold < MinThreshold {
		return nil, fmt.Errorf("threshold must be at least %d, got %d", MinThreshold, threshold)
	}
	if total < threshold {
		return nil, fmt.Errorf("total shares %d must be at least the threshold %d", total, threshold)
	}
	if total > MaxTotalShares {
		return nil, fmt.Errorf("total shares %d exceeds the maximum of %d", total, MaxTotalShares)
	}

	parts, err := shamir.Split(secret, total, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to split secret: %w", err)
	}
	return parts, nil
}

// Combine reconstructs the secret from threshold-many parts. The parts
// must come from the same split; mutually inconsistent parts either
// error here or silently produce garbage, which is why callers validate
// shard bookkeeping before ever reaching this point.
func (ShamirSplitter) Combine(parts [][]byte) ([]byte, error) {
	if len(parts) < MinThreshold {
		return nil, fmt.Errorf("need at least %d parts to combine, got %d", MinThreshold, len(parts))
	}

	secret, err := shamir.Combine(parts)
	if err != nil {
		return nil, fmt.Errorf("failed to combine parts: %w", err)
	}
	return secret, nil
}
