package shard

import (
	"errors"
	"fmt"
)

// MaxTotalShares is the upper bound on how many shards a single secret
// may be split into. Shamir supports up to 255 parts, but batches are
// kept small so every shard can be handled by hand.
const MaxTotalShares = 7

// MinThreshold is the smallest reconstruction threshold that makes
// splitting meaningful.
const MinThreshold = 2

// ErrRecordInvalid is returned when a structurally well-formed record
// violates the index/threshold/total invariants.
var ErrRecordInvalid = errors.New("invalid shard record")

// Record is one shard of a split secret together with the bookkeeping
// needed to recombine it: its 1-based position in the split, the
// reconstruction threshold, and the total number of shards produced.
type Record struct {
	OrdinalIndex int
	Threshold    int
	TotalCount   int
	Payload      []byte
}

// Validate checks the record invariants: ordinal index within
// [1, total], threshold at least MinThreshold and no greater than the
// total, and a non-empty payload.
func (r Record) Validate() error {
	if r.Threshold < MinThreshold {
		return fmt.Errorf("%w: threshold %d below minimum %d", ErrRecordInvalid, r.Threshold, MinThreshold)
	}
	if r.TotalCount < r.Threshold {
		return fmt.Errorf("%w: total count %d below threshold %d", ErrRecordInvalid, r.TotalCount, r.Threshold)
	}
	if r.OrdinalIndex < 1 || r.OrdinalIndex > r.TotalCount {
		return fmt.Errorf("%w: ordinal index %d outside [1,%d]", ErrRecordInvalid, r.OrdinalIndex, r.TotalCount)
	}
	if len(r.Payload) == 0 {
		return fmt.Errorf("%w: empty payload", ErrRecordInvalid)
	}
	return nil
}

// Equal compares two records field by field.
func (r Record) Equal(other Record) bool {
	if r.OrdinalIndex != other.OrdinalIndex || r.Threshold != other.Threshold || r.TotalCount != other.TotalCount {
		return false
	}
	if len(r.Payload) != len(other.Payload) {
		return false
	}
	for i := range r.Payload {
		if r.Payload[i] != other.Payload[i] {
			return false
		}
	}
	return true
}

// String renders the record for logs without exposing the payload.
func (r Record) String() string {
	return fmt.Sprintf("shard %d of %d (threshold %d, %d payload bytes)", r.OrdinalIndex, r.TotalCount, r.Threshold, len(r.Payload))
}
