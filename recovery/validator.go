package recovery

import (
	"github.com/seclave/shardwise/interfaces"
)

// Validate judges a classified batch. It is a pure function: callers
// re-invoke it after every batch mutation instead of patching a cached
// verdict.
//
// Priority order: empty batch waits; nothing decodable and nothing
// pending is an invalid format; nothing decodable with encrypted inputs
// pending requires a password; duplicate indices poison the batch; too
// few shards is insufficiency; otherwise ready.
func Validate(batch []interfaces.ClassifiedInput) interfaces.Verdict {
	threshold := ResolveThreshold(batch)

	if len(batch) == 0 {
		return interfaces.Verdict{Kind: interfaces.VerdictWaiting, Threshold: threshold}
	}

	usable := 0
	pending := 0
	seen := make(map[int]bool)
	duplicate := false
	for _, in := range batch {
		switch {
		case in.Usable():
			usable++
			if seen[in.Record.OrdinalIndex] {
				duplicate = true
			}
			seen[in.Record.OrdinalIndex] = true
		case in.Format.Encrypted():
			pending++
		}
	}

	verdict := interfaces.Verdict{Usable: usable, Threshold: threshold}
	switch {
	case usable == 0 && pending == 0:
		verdict.Kind = interfaces.VerdictInvalidFormat
	case usable == 0:
		verdict.Kind = interfaces.VerdictPasswordRequired
	case duplicate:
		// Never deduplicated: the user must remove an input instead.
		verdict.Kind = interfaces.VerdictDuplicateIndices
	case usable < threshold:
		verdict.Kind = interfaces.VerdictInsufficientShares
	default:
		verdict.Kind = interfaces.VerdictReady
	}
	return verdict
}
