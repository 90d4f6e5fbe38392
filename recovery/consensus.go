package recovery

import (
	"github.com/seclave/shardwise/interfaces"
	"github.com/seclave/shardwise/shard"
)

// DefaultThreshold is the conservative fallback when no candidate in
// the batch states a threshold at all.
const DefaultThreshold = 3

// ResolveThreshold settles one effective threshold for the batch.
// Input order is authoritative: the first fully valid record's
// threshold wins. When no record validates, the most frequent claimed
// threshold among structurally decoded candidates is used, ties going
// to the first seen. With no candidates at all the default applies.
//
// Deliberately NOT rejected here: a batch mixing shards from unrelated
// splits with agreeing thresholds resolves cleanly and will only fail at
// reconstruction. See the consensus notes in DESIGN.md.
func ResolveThreshold(batch []interfaces.ClassifiedInput) int {
	for _, in := range batch {
		if in.Usable() {
			return in.Record.Threshold
		}
	}

	counts := make(map[int]int)
	var order []int
	for _, in := range batch {
		if in.Record == nil || in.Record.Threshold < shard.MinThreshold {
			continue
		}
		if counts[in.Record.Threshold] == 0 {
			order = append(order, in.Record.Threshold)
		}
		counts[in.Record.Threshold]++
	}

	best, bestCount := 0, 0
	for _, threshold := range order {
		if counts[threshold] > bestCount {
			best, bestCount = threshold, counts[threshold]
		}
	}
	if bestCount > 0 {
		return best
	}

	return DefaultThreshold
}
