// Package shard defines the shard record, one piece of a split secret,
// and its transportable single-line token encoding.
//
// A token looks like:
//
//	shardwise1 i=2 t=3 n=5 p=9hW3...base64url...
//
// The magic word carries the format version. Fields after it are k=v
// pairs; decoders ignore unknown keys so newer encoders can add fields
// without breaking older readers. Encode and Decode are exact inverses
// for every valid record.
//
// The package also wraps Shamir's Secret Sharing (hashicorp/vault's
// implementation) behind the Split/Combine pair used by the generation
// and recovery engines.
package shard
