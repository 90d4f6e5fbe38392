// Package recovery turns a messy batch of user-supplied shard candidates
// back into the original secret.
//
// The pipeline: format detection classifies every raw input exactly once
// into a tagged verdict (plaintext shard, armored-encrypted,
// binary-encrypted, unrecognized); the validator judges the batch as a
// pure function, re-run in full after every mutation; the decryption
// coordinator drives password prompts with a bounded retry budget; and
// the engine hands threshold-many payloads to the opaque combine
// primitive.
//
// Inputs arrive as pasted text, uploaded files, or artifacts fetched
// back from backup storage by content ID (Restore); all three land in
// the same session and are judged by the same rules.
//
// Two invariants hold throughout: reconstruction never proceeds with
// fewer usable shards than the effective threshold, and duplicate shard
// indices poison the whole batch rather than being silently merged.
// The batch lives in a Session owned by one recovery attempt and is
// discarded with it.
package recovery
