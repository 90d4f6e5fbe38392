// Package generation splits a secret into shard artifacts.
//
// The engine validates the split parameters (2 ≤ threshold ≤ total ≤ 7,
// non-empty secret, no repeated words), runs the opaque split primitive,
// wraps each raw share in a shard record, and encodes the single-line
// tokens. When a password is supplied every token additionally gets an
// armored text artifact and a binary packet artifact; the plaintext
// token is always kept; encryption is an extra export, never a
// replacement.
//
// Rendered artifacts can be written to disk and, optionally, backed up
// through any storage backend (file, S3, IPFS, Vault).
package generation
