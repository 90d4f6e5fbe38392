// Package cryptoutils implements the password-based encryption primitive
// for shard artifacts.
//
// An encrypted shard travels in one of two forms:
//
//   - a binary packet whose leading byte (0xC5) has the high bit set, so
//     detectors can spot it without parsing: [magic][version][salt][nonce][ciphertext]
//   - the same packet wrapped in textual armor delimited by
//     "-----BEGIN SHARDWISE ENCRYPTED SHARD-----"
//
// Keys are derived from the password with Argon2id (time=1, memory=64MiB,
// threads=4) and the payload is sealed with AES-256-GCM. A failed GCM
// authentication on a well-formed packet is reported as ErrWrongPassword,
// distinct from ErrMalformedCiphertext, because the two demand different
// recovery actions: retry the password versus give up on the input.
package cryptoutils
