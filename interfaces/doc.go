// Package interfaces defines the shared types and contracts between the
// shardwise components: the classification of raw inputs, the recovery
// verdict, the error taxonomy, and the interfaces that let the engines
// stay independent of concrete implementations (secret splitting,
// password acquisition, artifact storage).
//
// Keeping these in one package means the recovery and generation
// engines, the HTTP handlers, and the CLI all speak the same vocabulary
// without importing each other.
package interfaces
