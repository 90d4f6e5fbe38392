// Package storage provides content-addressed archival of shard
// artifacts across several backends.
//
// Every backend implements interfaces.StorageBackend: artifacts are
// stored and fetched by their SHA-256 content ID, namespaced by
// artifact kind (plaintext share files vs encrypted artifacts).
// Backends are created from URIs by StorageBackendFactory:
//
//	file:///var/backups/shards/
//	s3://ACCESS:SECRET@bucket/prefix/?region=eu-west-1
//	ipfs://localhost:5001/
//	vault://vault.example.com:8200/secret/shardwise?token=...
//
// CreateMultiBackend aggregates several locations into one redundant
// backend that stores everywhere and fetches from the first holder.
package storage
