package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/seclave/shardwise/cryptoutils"
	"github.com/seclave/shardwise/interfaces"
	"github.com/seclave/shardwise/shard"
)

// Params configures one split.
type Params struct {
	// Secret is the text to split. Must be non-empty and must not
	// repeat a word; a repeated word in a recovery phrase is almost
	// always a transcription mistake, caught here before it is
	// propagated into shards.
	Secret string

	// TotalCount is the number of shards to produce.
	TotalCount int

	// Threshold is how many shards reconstruction requires.
	Threshold int

	// Password, when non-empty, additionally produces encrypted
	// artifacts for every shard.
	Password string
}

// Validate checks the split preconditions.
func (p Params) Validate() error {
	if strings.TrimSpace(p.Secret) == "" {
		return errors.New("secret must not be empty")
	}
	seen := make(map[string]bool)
	for _, word := range strings.Fields(p.Secret) {
		if seen[word] {
			return fmt.Errorf("secret words must be unique: %q repeats", word)
		}
		seen[word] = true
	}

	if p.Threshold < shard.MinThreshold {
		return fmt.Errorf("threshold must be at least %d, got %d", shard.MinThreshold, p.Threshold)
	}
	if p.TotalCount < p.Threshold {
		return fmt.Errorf("total shards %d must be at least the threshold %d", p.TotalCount, p.Threshold)
	}
	if p.TotalCount > shard.MaxTotalShares {
		return fmt.Errorf("total shards %d exceeds the maximum of %d", p.TotalCount, shard.MaxTotalShares)
	}
	return nil
}

// Artifact is everything produced for one shard: the token itself plus
// the rendered file contents. Armored and Packet are nil unless a
// password was supplied.
type Artifact struct {
	Index   int
	Token   string
	Plain   []byte // preamble + token, for the .txt file
	Armored []byte // armored encrypted artifact, for the .asc file
	Packet  []byte // binary encrypted artifact, for the .enc file
}

// PlainFileName returns the download name of the plaintext shard file.
func (a Artifact) PlainFileName(total int) string {
	return fmt.Sprintf("shard-%d-of-%d.txt", a.Index, total)
}

// ArmoredFileName returns the download name of the armored artifact.
func (a Artifact) ArmoredFileName(total int) string {
	return fmt.Sprintf("shard-%d-of-%d.asc", a.Index, total)
}

// PacketFileName returns the download name of the binary artifact.
func (a Artifact) PacketFileName(total int) string {
	return fmt.Sprintf("shard-%d-of-%d.enc", a.Index, total)
}

// Engine produces shard artifacts from a secret.
type Engine struct {
	splitter interfaces.SecretSplitter
	log      *slog.Logger
}

// NewEngine creates a generation engine on top of the given splitting
// primitive.
func NewEngine(splitter interfaces.SecretSplitter, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{splitter: splitter, log: log}
}

// Generate splits the secret and renders one artifact per shard.
func (e *Engine) Generate(params Params) ([]Artifact, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	parts, err := e.splitter.Split([]byte(params.Secret), params.TotalCount, params.Threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to split secret: %w", err)
	}

	artifacts := make([]Artifact, 0, len(parts))
	for i, part := range parts {
		rec := shard.Record{
			OrdinalIndex: i + 1,
			Threshold:    params.Threshold,
			TotalCount:   params.TotalCount,
			Payload:      part,
		}

		token, err := shard.Encode(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to encode shard %d: %w", rec.OrdinalIndex, err)
		}

		artifact := Artifact{
			Index: rec.OrdinalIndex,
			Token: token,
			Plain: renderPlainFile(rec, token),
		}

		if params.Password != "" {
			packet, err := cryptoutils.EncryptWithPassword([]byte(token), params.Password)
			if err != nil {
				return nil, fmt.Errorf("failed to encrypt shard %d: %w", rec.OrdinalIndex, err)
			}
			artifact.Packet = packet
			artifact.Armored = cryptoutils.Armor(packet)
		}

		artifacts = append(artifacts, artifact)
	}

	e.log.Info("Secret split into shards",
		slog.Int("total", params.TotalCount),
		slog.Int("threshold", params.Threshold),
		slog.Bool("encrypted", params.Password != ""))
	return artifacts, nil
}

// Backup stores the artifacts through the given backend and returns the
// content IDs in artifact order. When encrypted artifacts exist only
// those are backed up; a plaintext shard on remote storage would defeat
// the point of splitting.
func (e *Engine) Backup(ctx context.Context, backend interfaces.StorageBackend, artifacts []Artifact) ([]interfaces.ArtifactID, error) {
	ids := make([]interfaces.ArtifactID, 0, len(artifacts))
	for _, artifact := range artifacts {
		data := artifact.Plain
		kind := interfaces.ShareKind
		if artifact.Armored != nil {
			data = artifact.Armored
			kind = interfaces.EncryptedKind
		}

		id, err := backend.Store(ctx, data, kind)
		if err != nil {
			return ids, fmt.Errorf("failed to back up shard %d: %w", artifact.Index, err)
		}
		ids = append(ids, id)

		e.log.Debug("Shard artifact backed up",
			slog.Int("shard", artifact.Index),
			slog.String("artifact_id", id.String()),
			slog.String("backend", backend.Name()))
	}
	return ids, nil
}

// renderPlainFile builds the downloadable plaintext shard file: a short
// human-readable preamble followed by the token on its own line. The
// decoder ignores the preamble because only the token line parses.
func renderPlainFile(rec shard.Record, token string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "Shardwise secret shard %d of %d.\n", rec.OrdinalIndex, rec.TotalCount)
	fmt.Fprintf(&b, "Any %d of the %d shards recover the secret; fewer reveal nothing.\n", rec.Threshold, rec.TotalCount)
	b.WriteString("Keep this file private and separate from the other shards.\n")
	b.WriteString("\n")
	b.WriteString(token)
	b.WriteString("\n")
	return []byte(b.String())
}
