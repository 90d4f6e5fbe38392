package generation

import (
	"context"
	"strings"
	"testing"

	"github.com/seclave/shardwise/cryptoutils"
	"github.com/seclave/shardwise/interfaces"
	"github.com/seclave/shardwise/shard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "correct horse battery staple plus a few more words"

func TestParamsValidate(t *testing.T) {
	valid := Params{Secret: testSecret, TotalCount: 5, Threshold: 3}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"empty secret", func(p *Params) { p.Secret = "  \n" }},
		{"repeated word", func(p *Params) { p.Secret = "alpha bravo alpha" }},
		{"threshold below minimum", func(p *Params) { p.Threshold = 1 }},
		{"threshold above total", func(p *Params) { p.Threshold = 6; p.TotalCount = 5 }},
		{"too many shards", func(p *Params) { p.TotalCount = 8; p.Threshold = 3 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestGenerate_PlainArtifacts(t *testing.T) {
	artifacts, err := NewEngine(shard.ShamirSplitter{}, nil).Generate(Params{
		Secret:     testSecret,
		TotalCount: 5,
		Threshold:  3,
	})
	require.NoError(t, err)
	require.Len(t, artifacts, 5)

	for i, artifact := range artifacts {
		assert.Equal(t, i+1, artifact.Index, "Indices are 1-based and sequential")

		rec, err := shard.Decode(artifact.Token)
		require.NoError(t, err, "Every token must decode")
		assert.Equal(t, i+1, rec.OrdinalIndex)
		assert.Equal(t, 3, rec.Threshold)
		assert.Equal(t, 5, rec.TotalCount)

		assert.Contains(t, string(artifact.Plain), artifact.Token, "Rendered file carries the token")
		assert.Nil(t, artifact.Armored, "No password, no encrypted artifacts")
		assert.Nil(t, artifact.Packet)
	}
}

func TestGenerate_PayloadsDiffer(t *testing.T) {
	artifacts, err := NewEngine(shard.ShamirSplitter{}, nil).Generate(Params{
		Secret:     testSecret,
		TotalCount: 3,
		Threshold:  2,
	})
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, artifact := range artifacts {
		assert.False(t, seen[artifact.Token], "Tokens must be distinct")
		seen[artifact.Token] = true
	}
}

func TestGenerate_EncryptedArtifacts(t *testing.T) {
	artifacts, err := NewEngine(shard.ShamirSplitter{}, nil).Generate(Params{
		Secret:     testSecret,
		TotalCount: 3,
		Threshold:  2,
		Password:   "hunter2",
	})
	require.NoError(t, err)

	for _, artifact := range artifacts {
		assert.NotEmpty(t, artifact.Token, "Plaintext token is always kept")
		require.NotNil(t, artifact.Packet)
		require.NotNil(t, artifact.Armored)

		// Both encrypted forms must decrypt back to the token.
		plaintext, err := cryptoutils.DecryptWithPassword(artifact.Packet, "hunter2")
		require.NoError(t, err)
		assert.Equal(t, artifact.Token, string(plaintext))

		plaintext, err = cryptoutils.DecryptArtifact(artifact.Armored, "hunter2")
		require.NoError(t, err)
		assert.Equal(t, artifact.Token, string(plaintext))
	}
}

func TestGenerate_RoundTrip(t *testing.T) {
	splitter := shard.ShamirSplitter{}
	artifacts, err := NewEngine(splitter, nil).Generate(Params{
		Secret:     testSecret,
		TotalCount: 7,
		Threshold:  2,
	})
	require.NoError(t, err)

	parts := make([][]byte, 0, 2)
	for _, artifact := range artifacts[5:] {
		rec, err := shard.Decode(artifact.Token)
		require.NoError(t, err)
		parts = append(parts, rec.Payload)
	}

	secret, err := splitter.Combine(parts)
	require.NoError(t, err)
	assert.Equal(t, testSecret, string(secret))
}

func TestArtifactFileNames(t *testing.T) {
	a := Artifact{Index: 2}
	assert.Equal(t, "shard-2-of-5.txt", a.PlainFileName(5))
	assert.Equal(t, "shard-2-of-5.asc", a.ArmoredFileName(5))
	assert.Equal(t, "shard-2-of-5.enc", a.PacketFileName(5))
}

// memoryBackend records what Backup hands to storage.
type memoryBackend struct {
	stored map[interfaces.ArtifactID][]byte
	kinds  []interfaces.ArtifactKind
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{stored: make(map[interfaces.ArtifactID][]byte)}
}

func (m *memoryBackend) Fetch(_ context.Context, id interfaces.ArtifactID, _ interfaces.ArtifactKind) ([]byte, error) {
	data, ok := m.stored[id]
	if !ok {
		return nil, interfaces.ErrArtifactNotFound
	}
	return data, nil
}

func (m *memoryBackend) Store(_ context.Context, data []byte, kind interfaces.ArtifactKind) (interfaces.ArtifactID, error) {
	id := interfaces.ComputeArtifactID(data)
	m.stored[id] = data
	m.kinds = append(m.kinds, kind)
	return id, nil
}

func (m *memoryBackend) Available(context.Context) bool { return true }
func (m *memoryBackend) Name() string                   { return "memory" }
func (m *memoryBackend) LocationURI() string            { return "memory://" }

func TestBackup_PrefersEncryptedArtifacts(t *testing.T) {
	engine := NewEngine(shard.ShamirSplitter{}, nil)
	artifacts, err := engine.Generate(Params{
		Secret:     testSecret,
		TotalCount: 3,
		Threshold:  2,
		Password:   "hunter2",
	})
	require.NoError(t, err)

	backend := newMemoryBackend()
	ids, err := engine.Backup(context.Background(), backend, artifacts)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	for i, id := range ids {
		data, err := backend.Fetch(context.Background(), id, interfaces.EncryptedKind)
		require.NoError(t, err)
		assert.Equal(t, artifacts[i].Armored, data, "Only the armored artifact goes to storage")
		assert.Equal(t, interfaces.EncryptedKind, backend.kinds[i])
		assert.False(t, strings.Contains(string(data), artifacts[i].Token), "Stored data must not leak the token")
	}
}

func TestBackup_PlainArtifactsWhenUnencrypted(t *testing.T) {
	engine := NewEngine(shard.ShamirSplitter{}, nil)
	artifacts, err := engine.Generate(Params{
		Secret:     testSecret,
		TotalCount: 3,
		Threshold:  2,
	})
	require.NoError(t, err)

	backend := newMemoryBackend()
	ids, err := engine.Backup(context.Background(), backend, artifacts)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	data, err := backend.Fetch(context.Background(), ids[0], interfaces.ShareKind)
	require.NoError(t, err)
	assert.Equal(t, artifacts[0].Plain, data)
	assert.Equal(t, interfaces.ShareKind, backend.kinds[0])
}
