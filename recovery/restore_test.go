package recovery

import (
	"context"
	"testing"

	"github.com/seclave/shardwise/generation"
	"github.com/seclave/shardwise/interfaces"
	"github.com/seclave/shardwise/shard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// archiveStub holds artifacts in memory, namespaced by kind like the
// real backends.
type archiveStub struct {
	artifacts map[interfaces.ArtifactKind]map[string][]byte
}

func newArchiveStub() *archiveStub {
	return &archiveStub{artifacts: make(map[interfaces.ArtifactKind]map[string][]byte)}
}

func (s *archiveStub) Store(_ context.Context, data []byte, kind interfaces.ArtifactKind) (interfaces.ArtifactID, error) {
	id := interfaces.ComputeArtifactID(data)
	if s.artifacts[kind] == nil {
		s.artifacts[kind] = make(map[string][]byte)
	}
	s.artifacts[kind][id.String()] = data
	return id, nil
}

func (s *archiveStub) Fetch(_ context.Context, id interfaces.ArtifactID, kind interfaces.ArtifactKind) ([]byte, error) {
	data, ok := s.artifacts[kind][id.String()]
	if !ok {
		return nil, interfaces.ErrArtifactNotFound
	}
	return data, nil
}

func (s *archiveStub) Available(context.Context) bool { return true }
func (s *archiveStub) Name() string                   { return "stub" }
func (s *archiveStub) LocationURI() string            { return "stub://" }

func backedUpArtifacts(t *testing.T, password string) (*archiveStub, []interfaces.ArtifactID) {
	t.Helper()
	engine := generation.NewEngine(shard.ShamirSplitter{}, nil)
	artifacts, err := engine.Generate(generation.Params{
		Secret:     testSecret,
		TotalCount: 3,
		Threshold:  2,
		Password:   password,
	})
	require.NoError(t, err)

	backend := newArchiveStub()
	ids, err := engine.Backup(context.Background(), backend, artifacts)
	require.NoError(t, err)
	return backend, ids
}

func TestRestore_EncryptedBackups(t *testing.T) {
	backend, ids := backedUpArtifacts(t, "hunter2")

	sess := NewSession(nil)
	inputs, err := Restore(context.Background(), backend, ids[:2], sess, nil)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	for _, in := range inputs {
		assert.Equal(t, interfaces.FormatArmored, in.Format, "Encrypted backups come back as armored artifacts")
	}
	assert.Equal(t, 2, sess.PendingEncrypted())

	source := &scriptedSource{answers: []string{"hunter2"}}
	secret, err := NewEngine(shard.ShamirSplitter{}, nil).Recover(context.Background(), sess, source)
	require.NoError(t, err)
	assert.Equal(t, testSecret, secret, "Restored artifacts recover like uploaded files")
}

func TestRestore_PlainBackups(t *testing.T) {
	backend, ids := backedUpArtifacts(t, "")

	sess := NewSession(nil)
	inputs, err := Restore(context.Background(), backend, ids[:2], sess, nil)
	require.NoError(t, err)
	for _, in := range inputs {
		assert.Equal(t, interfaces.FormatPlaintext, in.Format)
	}

	secret, err := NewEngine(shard.ShamirSplitter{}, nil).Recover(context.Background(), sess, nil)
	require.NoError(t, err)
	assert.Equal(t, testSecret, secret)
}

func TestRestore_UnknownID(t *testing.T) {
	backend, _ := backedUpArtifacts(t, "")

	unknown := interfaces.ComputeArtifactID([]byte("never stored"))
	sess := NewSession(nil)
	_, err := Restore(context.Background(), backend, []interfaces.ArtifactID{unknown}, sess, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrArtifactNotFound)
	assert.Empty(t, sess.Inputs(), "A failed restore adds nothing to the session")
}

func TestRestore_TamperedContent(t *testing.T) {
	backend, ids := backedUpArtifacts(t, "")
	backend.artifacts[interfaces.ShareKind][ids[0].String()] = []byte("swapped out")

	sess := NewSession(nil)
	_, err := Restore(context.Background(), backend, ids[:1], sess, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match its ID")
	assert.Empty(t, sess.Inputs())
}
