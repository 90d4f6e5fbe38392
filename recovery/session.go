package recovery

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/seclave/shardwise/interfaces"
	"github.com/seclave/shardwise/shard"
)

// MaxFileSize is the largest uploaded file accepted into a batch. Shard
// artifacts are tiny; anything bigger is a mistake.
const MaxFileSize = 256 * 1024

// Accepted upload extensions, split into the plaintext-expected and
// encrypted-expected classes.
var (
	plaintextExtensions = map[string]bool{".txt": true}
	encryptedExtensions = map[string]bool{".enc": true, ".asc": true}
)

// Session owns the batch of one recovery attempt. Every mutation
// (a new paste, a new file, a decryption outcome) goes through the
// session, and the verdict is recomputed from scratch on each request
// so it can never go stale. The session is discarded on success or
// abandonment; nothing about a batch outlives it.
type Session struct {
	id  string
	log *slog.Logger

	mu         sync.Mutex
	entries    []entry
	fileNames  map[string]bool
	pasteCount int
}

// entry pairs a classified input with its decryption bookkeeping.
// invalid marks encrypted inputs that decrypted cleanly to a payload
// that is not a shard token; they are out of the pending set for good.
type entry struct {
	input   interfaces.ClassifiedInput
	invalid bool
}

// NewSession creates an empty session.
func NewSession(log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		id:        uuid.Must(uuid.NewRandom()).String(),
		log:       log,
		fileNames: make(map[string]bool),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// AddPaste classifies pasted text and appends the resulting candidates
// to the batch. The classified inputs are returned so callers can show
// per-line feedback.
func (s *Session) AddPaste(text string) []interfaces.ClassifiedInput {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pasteCount++
	source := fmt.Sprintf("paste %d", s.pasteCount)
	classified := ClassifyPaste(source, text)
	for _, in := range classified {
		s.entries = append(s.entries, entry{input: in})
	}

	s.log.Debug("Paste added to batch",
		slog.String("session", s.id),
		slog.String("source", source),
		slog.Int("candidates", len(classified)))
	return classified
}

// AddFile validates and classifies an uploaded file. Extension class,
// size, and duplicate-name checks run before classification; a rejected
// file never enters the batch and never aborts what is already there.
func (s *Session) AddFile(name string, content []byte) (interfaces.ClassifiedInput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ext := strings.ToLower(filepath.Ext(name))
	if !plaintextExtensions[ext] && !encryptedExtensions[ext] {
		return interfaces.ClassifiedInput{}, fmt.Errorf("%w: %q", interfaces.ErrUnsupportedExtension, ext)
	}
	if len(content) > MaxFileSize {
		return interfaces.ClassifiedInput{}, fmt.Errorf("%w: %s is %d bytes, limit %d", interfaces.ErrFileTooLarge, name, len(content), MaxFileSize)
	}
	if s.fileNames[name] {
		return interfaces.ClassifiedInput{}, fmt.Errorf("%w: %s", interfaces.ErrDuplicateFilename, name)
	}

	in := ClassifyFile(name, content)
	s.fileNames[name] = true
	s.entries = append(s.entries, entry{input: in})

	s.log.Debug("File added to batch",
		slog.String("session", s.id),
		slog.String("file", name),
		slog.String("format", in.Format.String()))
	return in, nil
}

// Verdict revalidates the whole batch. Encrypted inputs marked invalid
// by a decryption pass are excluded from the pending set.
func (s *Session) Verdict() interfaces.Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Validate(s.effectiveLocked())
}

// Inputs returns a snapshot of the batch in input order.
func (s *Session) Inputs() []interfaces.ClassifiedInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effectiveLocked()
}

// PendingEncrypted counts the encrypted inputs still awaiting a
// password.
func (s *Session) PendingEncrypted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pendingLocked())
}

// UsableRecords returns the valid plaintext records in stable input
// order, the order reconstruction draws from.
func (s *Session) UsableRecords() []shard.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []shard.Record
	for _, e := range s.entries {
		if e.input.Usable() {
			records = append(records, *e.input.Record)
		}
	}
	return records
}

// effectiveLocked renders the batch for validation: invalidated
// encrypted entries are demoted to unrecognized so they no longer count
// as pending.
func (s *Session) effectiveLocked() []interfaces.ClassifiedInput {
	out := make([]interfaces.ClassifiedInput, 0, len(s.entries))
	for _, e := range s.entries {
		in := e.input
		if e.invalid && in.Format.Encrypted() {
			in.Format = interfaces.FormatUnrecognized
		}
		out = append(out, in)
	}
	return out
}

// pendingLocked lists the indices of encrypted entries still pending.
func (s *Session) pendingLocked() []int {
	var pending []int
	for i, e := range s.entries {
		if e.input.Format.Encrypted() && !e.invalid {
			pending = append(pending, i)
		}
	}
	return pending
}

// pendingSnapshot copies the pending entries for a decryption pass so
// the lock is not held across crypto calls.
func (s *Session) pendingSnapshot() []pendingInput {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []pendingInput
	for _, i := range s.pendingLocked() {
		out = append(out, pendingInput{index: i, source: s.entries[i].input.Source, raw: s.entries[i].input.Raw})
	}
	return out
}

type pendingInput struct {
	index  int
	source string
	raw    []byte
}

// resolvePending replaces a pending encrypted entry with its decrypted
// plaintext record.
func (s *Session) resolvePending(index int, rec shard.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &s.entries[index]
	e.input.Format = interfaces.FormatPlaintext
	e.input.Record = &rec
	e.input.Err = nil
	e.invalid = false
}

// markInvalid takes a pending entry out of the rotation: it decrypted
// to something that is not a shard token, or its framing is broken in a
// way no password can fix.
func (s *Session) markInvalid(index int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &s.entries[index]
	e.invalid = true
	e.input.Err = err

	s.log.Warn("Encrypted input marked invalid",
		slog.String("session", s.id),
		slog.String("source", e.input.Source),
		"err", err)
}
