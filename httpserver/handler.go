package httpserver

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/seclave/shardwise/cryptoutils"
	"github.com/seclave/shardwise/generation"
	"github.com/seclave/shardwise/interfaces"
	"github.com/seclave/shardwise/recovery"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// RequestError pairs an HTTP status code with the underlying error.
type RequestError struct {
	StatusCode int
	Err        error
}

// Error returns the underlying error message.
func (e *RequestError) Error() string {
	return e.Err.Error()
}

// Handler processes HTTP requests for shard generation and recovery.
// Recovery sessions are kept in memory, keyed by ID, and dropped after
// a successful reconstruction.
type Handler struct {
	generator *generation.Engine
	recoverer *recovery.Engine
	log       *slog.Logger

	mu       sync.Mutex
	sessions map[string]*recovery.Session
}

// NewHandler creates a handler around the two engines.
func NewHandler(generator *generation.Engine, recoverer *recovery.Engine, log *slog.Logger) *Handler {
	return &Handler{
		generator: generator,
		recoverer: recoverer,
		log:       log,
		sessions:  make(map[string]*recovery.Session),
	}
}

type generateRequest struct {
	Secret     string `json:"secret"`
	TotalCount int    `json:"total"`
	Threshold  int    `json:"threshold"`
	Password   string `json:"password,omitempty"`
}

type generateArtifact struct {
	Index       int    `json:"index"`
	Token       string `json:"token"`
	PlainName   string `json:"plain_name"`
	Plain       string `json:"plain"`
	ArmoredName string `json:"armored_name,omitempty"`
	Armored     string `json:"armored,omitempty"`
	PacketName  string `json:"packet_name,omitempty"`
	Packet      string `json:"packet_base64,omitempty"`
}

// HandleGenerate splits a secret and returns all shard artifacts.
//
// URL format: POST /api/generate
// Request body: {"secret": "...", "total": 5, "threshold": 3, "password": "..."}
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSONBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	artifacts, err := h.generator.Generate(generation.Params{
		Secret:     req.Secret,
		TotalCount: req.TotalCount,
		Threshold:  req.Threshold,
		Password:   req.Password,
	})
	if err != nil {
		h.log.Warn("Generation rejected", "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out := make([]generateArtifact, 0, len(artifacts))
	for _, artifact := range artifacts {
		ga := generateArtifact{
			Index:     artifact.Index,
			Token:     artifact.Token,
			PlainName: artifact.PlainFileName(req.TotalCount),
			Plain:     string(artifact.Plain),
		}
		if artifact.Armored != nil {
			ga.ArmoredName = artifact.ArmoredFileName(req.TotalCount)
			ga.Armored = string(artifact.Armored)
			ga.PacketName = artifact.PacketFileName(req.TotalCount)
			ga.Packet = base64.StdEncoding.EncodeToString(artifact.Packet)
		}
		out = append(out, ga)
	}

	writeJSON(w, h.log, map[string]interface{}{"artifacts": out})
}

// HandleCreateSession opens a new recovery session.
//
// URL format: POST /api/session
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := recovery.NewSession(h.log)

	h.mu.Lock()
	h.sessions[sess.ID()] = sess
	h.mu.Unlock()

	h.log.Info("Recovery session created", slog.String("session", sess.ID()))
	writeJSON(w, h.log, map[string]string{"session_id": sess.ID()})
}

type classifiedView struct {
	Source string `json:"source"`
	Format string `json:"format"`
	Error  string `json:"error,omitempty"`
}

func classifiedViews(inputs []interfaces.ClassifiedInput) []classifiedView {
	out := make([]classifiedView, 0, len(inputs))
	for _, in := range inputs {
		view := classifiedView{Source: in.Source, Format: in.Format.String()}
		if in.Err != nil {
			view.Error = in.Err.Error()
		}
		out = append(out, view)
	}
	return out
}

// HandlePaste adds pasted text to a session's batch.
//
// URL format: POST /api/session/{session_id}/paste
// Request body: {"text": "..."}
func (h *Handler) HandlePaste(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	classified := sess.AddPaste(req.Text)
	writeJSON(w, h.log, map[string]interface{}{
		"inputs":  classifiedViews(classified),
		"verdict": verdictView(sess.Verdict()),
	})
}

// HandleFile adds an uploaded file to a session's batch.
//
// URL format: POST /api/session/{session_id}/file
// Request body: {"name": "shard-1-of-5.txt", "content_base64": "..."}
//
// A rejected file (bad extension, oversize, duplicate name) returns
// 400 without disturbing the inputs already in the batch.
func (h *Handler) HandleFile(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Name    string `json:"name"`
		Content string `json:"content_base64"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	content, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid base64 content: %v", err), http.StatusBadRequest)
		return
	}

	classified, err := sess.AddFile(req.Name, content)
	if err != nil {
		h.log.Debug("File rejected",
			slog.String("session", sess.ID()),
			slog.String("file", req.Name),
			"err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, h.log, map[string]interface{}{
		"input":   classifiedViews([]interfaces.ClassifiedInput{classified})[0],
		"verdict": verdictView(sess.Verdict()),
	})
}

// HandlePassword runs one decryption pass over the session's pending
// encrypted inputs. Clients re-submit to retry after a wrong password;
// the retry budget lives client-side since each HTTP call is one pass.
//
// URL format: POST /api/session/{session_id}/password
// Request body: {"password": "..."}
func (h *Handler) HandlePassword(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := sess.ApplyPassword(r.Context(), req.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.log, map[string]interface{}{
		"decrypted":      res.Decrypted,
		"wrong_password": res.WrongPassword,
		"invalid":        res.Invalid,
		"verdict":        verdictView(res.Verdict),
	})
}

// HandleVerdict returns the session's current verdict.
//
// URL format: GET /api/session/{session_id}/verdict
func (h *Handler) HandleVerdict(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, h.log, verdictView(sess.Verdict()))
}

// HandleRecover attempts reconstruction and, on success, discards the
// session.
//
// URL format: POST /api/session/{session_id}/recover
func (h *Handler) HandleRecover(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	// No interactive password source over HTTP: passwords arrive via
	// the password endpoint before recovery is attempted.
	secret, err := h.recoverer.Recover(r.Context(), sess, nil)
	if err != nil {
		h.log.Info("Recovery attempt failed",
			slog.String("session", sess.ID()),
			"err", err)
		http.Error(w, err.Error(), statusForRecoveryError(err))
		return
	}

	h.mu.Lock()
	delete(h.sessions, sess.ID())
	h.mu.Unlock()

	h.log.Info("Recovery session completed", slog.String("session", sess.ID()))
	writeJSON(w, h.log, map[string]string{"secret": secret})
}

// statusForRecoveryError maps the error taxonomy onto HTTP statuses.
func statusForRecoveryError(err error) int {
	var insufficient *interfaces.InsufficientSharesError
	switch {
	case errors.As(err, &insufficient),
		errors.Is(err, interfaces.ErrPasswordRequired),
		errors.Is(err, cryptoutils.ErrWrongPassword),
		errors.Is(err, interfaces.ErrDuplicateIndices):
		return http.StatusConflict
	case errors.Is(err, interfaces.ErrInvalidFormat),
		errors.Is(err, interfaces.ErrReconstruction):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func verdictView(v interfaces.Verdict) map[string]interface{} {
	return map[string]interface{}{
		"kind":      v.Kind,
		"message":   v.Message(),
		"usable":    v.Usable,
		"threshold": v.Threshold,
		"ready":     v.Kind == interfaces.VerdictReady,
	}
}

// session resolves the session from the URL, answering 404 itself when
// it is unknown.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*recovery.Session, bool) {
	id := r.PathValue("session_id")

	h.mu.Lock()
	sess, ok := h.sessions[id]
	h.mu.Unlock()

	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

func decodeJSONBody(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("Failed to encode response", "err", err)
	}
}
