/*
Package httpserver implements the HTTP API for shard generation and
recovery.

Generation is a single stateless call; recovery is session-based: a
client opens a session, feeds it pastes and file uploads, optionally
submits passwords for encrypted shards, polls the verdict, and finally
asks for reconstruction. Sessions live in memory and are discarded
after a successful recovery.

# Endpoints

  - POST /api/generate - split a secret into shard artifacts
  - POST /api/session - open a recovery session
  - POST /api/session/{session_id}/paste - add pasted text to the batch
  - POST /api/session/{session_id}/file - add an uploaded file
  - POST /api/session/{session_id}/password - run one decryption pass
  - GET  /api/session/{session_id}/verdict - current batch verdict
  - POST /api/session/{session_id}/recover - attempt reconstruction
  - GET  /livez, /readyz, /drain, /undrain - health and draining

Each password submission is exactly one decryption pass over the
pending encrypted inputs; clients drive retries by re-submitting. The
recover endpoint maps the error taxonomy onto statuses: recoverable
batch problems (too few shards, password pending, duplicate indices)
are 409, terminal input problems 422.

# Example Usage

	handler := httpserver.NewHandler(generator, recoverer, logger)
	server, err := httpserver.New(&httpserver.HTTPServerConfig{
		ListenAddr:               ":8080",
		Log:                      logger,
		DrainDuration:            30 * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              5 * time.Second,
		WriteTimeout:             10 * time.Second,
	}, handler)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	server.RunInBackground()
	defer server.Shutdown()
*/
package httpserver
