package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// handleWebSocket streams generation progress for the caller's own
// session. Earlier updates are replayed on attach so a late subscriber
// catches up.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" || sessionID != sessionIDFrom(r) {
		http.Error(w, "Invalid session", http.StatusBadRequest)
		return
	}

	prog, ok := s.lookupProgress(sessionID)
	if !ok {
		http.Error(w, "No generation in progress", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Str("session", sessionID).Msg("websocket upgrade failed")
		return
	}
	defer func() {
		prog.Detach()
		_ = conn.Close()
	}()

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	if err := prog.Attach(conn); err != nil {
		s.log.Error().Err(err).Str("session", sessionID).Msg("replaying progress history")
		return
	}

	// Hold the connection open until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
