package server

import (
	"encoding/json"
	"net/http"

	"cuentomagico/internal/story"
)

// The proxy endpoints mirror the original backend: a thin pass-through
// to the model provider and the checkout-session creation call.

type proxyRequest struct {
	Prompt string `json:"prompt"`
}

type proxyPart struct {
	Text string `json:"text"`
}

type proxyContent struct {
	Parts []proxyPart `json:"parts"`
}

type proxyCandidate struct {
	Content proxyContent `json:"content"`
}

type proxyResponse struct {
	Candidates []proxyCandidate `json:"candidates"`
}

func (s *Server) handleGenerateStory(w http.ResponseWriter, r *http.Request) {
	var req proxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	text, err := s.llm.Generate(r.Context(), story.SystemPrompt, req.Prompt)
	if err != nil {
		s.log.Error().Err(err).Msg("model call failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, proxyResponse{
		Candidates: []proxyCandidate{
			{Content: proxyContent{Parts: []proxyPart{{Text: text}}}},
		},
	})
}

func (s *Server) handleCreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	url, err := s.bridge.CreateCheckoutSession(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("creating checkout session")
		writeError(w, http.StatusInternalServerError, "Error creando sesión de pago")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
