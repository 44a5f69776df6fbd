package handlers

import (
	"net/http"
	"strings"

	"github.com/nijaru/yt-scribe/errors"
)

type setAPIKeyRequest struct {
	APIKey string `json:"api_key"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// handleSetAPIKey handles POST /api/set-api-key
func (s *Server) handleSetAPIKey(w http.ResponseWriter, r *http.Request) {
	const op = "Server.handleSetAPIKey"

	var req setAPIKeyRequest
	if err := s.readJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		respondError(w, r, errors.InvalidInput(op, nil, "API key is required"))
		return
	}

	if err := s.session.Configure(r.Context(), req.APIKey); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, messageResponse{Success: true, Message: "API key configured successfully"})
}
