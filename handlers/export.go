package handlers

import (
	"fmt"
	"net/http"

	"github.com/nijaru/yt-scribe/errors"
	"github.com/nijaru/yt-scribe/middleware"
)

type exportTextRequest struct {
	Text string `json:"text"`
}

// handleExportText handles POST /api/export-text
func (s *Server) handleExportText(w http.ResponseWriter, r *http.Request) {
	const op = "Server.handleExportText"

	var req exportTextRequest
	if err := s.readJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Text == "" {
		respondError(w, r, errors.InvalidInput(op, nil, "No text to export"))
		return
	}

	filename := fmt.Sprintf("transcription_%s.txt", s.now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(req.Text)); err != nil {
		middleware.GetLogger(r.Context()).WithError(err).Error("Failed to write export")
	}
}
