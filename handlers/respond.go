package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/nijaru/yt-scribe/errors"
	"github.com/nijaru/yt-scribe/middleware"
	"github.com/nijaru/yt-scribe/validation"
	"github.com/sirupsen/logrus"
)

const (
	maxJSONBodyBytes = 5 << 20
	// Uploads may carry a little multipart framing on top of the file itself.
	maxUploadBodyBytes = validation.MaxAudioBytes + 1<<20
	bytesPerMB         = 1024 * 1024
	clockFormat        = "15:04:05"
)

type errorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		middleware.GetLogger(r.Context()).WithError(err).Error("Failed to encode response")
	}
}

func respondStatus(w http.ResponseWriter, r *http.Request, code int, message string) {
	respondJSON(w, r, code, errorResponse{
		Success:   false,
		Message:   message,
		RequestID: middleware.GetRequestID(r.Context()),
	})
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	msg := "Internal server error"
	fields := logrus.Fields{"status": code}

	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		code = appErr.StatusCode()
		msg = appErr.Message
		fields = logrus.Fields{
			"status":    code,
			"operation": appErr.Op,
			"kind":      appErr.Kind,
		}
	}

	logger := middleware.GetLogger(r.Context()).WithFields(fields).WithError(err)
	if code >= http.StatusInternalServerError {
		logger.Error("Request error")
	} else {
		logger.Warn("Request error")
	}

	respondStatus(w, r, code, msg)
}

// readJSON checks the request shape and decodes its body into v.
func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	const op = "Server.readJSON"

	if err := s.validator.ValidateRequest(r, validation.RequestValidationOpts{
		MaxContentLength: maxJSONBodyBytes,
		AllowedMethods:   []string{http.MethodPost},
		RequireJSON:      true,
	}); err != nil {
		return err
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return errors.ResourceLimit(op, err, "Request body too large")
		case err == io.EOF:
			return errors.InvalidInput(op, err, "Request body is required")
		default:
			return errors.InvalidInput(op, err, "Invalid JSON format")
		}
	}
	return nil
}

func formatMB(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/bytesPerMB)
}
