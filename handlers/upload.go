package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nijaru/yt-scribe/errors"
	"github.com/nijaru/yt-scribe/middleware"
	"github.com/nijaru/yt-scribe/validation"
)

const multipartMemory = 8 << 20

type transcribeFileResponse struct {
	Success   bool   `json:"success"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	Filename  string `json:"filename"`
	FileSize  string `json:"file_size"`
}

// handleTranscribeFile handles POST /api/transcribe-file
func (s *Server) handleTranscribeFile(w http.ResponseWriter, r *http.Request) {
	const op = "Server.handleTranscribeFile"
	logger := middleware.GetLogger(r.Context())

	if r.ContentLength > maxUploadBodyBytes {
		respondError(w, r, tooLarge(op, nil))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodyBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, tooLarge(op, err))
			return
		}
		respondError(w, r, errors.InvalidInput(op, err, "Invalid upload"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("audio_file")
	if err != nil {
		respondError(w, r, errors.InvalidInput(op, err, "No file uploaded"))
		return
	}
	defer file.Close()

	if header.Filename == "" {
		respondError(w, r, errors.InvalidInput(op, nil, "No file selected"))
		return
	}
	if !validation.AllowedAudioFile(header.Filename) {
		respondError(w, r, errors.InvalidInput(op, nil,
			fmt.Sprintf("Unsupported format. Use: %s", strings.Join(validation.AllowedAudioExtensions(), ", "))))
		return
	}
	if header.Size > validation.MaxAudioBytes {
		respondError(w, r, tooLarge(op, nil))
		return
	}

	transcriber, err := s.session.Transcriber()
	if err != nil {
		respondError(w, r, err)
		return
	}

	filename := validation.SanitizeFilename(header.Filename)
	path := filepath.Join(s.config.Media.UploadDir, uuid.New().String()+"_"+filename)
	if err := saveUpload(file, path); err != nil {
		respondError(w, r, errors.Internal(op, err, "Failed to save uploaded file"))
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.WithError(err).WithField("path", path).Warn("Failed to remove upload")
		}
	}()

	text, err := transcriber.Transcribe(r.Context(), path, s.validator.Language(r.FormValue("language")))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, transcribeFileResponse{
		Success:   true,
		Text:      text,
		Timestamp: s.now().Format(clockFormat),
		Filename:  filename,
		FileSize:  formatMB(header.Size),
	})
}

func saveUpload(src io.Reader, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return err
	}
	return dst.Close()
}

func tooLarge(op string, err error) error {
	if err == nil {
		err = errors.ErrFileTooLarge
	} else {
		err = errors.Wrap(errors.ErrFileTooLarge, err.Error())
	}
	return errors.ResourceLimit(op, err, "File too large (max 25MB)")
}
