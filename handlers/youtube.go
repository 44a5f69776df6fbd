package handlers

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/nijaru/yt-scribe/errors"
	"github.com/nijaru/yt-scribe/middleware"
	"github.com/nijaru/yt-scribe/validation"
	"github.com/sirupsen/logrus"
)

type youtubeInfoRequest struct {
	URL string `json:"url"`
}

type videoInfo struct {
	Title           string `json:"title"`
	Duration        string `json:"duration"`
	DurationSeconds int    `json:"duration_seconds"`
	Uploader        string `json:"uploader"`
	ViewCount       int64  `json:"view_count"`
}

type youtubeInfoResponse struct {
	Success bool      `json:"success"`
	Info    videoInfo `json:"info"`
}

// handleYouTubeInfo handles POST /api/youtube-info
func (s *Server) handleYouTubeInfo(w http.ResponseWriter, r *http.Request) {
	const op = "Server.handleYouTubeInfo"

	var req youtubeInfoRequest
	if err := s.readJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	url := strings.TrimSpace(req.URL)
	if url == "" {
		respondError(w, r, errors.InvalidInput(op, nil, "URL is required"))
		return
	}
	if _, err := validation.ValidateVideoURL(url); err != nil {
		respondError(w, r, err)
		return
	}

	meta := s.extractor.FetchVideoMetadata(r.Context(), url)
	if meta == nil {
		respondError(w, r, errors.ExternalTool(op, errors.ErrDownloadFailed, "Unable to get video information"))
		return
	}

	respondJSON(w, r, http.StatusOK, youtubeInfoResponse{
		Success: true,
		Info: videoInfo{
			Title:           meta.Title,
			Duration:        validation.FormatDuration(meta.DurationSeconds),
			DurationSeconds: meta.DurationSeconds,
			Uploader:        meta.Uploader,
			ViewCount:       meta.ViewCount,
		},
	})
}

type processYouTubeRequest struct {
	URL       string `json:"url"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Language  string `json:"language"`
}

type segmentMetadata struct {
	Source   string `json:"source"`
	Duration string `json:"duration"`
	FileSize string `json:"file_size"`
	Bitrate  string `json:"bitrate"`
	Segment  string `json:"segment"`
}

type processYouTubeResponse struct {
	Success   bool            `json:"success"`
	Text      string          `json:"text"`
	Timestamp string          `json:"timestamp"`
	Metadata  segmentMetadata `json:"metadata"`
}

// handleProcessYouTube handles POST /api/process-youtube
func (s *Server) handleProcessYouTube(w http.ResponseWriter, r *http.Request) {
	const op = "Server.handleProcessYouTube"
	logger := middleware.GetLogger(r.Context())

	var req processYouTubeRequest
	if err := s.readJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	url := strings.TrimSpace(req.URL)
	start := strings.TrimSpace(req.StartTime)
	end := strings.TrimSpace(req.EndTime)
	if url == "" || start == "" || end == "" {
		respondError(w, r, errors.InvalidInput(op, nil, "URL, start time and end time are required"))
		return
	}
	if _, err := validation.ValidateVideoURL(url); err != nil {
		respondError(w, r, err)
		return
	}
	tr, err := validation.ParseTimeRange(start, end)
	if err != nil {
		respondError(w, r, err)
		return
	}

	transcriber, err := s.session.Transcriber()
	if err != nil {
		respondError(w, r, err)
		return
	}

	language := s.validator.Language(req.Language)
	s.extractor.PurgeStale(s.config.Media.StaleAfter)

	clip, err := s.extractor.ExtractSegment(r.Context(), url, tr, language)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer func() {
		if err := os.Remove(clip.Path); err != nil && !os.IsNotExist(err) {
			logger.WithError(err).WithField("path", clip.Path).Warn("Failed to remove clip")
		}
	}()

	text, err := transcriber.Transcribe(r.Context(), clip.Path, language)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger.WithFields(logrus.Fields{
		"operation": op,
		"duration":  clip.DurationSeconds,
		"bitrate":   clip.BitrateKbps,
	}).Info("Segment transcribed")

	respondJSON(w, r, http.StatusOK, processYouTubeResponse{
		Success:   true,
		Text:      text,
		Timestamp: s.now().Format(clockFormat),
		Metadata: segmentMetadata{
			Source:   "YouTube",
			Duration: fmt.Sprintf("%ds", clip.DurationSeconds),
			FileSize: formatMB(clip.SizeBytes),
			Bitrate:  fmt.Sprintf("%dk", clip.BitrateKbps),
			Segment:  validation.FormatDuration(clip.Start) + " - " + validation.FormatDuration(clip.End),
		},
	})
}
