package handlers

import (
	"net/http"
	"strings"

	"github.com/nijaru/yt-scribe/content"
	"github.com/nijaru/yt-scribe/errors"
	"github.com/nijaru/yt-scribe/validation"
)

type generatePostRequest struct {
	Text         string `json:"text"`
	TopicHint    string `json:"topic_hint"`
	YouTubeURL   string `json:"youtube_url"`
	YouTubeStart string `json:"youtube_start"`
}

type generatePostResponse struct {
	Success   bool   `json:"success"`
	Post      string `json:"post"`
	Timestamp string `json:"timestamp"`
}

// handleGeneratePost handles POST /api/generate-post
func (s *Server) handleGeneratePost(w http.ResponseWriter, r *http.Request) {
	const op = "Server.handleGeneratePost"

	generator, err := s.session.PostGenerator()
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req generatePostRequest
	if err := s.readJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		respondError(w, r, errors.InvalidInput(op, nil, "Text is required to generate a post"))
		return
	}

	post, err := generator.GeneratePost(r.Context(), text, strings.TrimSpace(req.TopicHint))
	if err != nil {
		respondError(w, r, err)
		return
	}

	videoURL := strings.TrimSpace(req.YouTubeURL)
	if startStr := strings.TrimSpace(req.YouTubeStart); videoURL != "" && startStr != "" {
		start, err := validation.ParseTimestamp(startStr)
		if err != nil {
			start = 0
		}
		post = content.AppendVideoLink(post, videoURL, start)
	}

	respondJSON(w, r, http.StatusOK, generatePostResponse{
		Success:   true,
		Post:      post,
		Timestamp: s.now().Format(clockFormat),
	})
}

type generateImageRequest struct {
	Post string `json:"post"`
}

type generateImageResponse struct {
	Success   bool                    `json:"success"`
	ImageData *content.GeneratedImage `json:"image_data"`
}

// handleGenerateImage handles POST /api/generate-image
func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	const op = "Server.handleGenerateImage"

	generator, err := s.session.ImageGenerator()
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req generateImageRequest
	if err := s.readJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	post := strings.TrimSpace(req.Post)
	if post == "" {
		respondError(w, r, errors.InvalidInput(op, nil, "Post text is required to generate an image"))
		return
	}

	img, err := generator.GenerateImage(r.Context(), post)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, generateImageResponse{Success: true, ImageData: img})
}
