package session

import (
	"context"
	"strings"
	"sync"

	"github.com/nijaru/yt-scribe/content"
	"github.com/nijaru/yt-scribe/errors"
	"github.com/nijaru/yt-scribe/transcription"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

type State string

const (
	StateUnconfigured State = "unconfigured"
	StateReady        State = "ready"
)

// Provider is everything the application needs from the AI provider client.
// *openai.Client satisfies it.
type Provider interface {
	transcription.AudioAPI
	content.ChatAPI
	content.ImageAPI
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

// ClientFactory builds a provider client bound to apiKey.
type ClientFactory func(apiKey string) Provider

type Models struct {
	Transcription string
	Chat          string
	Image         string
}

// Session holds the operator supplied credential and the clients derived
// from it. It is safe for concurrent use.
type Session struct {
	factory ClientFactory
	models  Models
	logger  *logrus.Logger

	mu          sync.RWMutex
	apiKey      string
	state       State
	transcriber *transcription.Client
	posts       *content.PostGenerator
	images      *content.ImageGenerator
}

func New(factory ClientFactory, models Models, logger *logrus.Logger) *Session {
	return &Session{
		factory: factory,
		models:  models,
		logger:  logger,
		state:   StateUnconfigured,
	}
}

// Configure stores apiKey and probes the provider with it. On success the
// transcriber and generators are rebuilt. On failure the key is kept but the
// session drops to unconfigured and every derived client is released.
func (s *Session) Configure(ctx context.Context, apiKey string) error {
	const op = "Session.Configure"

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return errors.InvalidInput(op, nil, "API key is required")
	}

	provider := s.factory(apiKey)
	_, probeErr := provider.ListModels(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.apiKey = apiKey
	if probeErr != nil {
		s.state = StateUnconfigured
		s.transcriber = nil
		s.posts = nil
		s.images = nil
		s.logger.WithField("operation", op).WithError(probeErr).Warn("API key rejected")
		return errors.Config(op, probeErr, "API key error: "+probeMessage(probeErr))
	}

	s.transcriber = transcription.NewClient(provider, s.models.Transcription, s.logger)
	s.posts = content.NewPostGenerator(provider, s.models.Chat, s.logger)
	s.images = content.NewImageGenerator(provider, provider, s.models.Chat, s.models.Image, s.logger)
	s.state = StateReady
	s.logger.WithField("operation", op).Info("API key configured")
	return nil
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// HasKey reports whether a key has been stored, whether or not it worked.
func (s *Session) HasKey() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey != ""
}

func (s *Session) Transcriber() (*transcription.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady {
		return nil, notConfigured("Session.Transcriber")
	}
	return s.transcriber, nil
}

func (s *Session) PostGenerator() (*content.PostGenerator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady {
		return nil, notConfigured("Session.PostGenerator")
	}
	return s.posts, nil
}

func (s *Session) ImageGenerator() (*content.ImageGenerator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady {
		return nil, notConfigured("Session.ImageGenerator")
	}
	return s.images, nil
}

func notConfigured(op string) error {
	return errors.Config(op, errors.ErrNotConfigured, "API key not configured")
}

func probeMessage(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
