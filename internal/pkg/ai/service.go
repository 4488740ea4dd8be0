package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/metrics"
)

// Result sources.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// Service runs the AI assisted features. Every feature has a rule-based
// fallback used when no completer is configured or a completion fails.
type Service struct {
	completer Completer
	metrics   *metrics.Metrics
	now       func() time.Time
}

type Option func(*Service)

func WithCompleter(c Completer) Option {
	return func(s *Service) { s.completer = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(cfg Config, opts ...Option) *Service {
	s := &Service{now: time.Now}
	if cfg.Available() {
		s.completer = NewOpenAIClient(cfg)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Available reports whether completions are configured.
func (s *Service) Available() bool {
	return s.completer != nil
}

// completeJSON asks for a JSON object and decodes it into out.
func (s *Service) completeJSON(ctx context.Context, feature, prompt string, temperature float64, maxTokens int, out interface{}) error {
	if s.completer == nil {
		return ErrUnavailable
	}
	content, err := s.completer.Complete(ctx, CompletionRequest{
		Prompt:      prompt,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		JSON:        true,
	})
	if err != nil {
		log.Warnf("[AI] %s completion failed: %v", feature, err)
		return err
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		log.Warnf("[AI] %s returned invalid JSON: %v", feature, err)
		return fmt.Errorf("parse %s response: %w", feature, err)
	}
	return nil
}

func (s *Service) record(feature, source string) {
	s.metrics.AI(feature, source)
}
