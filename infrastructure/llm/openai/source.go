// Package openai streams journey extractions from an OpenAI-compatible chat
// completion endpoint.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"journeymap/application/ports"
	pkgerrors "journeymap/pkg/errors"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemPrompt = `You are an expert in user journey maps.
Analyse the scenario and extract, in this order:

1. users: the actors (name, type, description)
2. phases: the time steps (name, order, duration)
3. contexts: the places or environments (name, description, order)
4. nodes: the state of one user at one phase and context
5. connectors: moves between nodes, by node index
6. intersections: points where several users meet

Answer with JSON only.`

// Config configures the source
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Source implements ports.ExtractionSource with streamed chat completions
// using a strict JSON schema response format
type Source struct {
	client  *goopenai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewSource creates a source from cfg
func NewSource(cfg Config, logger *zap.Logger) *Source {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = goopenai.GPT4oMini
	}
	return &Source{
		client:  goopenai.NewClientWithConfig(clientCfg),
		model:   model,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

var _ ports.ExtractionSource = (*Source)(nil)

// Request builds the chat completion request for req
func (s *Source) Request(req ports.ExtractionRequest) goopenai.ChatCompletionRequest {
	user := "Extract the user journey map elements from this scenario:\n\n" + req.Scenario
	if req.Title != "" {
		user = "Title: " + req.Title + "\n\n" + user
	}
	return goopenai.ChatCompletionRequest{
		Model:  s.model,
		Stream: true,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
				Name:   "journey_extraction",
				Schema: ExtractionSchema(),
				Strict: true,
			},
		},
	}
}

// Open starts a streamed completion. The timeout covers the whole stream.
func (s *Source) Open(ctx context.Context, req ports.ExtractionRequest) (ports.DeltaStream, error) {
	cancel := context.CancelFunc(func() {})
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}

	stream, err := s.client.CreateChatCompletionStream(ctx, s.Request(req))
	if err != nil {
		cancel()
		s.logger.Error("OpenAI stream request failed", zap.String("model", s.model), zap.Error(err))
		return nil, pkgerrors.NewExternalError("language model", err)
	}

	s.logger.Debug("OpenAI stream opened", zap.String("model", s.model))
	return &deltaStream{stream: stream, cancel: cancel}, nil
}

type deltaStream struct {
	stream *goopenai.ChatCompletionStream
	cancel context.CancelFunc
	once   sync.Once
}

// Recv returns the next non-empty content delta
func (d *deltaStream) Recv(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		resp, err := d.stream.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf("openai stream: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

func (d *deltaStream) Close() error {
	d.once.Do(func() {
		d.stream.Close()
		d.cancel()
	})
	return nil
}
