package completion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/angelmondragon/mise-backend/pkg/config"
)

// Params tunes a single completion request.
type Params struct {
	MaxTokens   int
	Temperature float32
}

// ChunkStream yields incremental completion text. Recv returns io.EOF once the
// upstream signals end of stream.
type ChunkStream interface {
	Recv() (string, error)
	Close() error
}

// Streamer starts streaming completions.
type Streamer interface {
	StreamComplete(ctx context.Context, systemPrompt, userPrompt string, params Params) (ChunkStream, error)
}

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// New builds a client from configuration. The client is safe for concurrent use.
func New(cfg config.CompletionConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("completion api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("completion model is required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.OrgID = cfg.OrgID
	return &Client{
		api:     openai.NewClientWithConfig(oc),
		model:   cfg.Model,
		timeout: cfg.StreamTimeout,
	}, nil
}

// StreamComplete opens a streaming chat completion. ctx bounds the whole
// stream, not only the request; cancelling it aborts an in-flight Recv.
func (c *Client) StreamComplete(ctx context.Context, systemPrompt, userPrompt string, params Params) (ChunkStream, error) {
	cancel := context.CancelFunc(func() {})
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		Stream:      true,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}

	stream, err := c.api.CreateChatCompletionStream(ctx, req)
	if err != nil {
		cancel()
		return nil, classify(fmt.Errorf("open completion stream: %w", err))
	}
	return &chatStream{stream: stream, cancel: cancel}, nil
}

type chatStream struct {
	stream *openai.ChatCompletionStream
	cancel context.CancelFunc
}

func (s *chatStream) Recv() (string, error) {
	resp, err := s.stream.Recv()
	if errors.Is(err, io.EOF) {
		return "", io.EOF
	}
	if err != nil {
		return "", classify(fmt.Errorf("receive completion chunk: %w", err))
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Delta.Content, nil
}

func (s *chatStream) Close() error {
	defer s.cancel()
	return s.stream.Close()
}
