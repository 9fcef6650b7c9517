package llm

import (
	"context"
	"errors"
)

// LLM represents a generic large language model interface
type LLM interface {
	// Chat generates a response based on the conversation history
	Chat(ctx context.Context, messages []Message, opts ...Option) (Response, error)

	// GenerateImage generates an image for the given prompt
	GenerateImage(ctx context.Context, prompt string, opts ...Option) (Image, error)
}

// Response contains the model's response and additional metadata
type Response struct {
	Message Message
	Usage   Usage
}

// Image contains a generated image, either inline or by URL
type Image struct {
	Data []byte
	URL  string
}

// Gateway error conditions the caller must surface verbatim and never retry.
var (
	ErrRateLimited    = errors.New("llm: rate limit exceeded")
	ErrQuotaExhausted = errors.New("llm: quota exhausted")
)

// Client represents a configured LLM client
type Client struct {
	llm LLM
}

// NewClient creates a new LLM client
func NewClient(llm LLM) *Client {
	return &Client{llm: llm}
}

// Chat generates a response based on the conversation history
func (c *Client) Chat(ctx context.Context, messages []Message, opts ...Option) (Response, error) {
	return c.llm.Chat(ctx, messages, opts...)
}

// GenerateImage generates an image for the given prompt
func (c *Client) GenerateImage(ctx context.Context, prompt string, opts ...Option) (Image, error) {
	return c.llm.GenerateImage(ctx, prompt, opts...)
}
