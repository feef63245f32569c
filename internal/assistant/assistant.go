// Package assistant answers real-estate questions through a hosted chat
// completion API. It never returns an error to callers: failures turn into
// fixed fallback replies.
package assistant

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/sashabaranov/go-openai"
)

const (
	SystemInstruction = "You are HomeQuest AI, a helpful and professional real estate assistant. " +
		"You specialize in property valuation, home buying tips, market trends, and relocation advice. " +
		"Keep answers concise and user-friendly."

	Greeting = "Hi! I'm HomeQuest AI. How can I help you with your real estate journey today?"

	// FallbackEmpty is returned when the model produces no text
	FallbackEmpty = "I'm sorry, I couldn't process that request at the moment."
	// FallbackUnavailable is returned when the API cannot be reached
	FallbackUnavailable = "Error: Unable to connect to HomeQuest AI. Please check your connection."

	DefaultTemperature = 0.7
)

// Completer is the part of *openai.Client the assistant uses
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Options tunes an Assistant. Zero values select defaults.
type Options struct {
	Model       string
	Temperature float32
	Timeout     time.Duration
	CacheTTL    time.Duration
	Breaker     *CircuitBreaker
}

type Assistant struct {
	client      Completer
	model       string
	temperature float32
	timeout     time.Duration
	replies     *ttlcache.Cache[string, string]
	breaker     *CircuitBreaker
}

// NewClient builds the go-openai client. A non-empty baseURL points it at
// an OpenAI-compatible endpoint.
func NewClient(apiKey, baseURL string) *openai.Client {
	if baseURL == "" {
		return openai.NewClient(apiKey)
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return openai.NewClientWithConfig(cfg)
}

func New(client Completer, opts Options) *Assistant {
	if opts.Model == "" {
		opts.Model = openai.GPT4o
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	if opts.Breaker == nil {
		opts.Breaker = NewCircuitBreaker(3, time.Minute)
	}

	replies := ttlcache.New(
		ttlcache.WithTTL[string, string](opts.CacheTTL),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)

	return &Assistant{
		client:      client,
		model:       opts.Model,
		temperature: opts.Temperature,
		timeout:     opts.Timeout,
		replies:     replies,
		breaker:     opts.Breaker,
	}
}

// Start runs the cache's expiry loop until Stop
func (a *Assistant) Start() {
	go a.replies.Start()
}

func (a *Assistant) Stop() {
	a.replies.Stop()
}

// Advise returns the model's answer to prompt, or one of the fallback
// strings. Successful answers are cached per prompt.
func (a *Assistant) Advise(ctx context.Context, prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return FallbackEmpty
	}

	if item := a.replies.Get(prompt); item != nil {
		return item.Value()
	}

	if a.client == nil || !a.breaker.CanProceed() {
		return FallbackUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: a.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		a.breaker.RecordFailure()
		log.Printf("Assistant: completion failed: %v", err)
		return FallbackUnavailable
	}
	a.breaker.RecordSuccess()

	if len(resp.Choices) == 0 {
		return FallbackEmpty
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return FallbackEmpty
	}

	a.replies.Set(prompt, text, ttlcache.DefaultTTL)
	return text
}

// DescriptionPrompt builds the listing-description request
func DescriptionPrompt(title, features string) string {
	return fmt.Sprintf("Generate a compelling real estate description for a property titled \"%s\" with these features: %s. "+
		"Make it sound professional yet inviting.", title, features)
}

// DescribeProperty drafts a listing description
func (a *Assistant) DescribeProperty(ctx context.Context, title, features string) string {
	return a.Advise(ctx, DescriptionPrompt(title, features))
}

// BreakerStatus exposes the circuit breaker state
func (a *Assistant) BreakerStatus() (isOpen bool, failures int, total int) {
	return a.breaker.Status()
}
