package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the OpenRouter OpenAI-compatible endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

const defaultTimeout = 30 * time.Second

var ErrEmptyResponse = errors.New("llm: completion returned no choices")

// Request is one system+user exchange.
type Request struct {
	Model       string
	System      string
	User        string
	MaxTokens   int
	Temperature float32
	// JSON asks the provider for a json_object response.
	JSON    bool
	Timeout time.Duration
}

// Completer is the collaborator that turns a prompt into text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

type Options struct {
	APIKey  string
	BaseURL string
	// SiteURL and AppName are sent as OpenRouter attribution headers.
	SiteURL string
	AppName string
	// Base is the underlying transport; nil means http.DefaultTransport.
	Base http.RoundTripper
}

// Client talks to any OpenAI-compatible chat completion API.
type Client struct {
	api    *openai.Client
	tracer trace.Tracer
}

func NewClient(opts Options) *Client {
	cfg := openai.DefaultConfig("")
	cfg.BaseURL = DefaultBaseURL
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}

	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}
	var rt http.RoundTripper = &attributionTransport{base: base, siteURL: opts.SiteURL, appName: opts.AppName}
	if opts.APIKey != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.APIKey, TokenType: "Bearer"}),
			Base:   rt,
		}
	}
	cfg.HTTPClient = &http.Client{Transport: rt}

	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		tracer: otel.Tracer("autosales.internal.llm"),
	}
}

func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	ctx, span := c.tracer.Start(ctx, "llm.complete", trace.WithAttributes(
		attribute.String("llm.model", req.Model),
		attribute.Bool("llm.json", req.JSON),
	))
	defer span.End()

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chat := openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSON {
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := c.api.CreateChatCompletion(ctx, chat)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("llm: %s: %w", req.Model, err)
	}
	if len(resp.Choices) == 0 {
		span.RecordError(ErrEmptyResponse)
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

type attributionTransport struct {
	base    http.RoundTripper
	siteURL string
	appName string
}

func (t *attributionTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if t.siteURL == "" && t.appName == "" {
		return t.base.RoundTrip(r)
	}
	r2 := r.Clone(r.Context())
	if t.siteURL != "" {
		r2.Header.Set("HTTP-Referer", t.siteURL)
	}
	if t.appName != "" {
		r2.Header.Set("X-Title", t.appName)
	}
	return t.base.RoundTrip(r2)
}
