// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translate is the gateway to the machine-translation provider.
// Every operation degrades gracefully: a failed or timed-out call yields
// a Result with OK=false and never an error that aborts the caller's
// save. Callers decide per field what a missing translation means.
package translate

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.deepinfra.com/v1/openai"
	defaultModel   = "meta-llama/Meta-Llama-3.1-70B-Instruct"
	defaultTimeout = 45 * time.Second
)

const translateSystemPrompt = `You are a professional Turkish to English translator for a technical publishing site.
Translate the user's text from Turkish to English.
Preserve all HTML tags and attributes exactly as they appear; translate only the human-readable text between them.
Preserve code, identifiers, URLs and numbers unchanged.
Return only the translated text with no commentary.`

// Result is the outcome of one translation call. OK is false when the
// provider failed, timed out or returned empty output; TargetText is
// meaningful only when OK is true.
type Result struct {
	SourceText string
	TargetText string
	OK         bool
}

// chatClient is the minimal provider surface the translator needs.
// Production uses the OpenAI-compatible SDK; tests substitute a fake.
type chatClient interface {
	complete(ctx context.Context, system, user string) (string, error)
}

type openAIChat struct {
	client openai.Client
	model  string
}

func (c *openAIChat) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0.3),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Config holds provider settings. Zero values fall back to the
// DeepInfra-hosted defaults.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// RequestsPerSecond caps outbound calls; zero means no throttle.
	RequestsPerSecond float64
}

// Translator wraps the provider with a per-call timeout and an
// outbound rate limit shared by all concurrent field translations.
type Translator struct {
	client  chatClient
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Translator talking to an OpenAI-compatible endpoint.
func New(cfg Config, logger *slog.Logger) *Translator {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
	)
	return newWithClient(&openAIChat{client: client, model: model}, cfg, logger)
}

func newWithClient(client chatClient, cfg Config, logger *slog.Logger) *Translator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Translator{
		client:  client,
		limiter: limiter,
		timeout: timeout,
		logger:  logger,
	}
}

// TranslateText translates one Turkish text to English. HTML markup in
// the input survives translation untouched. Empty input is a trivial
// success with empty output.
func (t *Translator) TranslateText(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{SourceText: text, TargetText: "", OK: true}
	}
	out, err := t.call(ctx, translateSystemPrompt, text)
	if err != nil {
		t.logger.Warn("translation failed", "err", err)
		return Result{SourceText: text, OK: false}
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return Result{SourceText: text, OK: false}
	}
	return Result{SourceText: text, TargetText: out, OK: true}
}

// TranslateBundle translates the named fields concurrently, one provider
// call per field, and returns a Result per input key. A failure in one
// field never affects the others.
func (t *Translator) TranslateBundle(ctx context.Context, fields map[string]string) map[string]Result {
	results := make(map[string]Result, len(fields))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for name, text := range fields {
		wg.Add(1)
		go func(name, text string) {
			defer wg.Done()
			r := t.TranslateText(ctx, text)
			mu.Lock()
			results[name] = r
			mu.Unlock()
		}(name, text)
	}
	wg.Wait()
	return results
}

// call runs one provider request under the rate limit and timeout.
func (t *Translator) call(ctx context.Context, system, user string) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.client.complete(ctx, system, user)
}
