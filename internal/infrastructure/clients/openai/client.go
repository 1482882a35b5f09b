package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
	"github.com/zatekoja/carenavigator/backend/internal/infrastructure/observability"
	"github.com/zatekoja/carenavigator/backend/pkg/config"
	apperrors "github.com/zatekoja/carenavigator/backend/pkg/errors"
	"github.com/zatekoja/carenavigator/backend/pkg/retry"
)

const (
	defaultBaseURL            = "https://api.openai.com/v1"
	defaultTranscriptionModel = "whisper-1"
	transcriptionLanguage     = "en"
	maxErrorBodyBytes         = 2048
)

// Client talks to the OpenAI chat completions and audio transcription endpoints.
type Client struct {
	apiKey             string
	model              string
	transcriptionModel string
	baseURL            string
	httpClient         *http.Client
	limiter            *tokenBucket
	retryConfig        retry.Config
}

// NewClient creates a new OpenAI client.
func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg == nil || !cfg.Configured() {
		return nil, apperrors.NewConfigurationError("OPENAI_API_KEY is not set")
	}

	model := cfg.Model
	if model == "" {
		model = config.DefaultModel
	}
	transcriptionModel := cfg.TranscriptionModel
	if transcriptionModel == "" {
		transcriptionModel = defaultTranscriptionModel
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	retryConfig := retry.DefaultConfig()
	retryConfig.MaxAttempts = cfg.MaxRetries + 1

	return &Client{
		apiKey:             cfg.APIKey,
		model:              model,
		transcriptionModel: transcriptionModel,
		baseURL:            baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:     newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst),
		retryConfig: retryConfig,
	}, nil
}

type jsonSchemaFormat struct {
	Name   string                 `json:"name"`
	Strict bool                   `json:"strict"`
	Schema map[string]interface{} `json:"schema"`
}

type responseFormat struct {
	Type       string           `json:"type"`
	JSONSchema jsonSchemaFormat `json:"json_schema"`
}

type chatCompletionRequest struct {
	Model          string                 `json:"model"`
	Messages       []entities.ChatMessage `json:"messages"`
	ResponseFormat responseFormat         `json:"response_format"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
			Refusal *string `json:"refusal"`
		} `json:"message"`
	} `json:"choices"`
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Complete sends a chat completion constrained to req.Schema and returns the message content.
// A refusal or missing content yields an empty string so the caller can treat it as unusable output.
func (c *Client) Complete(ctx context.Context, req entities.CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	name := req.SchemaName
	if name == "" {
		name = "response"
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model:    model,
		Messages: req.Messages,
		ResponseFormat: responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchemaFormat{
				Name:   name,
				Strict: req.Strict,
				Schema: req.Schema,
			},
		},
	})
	if err != nil {
		return "", apperrors.NewInternalError("failed to encode chat completion request", err)
	}

	var envelope chatCompletionResponse
	err = c.do(ctx, model, func() (*http.Request, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		return httpReq, nil
	}, &envelope)
	if err != nil {
		return "", err
	}

	if len(envelope.Choices) == 0 {
		return "", nil
	}
	msg := envelope.Choices[0].Message
	if msg.Refusal != nil && *msg.Refusal != "" {
		observability.LoggerFromContext(ctx).Warn().
			Str("ai.model", model).
			Str("refusal", *msg.Refusal).
			Msg("model refused structured output")
		return "", nil
	}
	if msg.Content == nil {
		return "", nil
	}
	return strings.TrimSpace(*msg.Content), nil
}

// Transcribe uploads audio to the transcription endpoint and returns the recognized text.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return "", apperrors.NewInternalError("failed to read audio", err)
	}
	if filename == "" {
		filename = "audio.mp3"
	}

	var result transcriptionResponse
	err = c.do(ctx, c.transcriptionModel, func() (*http.Request, error) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(data); err != nil {
			return nil, err
		}
		if err := writer.WriteField("model", c.transcriptionModel); err != nil {
			return nil, err
		}
		if err := writer.WriteField("language", transcriptionLanguage); err != nil {
			return nil, err
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &buf)
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", writer.FormDataContentType())
		return httpReq, nil
	}, &result)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// do runs one logical request, retrying transient failures with backoff, and decodes the JSON body into out.
func (c *Client) do(ctx context.Context, model string, build func() (*http.Request, error), out interface{}) error {
	logger := observability.LoggerFromContext(ctx)

	return retry.DoWithLog(ctx, c.retryConfig, "openai", func() error {
		if c.limiter != nil {
			waitStart := time.Now()
			if err := c.limiter.Wait(ctx); err != nil {
				recordOpenAIMetric(ctx, model, 0, 0, err)
				return retry.Permanent(apperrors.NewExternalError("openai rate limiter wait aborted", err))
			}
			recordOpenAIRateLimitWait(ctx, model, time.Since(waitStart))
		}

		req, err := build()
		if err != nil {
			return retry.Permanent(apperrors.NewInternalError("failed to build openai request", err))
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			recordOpenAIMetric(ctx, model, 0, time.Since(start), err)
			if ctx.Err() != nil {
				return retry.Permanent(apperrors.NewExternalError("openai request aborted", err))
			}
			return apperrors.NewExternalError("openai request failed", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
			statusErr := fmt.Errorf("openai request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
			recordOpenAIMetric(ctx, model, resp.StatusCode, time.Since(start), statusErr)
			appErr := apperrors.NewExternalError("openai request rejected", statusErr)
			if isRetryableStatus(resp.StatusCode) {
				return appErr
			}
			return retry.Permanent(appErr)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			recordOpenAIMetric(ctx, model, resp.StatusCode, time.Since(start), err)
			return retry.Permanent(apperrors.NewExternalError("failed to decode openai response", err))
		}

		recordOpenAIMetric(ctx, model, resp.StatusCode, time.Since(start), nil)
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("next_delay", nextDelay).
			Str("ai.model", model).
			Msg("openai request failed, retrying")
	})
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusConflict, http.StatusTooManyRequests:
		return true
	}
	return status >= http.StatusInternalServerError
}

