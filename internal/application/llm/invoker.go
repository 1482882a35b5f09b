// Package llm calls a chat model and only accepts replies that satisfy a JSON schema.
package llm

import (
	"context"
	"encoding/json"

	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
	"github.com/zatekoja/carenavigator/backend/internal/domain/providers"
	"github.com/zatekoja/carenavigator/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/carenavigator/backend/pkg/errors"
)

const jsonOnlyInstruction = "\n\nReturn JSON only. No markdown. No extra keys. No code blocks."

// RepairInstruction is appended to the user prompt for the single retry after a rejected reply.
const RepairInstruction = "Your previous response was invalid JSON or had extra keys. " +
	"Return valid JSON only, no markdown, no code blocks, no extra keys. " +
	"Match the required schema exactly."

// Request is one schema-constrained model call.
type Request struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Schema       *Schema
}

// Invoker returns model output that has already been validated against req.Schema.
// On failure it returns an error and never partial data.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (json.RawMessage, error)
}

type attemptState int

const (
	stateFirstAttempt attemptState = iota
	stateRepairAttempt
	stateExhausted
)

// SchemaInvoker implements Invoker on top of a CompletionProvider.
type SchemaInvoker struct {
	provider providers.CompletionProvider
}

// NewSchemaInvoker creates an invoker. A nil provider means no credential is configured.
func NewSchemaInvoker(provider providers.CompletionProvider) *SchemaInvoker {
	return &SchemaInvoker{provider: provider}
}

// Invoke sends the request and retries once with a repair instruction if the reply is rejected.
// Transport failures are not retried here.
func (i *SchemaInvoker) Invoke(ctx context.Context, req Request) (json.RawMessage, error) {
	if i.provider == nil {
		return nil, apperrors.NewConfigurationError("OPENAI_API_KEY is not set")
	}
	if req.Schema == nil {
		return nil, apperrors.NewInternalError("schema is required", nil)
	}

	logger := observability.LoggerFromContext(ctx)
	userPrompt := req.UserPrompt
	state := stateFirstAttempt
	var lastErr error

	for state != stateExhausted {
		out, err := i.attempt(ctx, req, userPrompt)
		if err == nil {
			return out, nil
		}
		if !apperrors.IsType(err, apperrors.ErrorTypeParse) {
			return nil, apperrors.NewInvocationError("model request failed", err)
		}
		lastErr = err

		switch state {
		case stateFirstAttempt:
			logger.Warn().
				Err(err).
				Str("schema", req.Schema.Name).
				Msg("model output rejected, retrying with repair instruction")
			recordRepair(ctx, req.Schema.Name)
			userPrompt = req.UserPrompt + "\n\n" + RepairInstruction
			state = stateRepairAttempt
		default:
			state = stateExhausted
		}
	}

	return nil, apperrors.NewInvocationError("LLM response invalid after retry", lastErr)
}

func (i *SchemaInvoker) attempt(ctx context.Context, req Request, userPrompt string) (json.RawMessage, error) {
	text, err := i.provider.Complete(ctx, entities.CompletionRequest{
		Model: req.Model,
		Messages: []entities.ChatMessage{
			{Role: "system", Content: req.SystemPrompt + jsonOnlyInstruction},
			{Role: "user", Content: userPrompt},
		},
		SchemaName: req.Schema.Name,
		Schema:     req.Schema.Definition,
		Strict:     true,
	})
	if err != nil {
		return nil, err
	}
	return req.Schema.Parse(text)
}
