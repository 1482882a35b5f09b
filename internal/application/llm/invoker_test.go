package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/carenavigator/backend/pkg/errors"
)

type MockCompletionProvider struct {
	mock.Mock
}

func (m *MockCompletionProvider) Complete(ctx context.Context, req entities.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

var testSchema = MustSchema("greeting_result", map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"greeting": map[string]interface{}{"type": "string"},
		"mood":     map[string]interface{}{"type": "string", "enum": []interface{}{"happy", "sad"}},
		"score":    map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
	},
	"required":             []interface{}{"greeting", "mood", "score"},
	"additionalProperties": false,
})

func testRequest() Request {
	return Request{
		Model:        "gpt-4o-mini",
		SystemPrompt: "You greet people.",
		UserPrompt:   "Say hello.",
		Schema:       testSchema,
	}
}

func isRepairPrompt(req entities.CompletionRequest) bool {
	return strings.HasSuffix(req.Messages[1].Content, RepairInstruction)
}

func TestSchemaInvoker_NoProvider(t *testing.T) {
	invoker := NewSchemaInvoker(nil)

	out, err := invoker.Invoke(context.Background(), testRequest())

	assert.Nil(t, out)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfiguration))
}

func TestSchemaInvoker_ValidFirstAttempt(t *testing.T) {
	provider := new(MockCompletionProvider)
	provider.On("Complete", mock.Anything, mock.MatchedBy(func(req entities.CompletionRequest) bool {
		return req.Model == "gpt-4o-mini" &&
			req.SchemaName == "greeting_result" &&
			req.Strict &&
			len(req.Messages) == 2 &&
			req.Messages[0].Role == "system" &&
			strings.HasPrefix(req.Messages[0].Content, "You greet people.") &&
			strings.Contains(req.Messages[0].Content, "Return JSON only.") &&
			req.Messages[1].Role == "user" &&
			req.Messages[1].Content == "Say hello."
	})).Return(`{"greeting":"hi","mood":"happy","score":0.9}`, nil).Once()

	out, err := NewSchemaInvoker(provider).Invoke(context.Background(), testRequest())
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "hi", decoded["greeting"])
	provider.AssertNumberOfCalls(t, "Complete", 1)
}

func TestSchemaInvoker_StripsCodeFence(t *testing.T) {
	provider := new(MockCompletionProvider)
	provider.On("Complete", mock.Anything, mock.Anything).
		Return("```json\n{\"greeting\":\"hi\",\"mood\":\"sad\",\"score\":0}\n```", nil).Once()

	out, err := NewSchemaInvoker(provider).Invoke(context.Background(), testRequest())
	require.NoError(t, err)
	assert.JSONEq(t, `{"greeting":"hi","mood":"sad","score":0}`, string(out))
	provider.AssertNumberOfCalls(t, "Complete", 1)
}

func TestSchemaInvoker_RepairsAfterParseFailure(t *testing.T) {
	tests := []struct {
		name  string
		first string
	}{
		{name: "malformed JSON", first: `{"greeting": "hi",`},
		{name: "empty response", first: "   "},
		{name: "missing required key", first: `{"greeting":"hi","mood":"happy"}`},
		{name: "extra key", first: `{"greeting":"hi","mood":"happy","score":1,"extra":true}`},
		{name: "enum violation", first: `{"greeting":"hi","mood":"angry","score":0.5}`},
		{name: "out of range", first: `{"greeting":"hi","mood":"happy","score":1.5}`},
		{name: "not an object", first: `["hi"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(MockCompletionProvider)
			provider.On("Complete", mock.Anything, mock.MatchedBy(func(req entities.CompletionRequest) bool {
				return !isRepairPrompt(req)
			})).Return(tt.first, nil).Once()
			provider.On("Complete", mock.Anything, mock.MatchedBy(func(req entities.CompletionRequest) bool {
				return isRepairPrompt(req) && strings.HasPrefix(req.Messages[1].Content, "Say hello.\n\n")
			})).Return(`{"greeting":"hello","mood":"happy","score":1}`, nil).Once()

			out, err := NewSchemaInvoker(provider).Invoke(context.Background(), testRequest())
			require.NoError(t, err)
			assert.JSONEq(t, `{"greeting":"hello","mood":"happy","score":1}`, string(out))
			provider.AssertExpectations(t)
		})
	}
}

func TestSchemaInvoker_FailsAfterSecondParseFailure(t *testing.T) {
	provider := new(MockCompletionProvider)
	provider.On("Complete", mock.Anything, mock.Anything).Return("not json at all", nil).Times(2)

	out, err := NewSchemaInvoker(provider).Invoke(context.Background(), testRequest())

	assert.Nil(t, out)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvocation))
	assert.Contains(t, err.Error(), "LLM response invalid after retry")
	assert.Contains(t, err.Error(), "malformed JSON")
	provider.AssertNumberOfCalls(t, "Complete", 2)
}

func TestSchemaInvoker_TransportFailureIsTerminal(t *testing.T) {
	provider := new(MockCompletionProvider)
	cause := errors.New("openai request failed with status 401")
	provider.On("Complete", mock.Anything, mock.Anything).Return("", cause).Once()

	out, err := NewSchemaInvoker(provider).Invoke(context.Background(), testRequest())

	assert.Nil(t, out)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvocation))
	assert.ErrorIs(t, err, cause)
	provider.AssertNumberOfCalls(t, "Complete", 1)
}

func TestSchemaInvoker_TransportFailureOnRepairAttempt(t *testing.T) {
	provider := new(MockCompletionProvider)
	cause := errors.New("connection reset by peer")
	provider.On("Complete", mock.Anything, mock.MatchedBy(func(req entities.CompletionRequest) bool {
		return !isRepairPrompt(req)
	})).Return("", nil).Once()
	provider.On("Complete", mock.Anything, mock.MatchedBy(isRepairPrompt)).Return("", cause).Once()

	_, err := NewSchemaInvoker(provider).Invoke(context.Background(), testRequest())

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvocation))
	assert.ErrorIs(t, err, cause)
	provider.AssertExpectations(t)
}

func TestSchemaInvoker_MissingSchema(t *testing.T) {
	provider := new(MockCompletionProvider)
	req := testRequest()
	req.Schema = nil

	_, err := NewSchemaInvoker(provider).Invoke(context.Background(), req)

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
	provider.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}
