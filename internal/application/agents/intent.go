package agents

import (
	"context"

	"github.com/zatekoja/carenavigator/backend/internal/application/llm"
	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
)

// IntentClassifier assigns a transcript to exactly one intent.
type IntentClassifier struct {
	invoker llm.Invoker
	model   string
}

// NewIntentClassifier creates an intent classifier.
func NewIntentClassifier(invoker llm.Invoker, model string) *IntentClassifier {
	return &IntentClassifier{invoker: invoker, model: model}
}

// Classify sends the full transcript to the model.
func (c *IntentClassifier) Classify(ctx context.Context, transcript string) (entities.IntentResult, error) {
	raw, err := c.invoker.Invoke(ctx, llm.Request{
		Model:        c.model,
		SystemPrompt: intentSystemPrompt,
		UserPrompt:   transcript,
		Schema:       IntentSchema,
	})
	if err != nil {
		return entities.IntentResult{}, err
	}
	return decode[entities.IntentResult]("intent", raw)
}
