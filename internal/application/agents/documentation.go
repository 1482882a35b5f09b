package agents

import (
	"context"

	"github.com/zatekoja/carenavigator/backend/internal/application/llm"
	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
)

// Documenter writes the call summary, SOAP note and follow-up tasks.
type Documenter struct {
	invoker llm.Invoker
	model   string
}

// NewDocumenter creates a documenter.
func NewDocumenter(invoker llm.Invoker, model string) *Documenter {
	return &Documenter{invoker: invoker, model: model}
}

// Document conditions the note on every earlier stage result.
func (d *Documenter) Document(ctx context.Context, transcript string, intent entities.IntentResult, triage entities.TriageResult, orchestration entities.OrchestrationResult) (entities.DocumentationResult, error) {
	raw, err := d.invoker.Invoke(ctx, llm.Request{
		Model:        d.model,
		SystemPrompt: documentationSystemPrompt,
		UserPrompt:   documentationUserPrompt(transcript, intent.Intent, triage.Urgency, orchestration.RouteTo),
		Schema:       DocumentationSchema,
	})
	if err != nil {
		return entities.DocumentationResult{}, err
	}

	result, err := decode[entities.DocumentationResult]("documentation", raw)
	if err != nil {
		return entities.DocumentationResult{}, err
	}
	result.SummaryBullets = nonNil(result.SummaryBullets)
	result.FollowUpTasks = nonNil(result.FollowUpTasks)
	return result, nil
}
