package agents

import (
	"context"

	"github.com/zatekoja/carenavigator/backend/internal/application/llm"
	"github.com/zatekoja/carenavigator/backend/internal/application/redflags"
	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
)

// EmergencyProtocolReasoning is the reasoning recorded whenever a red flag forces urgency to er.
const EmergencyProtocolReasoning = "Red flag detected; follow emergency protocol."

// TriageAgent decides urgency. Rule-detected red flags always win over the model.
type TriageAgent struct {
	invoker llm.Invoker
	model   string
}

// NewTriageAgent creates a triage agent.
func NewTriageAgent(invoker llm.Invoker, model string) *TriageAgent {
	return &TriageAgent{invoker: invoker, model: model}
}

// Assess returns an er result without calling the model when redFlags is non-empty.
// Otherwise the model assesses the full transcript.
func (a *TriageAgent) Assess(ctx context.Context, transcript string, redFlags []string) (entities.TriageResult, error) {
	if len(redFlags) > 0 {
		return entities.TriageResult{
			Urgency:          entities.UrgencyER,
			RedFlagsDetected: append([]string(nil), redFlags...),
			QuestionsToAsk:   redflags.SafetyQuestions(redFlags),
			Reasoning:        EmergencyProtocolReasoning,
		}, nil
	}

	raw, err := a.invoker.Invoke(ctx, llm.Request{
		Model:        a.model,
		SystemPrompt: triageSystemPrompt,
		UserPrompt:   transcript,
		Schema:       TriageSchema,
	})
	if err != nil {
		return entities.TriageResult{}, err
	}

	result, err := decode[entities.TriageResult]("triage", raw)
	if err != nil {
		return entities.TriageResult{}, err
	}

	// Red flags come from rules only.
	result.RedFlagsDetected = []string{}
	result.QuestionsToAsk = nonNil(result.QuestionsToAsk)
	if len(result.QuestionsToAsk) == 0 {
		result.QuestionsToAsk = []string{redflags.GenericSafetyQuestion}
	}
	return result, nil
}
