package agents

import (
	"context"
	"strings"

	"github.com/zatekoja/carenavigator/backend/internal/application/llm"
	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
)

// Route maps intent and urgency to a downstream handler.
// Unrecognized urgency values route to an agent.
func Route(intent entities.Intent, urgency entities.Urgency) entities.Route {
	if intent != entities.IntentSymptoms {
		return entities.RouteAgent
	}
	switch urgency {
	case entities.UrgencyER:
		return entities.RouteERInstruction
	case entities.UrgencySameDay:
		return entities.RouteNurse
	case entities.UrgencyTelehealth:
		return entities.RouteAgent
	case entities.UrgencyRoutine:
		return entities.RouteSelfService
	}
	return entities.RouteAgent
}

// Orchestrator produces next steps and a call script for an already-decided route.
type Orchestrator struct {
	invoker llm.Invoker
	model   string
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(invoker llm.Invoker, model string) *Orchestrator {
	return &Orchestrator{invoker: invoker, model: model}
}

// Plan computes the route, asks the model for actions and script, then overwrites the model's route.
func (o *Orchestrator) Plan(ctx context.Context, transcript string, intent entities.IntentResult, triage entities.TriageResult) (entities.OrchestrationResult, error) {
	route := Route(intent.Intent, triage.Urgency)

	raw, err := o.invoker.Invoke(ctx, llm.Request{
		Model:        o.model,
		SystemPrompt: orchestrationSystemPrompt,
		UserPrompt:   orchestrationUserPrompt(transcript, intent.Intent, triage.Urgency, route),
		Schema:       OrchestrationSchema,
	})
	if err != nil {
		return entities.OrchestrationResult{}, err
	}

	proposed, err := decode[entities.OrchestrationResult]("orchestration", raw)
	if err != nil {
		return entities.OrchestrationResult{}, err
	}

	var escalation *string
	if proposed.EscalationReason != nil {
		if reason := strings.TrimSpace(*proposed.EscalationReason); reason != "" {
			escalation = &reason
		}
	}

	return entities.OrchestrationResult{
		RouteTo:          route,
		NextBestActions:  nonNil(proposed.NextBestActions),
		SuggestedScript:  nonNil(proposed.SuggestedScript),
		EscalationReason: escalation,
	}, nil
}
