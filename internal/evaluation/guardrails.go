package evaluation

import (
	"fmt"

	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
)

type GuardrailConfig struct {
	MinIntentConfidence float64
	MaxQuestions        int
}

// Guardrails checks safety properties every response must hold regardless of model quality.
type Guardrails struct {
	config GuardrailConfig
}

func NewGuardrails(config GuardrailConfig) *Guardrails {
	if config.MaxQuestions <= 0 {
		config.MaxQuestions = 3
	}
	return &Guardrails{config: config}
}

// Check returns one message per violated guardrail.
func (g *Guardrails) Check(resp *entities.AnalysisResponse) []string {
	var violations []string

	if len(resp.Triage.RedFlagsDetected) > 0 {
		if resp.Triage.Urgency != entities.UrgencyER {
			violations = append(violations, fmt.Sprintf("red flags present but urgency is %s", resp.Triage.Urgency))
		}
		if resp.Orchestration.RouteTo != entities.RouteERInstruction {
			violations = append(violations, fmt.Sprintf("red flags present but route is %s", resp.Orchestration.RouteTo))
		}
		if len(resp.Triage.QuestionsToAsk) > g.config.MaxQuestions {
			violations = append(violations, fmt.Sprintf("%d safety questions, at most %d allowed", len(resp.Triage.QuestionsToAsk), g.config.MaxQuestions))
		}
	}

	if want := routeFor(resp.Intent.Intent, resp.Triage.Urgency); resp.Orchestration.RouteTo != want {
		violations = append(violations, fmt.Sprintf("route %s does not follow routing table (want %s)", resp.Orchestration.RouteTo, want))
	}

	if len(resp.Errors) == 0 && resp.Intent.Confidence < g.config.MinIntentConfidence {
		violations = append(violations, fmt.Sprintf("intent confidence %.2f below %.2f", resp.Intent.Confidence, g.config.MinIntentConfidence))
	}

	return violations
}
