package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
)

func response(intent entities.Intent, confidence float64, urgency entities.Urgency, route entities.Route, flags ...string) *entities.AnalysisResponse {
	if flags == nil {
		flags = []string{}
	}
	return &entities.AnalysisResponse{
		Intent:        entities.IntentResult{Intent: intent, Confidence: confidence},
		Triage:        entities.TriageResult{Urgency: urgency, RedFlagsDetected: flags, QuestionsToAsk: []string{"Are you safe?"}},
		Orchestration: entities.OrchestrationResult{RouteTo: route},
		Errors:        []string{},
	}
}

func TestGuardrails_Clean(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{MinIntentConfidence: 0.6})

	assert.Empty(t, g.Check(response(entities.IntentRefill, 0.9, entities.UrgencyRoutine, entities.RouteAgent)))
	assert.Empty(t, g.Check(response(entities.IntentSymptoms, 0.8, entities.UrgencyER, entities.RouteERInstruction, "chest pain")))
}

func TestGuardrails_RedFlagsWithoutEmergency(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{})

	violations := g.Check(response(entities.IntentSymptoms, 0.8, entities.UrgencySameDay, entities.RouteNurse, "chest pain"))

	assert.Len(t, violations, 2)
	assert.Contains(t, violations[0], "urgency is same_day")
	assert.Contains(t, violations[1], "route is nurse")
}

func TestGuardrails_RoutingTable(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{})

	violations := g.Check(response(entities.IntentBilling, 0.9, entities.UrgencyRoutine, entities.RouteSelfService))

	assert.Equal(t, []string{"route self_service does not follow routing table (want agent)"}, violations)
}

func TestGuardrails_LowConfidence(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{MinIntentConfidence: 0.6})

	assert.Len(t, g.Check(response(entities.IntentRefill, 0.5, entities.UrgencyRoutine, entities.RouteAgent)), 1)

	// Fallback responses always carry confidence 0; the stage error is reported instead.
	resp := response(entities.IntentSymptoms, 0, entities.UrgencyRoutine, entities.RouteSelfService)
	resp.Errors = []string{"Intent: timeout"}
	assert.Empty(t, g.Check(resp))
}

func TestGuardrails_TooManyQuestions(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{MaxQuestions: 1})

	resp := response(entities.IntentSymptoms, 0.8, entities.UrgencyER, entities.RouteERInstruction, "chest pain")
	resp.Triage.QuestionsToAsk = []string{"one", "two"}

	assert.Equal(t, []string{"2 safety questions, at most 1 allowed"}, g.Check(resp))
}
