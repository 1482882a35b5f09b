package entities

// Route is the downstream handler a call is assigned to.
type Route string

const (
	RouteAgent         Route = "agent"
	RouteNurse         Route = "nurse"
	RouteERInstruction Route = "er_instruction"
	RouteSelfService   Route = "self_service"
)

// IsValid reports whether r is one of the known routes.
func (r Route) IsValid() bool {
	switch r {
	case RouteAgent, RouteNurse, RouteERInstruction, RouteSelfService:
		return true
	}
	return false
}

// OrchestrationResult is the output of the orchestration stage.
// RouteTo is always the deterministic routing decision.
type OrchestrationResult struct {
	RouteTo          Route    `json:"route_to" yaml:"route_to"`
	NextBestActions  []string `json:"next_best_actions" yaml:"next_best_actions"`
	SuggestedScript  []string `json:"suggested_script" yaml:"suggested_script"`
	EscalationReason *string  `json:"escalation_reason" yaml:"escalation_reason"`
}
