package evaluation

import (
	"time"

	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
)

// GoldenCase is a labeled transcript with the outcome a reviewer expects.
type GoldenCase struct {
	ID         string           `json:"id" yaml:"id"`
	Transcript string           `json:"transcript" yaml:"transcript"`
	Intent     entities.Intent  `json:"intent" yaml:"intent"`
	Urgency    entities.Urgency `json:"urgency" yaml:"urgency"`
	RedFlags   []string         `json:"red_flags" yaml:"red_flags"`
	Difficulty string           `json:"difficulty" yaml:"difficulty"` // easy, medium, hard
}

// ExpectedRoute is the route implied by the labeled intent and urgency.
func (c GoldenCase) ExpectedRoute() entities.Route {
	return routeFor(c.Intent, c.Urgency)
}

// CaseResult holds the evaluation outcome for a single case.
type CaseResult struct {
	CaseID         string          `json:"case_id"`
	Intent         entities.Intent `json:"intent"`
	IntentCorrect  bool            `json:"intent_correct"`
	UrgencyCorrect bool            `json:"urgency_correct"`
	RouteCorrect   bool            `json:"route_correct"`
	RedFlagRecall  float64         `json:"red_flag_recall"`
	StageErrors    int             `json:"stage_errors"`
	Violations     []string        `json:"violations,omitempty"`
	Latency        time.Duration   `json:"latency"`
}

// Summary holds aggregate metrics across all golden cases.
type Summary struct {
	TotalCases      int                                `json:"total_cases"`
	Failed          int                                `json:"failed"` // cases the pipeline refused outright
	IntentAccuracy  float64                            `json:"intent_accuracy"`
	UrgencyAccuracy float64                            `json:"urgency_accuracy"`
	RouteAccuracy   float64                            `json:"route_accuracy"`
	RedFlagRecall   float64                            `json:"red_flag_recall"`
	EmergencyRecall float64                            `json:"emergency_recall"` // labeled er cases triaged as er
	StageErrors     int                                `json:"stage_errors"`
	Violations      int                                `json:"guardrail_violations"`
	AvgLatency      time.Duration                      `json:"avg_latency"`
	ByIntent        map[entities.Intent]*IntentSummary `json:"by_intent"`
	Results         []CaseResult                       `json:"results"`

	emergencyCases int
	emergencyHits  int
}

// IntentSummary holds metrics grouped by labeled intent.
type IntentSummary struct {
	Count           int     `json:"count"`
	IntentAccuracy  float64 `json:"intent_accuracy"`
	UrgencyAccuracy float64 `json:"urgency_accuracy"`
}
