package evaluation

import (
	"context"
	"time"

	"github.com/zatekoja/carenavigator/backend/internal/application/agents"
	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
	"github.com/zatekoja/carenavigator/backend/internal/infrastructure/observability"
)

var routeFor = agents.Route

type Analyzer interface {
	Analyze(ctx context.Context, input entities.AnalysisInput) (*entities.AnalysisResponse, error)
}

// Runner runs evaluation across a set of golden cases.
type Runner struct {
	analyzer   Analyzer
	guardrails *Guardrails
}

func NewRunner(analyzer Analyzer, guardrails *Guardrails) *Runner {
	if guardrails == nil {
		guardrails = NewGuardrails(GuardrailConfig{})
	}
	return &Runner{analyzer: analyzer, guardrails: guardrails}
}

// Run evaluates cases sequentially. A refused case counts as failed; other cases still run.
// Only context cancellation stops the run early.
func (r *Runner) Run(ctx context.Context, cases []GoldenCase) (*Summary, error) {
	logger := observability.LoggerFromContext(ctx)
	summary := &Summary{
		TotalCases: len(cases),
		ByIntent:   make(map[entities.Intent]*IntentSummary),
		Results:    make([]CaseResult, 0, len(cases)),
	}

	for _, gc := range cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err := r.analyzer.Analyze(ctx, entities.AnalysisInput{Transcript: gc.Transcript, Channel: entities.ChannelPhone})
		duration := time.Since(start)
		if err != nil {
			logger.Warn().Err(err).Str("case", gc.ID).Msg("golden case failed")
			summary.Failed++
			continue
		}

		result := CaseResult{
			CaseID:         gc.ID,
			Intent:         gc.Intent,
			IntentCorrect:  resp.Intent.Intent == gc.Intent,
			UrgencyCorrect: resp.Triage.Urgency == gc.Urgency,
			RouteCorrect:   resp.Orchestration.RouteTo == gc.ExpectedRoute(),
			RedFlagRecall:  Recall(gc.RedFlags, resp.Triage.RedFlagsDetected),
			StageErrors:    len(resp.Errors),
			Violations:     r.guardrails.Check(resp),
			Latency:        duration,
		}
		r.updateSummary(summary, gc, resp, result)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func (r *Runner) updateSummary(s *Summary, gc GoldenCase, resp *entities.AnalysisResponse, res CaseResult) {
	s.Results = append(s.Results, res)
	s.AvgLatency += res.Latency
	s.StageErrors += res.StageErrors
	s.Violations += len(res.Violations)

	if gc.Urgency == entities.UrgencyER {
		s.emergencyCases++
		if resp.Triage.Urgency == entities.UrgencyER {
			s.emergencyHits++
		}
	}

	is, ok := s.ByIntent[gc.Intent]
	if !ok {
		is = &IntentSummary{}
		s.ByIntent[gc.Intent] = is
	}
	is.Count++
	if res.IntentCorrect {
		is.IntentAccuracy++
	}
	if res.UrgencyCorrect {
		is.UrgencyAccuracy++
	}
}

func (r *Runner) finalizeSummary(s *Summary) {
	var intent, urgency, route int
	var recall float64
	for _, res := range s.Results {
		if res.IntentCorrect {
			intent++
		}
		if res.UrgencyCorrect {
			urgency++
		}
		if res.RouteCorrect {
			route++
		}
		recall += res.RedFlagRecall
	}

	n := len(s.Results)
	s.IntentAccuracy = ratio(intent, n)
	s.UrgencyAccuracy = ratio(urgency, n)
	s.RouteAccuracy = ratio(route, n)
	s.EmergencyRecall = ratio(s.emergencyHits, s.emergencyCases)
	if n > 0 {
		s.RedFlagRecall = recall / float64(n)
		s.AvgLatency /= time.Duration(n)
	}

	for _, is := range s.ByIntent {
		if is.Count > 0 {
			c := float64(is.Count)
			is.IntentAccuracy /= c
			is.UrgencyAccuracy /= c
		}
	}
}
