package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/carenavigator/backend/internal/application/agents"
	"github.com/zatekoja/carenavigator/backend/internal/application/llm"
	"github.com/zatekoja/carenavigator/backend/internal/application/redflags"
	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
	"github.com/zatekoja/carenavigator/backend/internal/infrastructure/observability"
	"github.com/zatekoja/carenavigator/backend/pkg/config"
	apperrors "github.com/zatekoja/carenavigator/backend/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

const (
	stageIntent        = "Intent"
	stageTriage        = "Triage"
	stageOrchestration = "Orchestration"
	stageDocumentation = "Documentation"
)

const fallbackReason = "Fallback after error."

// PipelineService runs a transcript through intent, triage, orchestration and documentation.
// A failing stage is replaced by its fallback value and reported in the response errors.
type PipelineService struct {
	model      string
	configured bool

	intent        *agents.IntentClassifier
	triage        *agents.TriageAgent
	orchestrator  *agents.Orchestrator
	documentation *agents.Documenter

	metrics *observability.Metrics
	now     func() time.Time
}

// NewPipelineService creates a pipeline service. metrics may be nil.
func NewPipelineService(cfg config.OpenAIConfig, invoker llm.Invoker, metrics *observability.Metrics) *PipelineService {
	model := cfg.Model
	if model == "" {
		model = config.DefaultModel
	}
	return &PipelineService{
		model:         model,
		configured:    cfg.Configured(),
		intent:        agents.NewIntentClassifier(invoker, model),
		triage:        agents.NewTriageAgent(invoker, model),
		orchestrator:  agents.NewOrchestrator(invoker, model),
		documentation: agents.NewDocumenter(invoker, model),
		metrics:       metrics,
		now:           time.Now,
	}
}

// Model returns the model every stage uses.
func (s *PipelineService) Model() string {
	return s.model
}

// Configured reports whether a model credential is available.
func (s *PipelineService) Configured() bool {
	return s.configured
}

// pipelineRun holds the state private to one Analyze call.
type pipelineRun struct {
	debug    bool
	warnings []string
	errors   []string
}

func (r *pipelineRun) warnf(format string, args ...interface{}) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// Analyze returns a complete response even when stages fail.
// The only error is a ConfigurationError when no credential is configured.
func (s *PipelineService) Analyze(ctx context.Context, input entities.AnalysisInput) (*entities.AnalysisResponse, error) {
	if !s.configured {
		return nil, apperrors.NewConfigurationError("OPENAI_API_KEY is not set")
	}

	requestID := uuid.New().String()
	ctx, span := observability.StartSpan(ctx, "pipeline.analyze")
	defer span.End()
	observability.SetSpanAttributes(span,
		attribute.String("request.id", requestID),
		attribute.String("llm.model", s.model),
		attribute.String("call.channel", string(input.Channel)),
	)

	logger := observability.LoggerFromContext(ctx).With().Str("request_id", requestID).Logger()
	ctx = logger.WithContext(ctx)

	start := s.now()
	run := &pipelineRun{debug: input.Debug, warnings: []string{}, errors: []string{}}
	transcript := input.Transcript
	if strings.TrimSpace(transcript) == "" {
		run.warnf("Transcript is empty")
	}

	intent := runStage(ctx, s, run, stageIntent,
		func(ctx context.Context) (entities.IntentResult, error) {
			return s.intent.Classify(ctx, transcript)
		},
		func() entities.IntentResult {
			return entities.IntentResult{Intent: entities.IntentSymptoms, Confidence: 0, Reason: fallbackReason}
		},
	)

	flags := redflags.Detect(transcript)
	observability.RecordRedFlags(ctx, s.metrics, flags)
	if len(flags) > 0 {
		logger.Info().Strs("red_flags", flags).Msg("red flags detected, using emergency protocol")
	}

	triage := runStage(ctx, s, run, stageTriage,
		func(ctx context.Context) (entities.TriageResult, error) {
			result, err := s.triage.Assess(ctx, transcript, flags)
			if err == nil && len(flags) == 0 {
				checkBounds(run, stageTriage, "questions_to_ask", result.QuestionsToAsk, 1, 3)
			}
			return result, err
		},
		func() entities.TriageResult {
			return entities.TriageResult{
				Urgency:          entities.UrgencyRoutine,
				RedFlagsDetected: flags,
				QuestionsToAsk:   []string{},
				Reasoning:        fallbackReason,
			}
		},
	)

	orchestration := runStage(ctx, s, run, stageOrchestration,
		func(ctx context.Context) (entities.OrchestrationResult, error) {
			result, err := s.orchestrator.Plan(ctx, transcript, intent, triage)
			if err == nil {
				checkBounds(run, stageOrchestration, "next_best_actions", result.NextBestActions, 4, 8)
				checkBounds(run, stageOrchestration, "suggested_script", result.SuggestedScript, 3, 6)
			}
			return result, err
		},
		func() entities.OrchestrationResult {
			route := entities.RouteAgent
			if triage.Urgency == entities.UrgencyER {
				route = entities.RouteERInstruction
			}
			return entities.OrchestrationResult{
				RouteTo:         route,
				NextBestActions: []string{},
				SuggestedScript: []string{},
			}
		},
	)

	documentation := runStage(ctx, s, run, stageDocumentation,
		func(ctx context.Context) (entities.DocumentationResult, error) {
			result, err := s.documentation.Document(ctx, transcript, intent, triage, orchestration)
			if err == nil {
				checkBounds(run, stageDocumentation, "summary_bullets", result.SummaryBullets, 4, 6)
				checkBounds(run, stageDocumentation, "follow_up_tasks", result.FollowUpTasks, 2, 5)
			}
			return result, err
		},
		func() entities.DocumentationResult {
			return entities.DocumentationResult{
				SummaryBullets: []string{},
				FollowUpTasks:  []string{},
			}
		},
	)

	latency := s.now().Sub(start).Seconds()
	resp := &entities.AnalysisResponse{
		RequestID:      requestID,
		Intent:         intent,
		Triage:         triage,
		Orchestration:  orchestration,
		Documentation:  documentation,
		LatencySeconds: math.Round(latency*1000) / 1000,
		ModelUsed:      s.model,
		Warnings:       run.warnings,
		Errors:         run.errors,
	}

	observability.SetSpanAttributes(span,
		attribute.String("triage.urgency", string(triage.Urgency)),
		attribute.String("orchestration.route", string(orchestration.RouteTo)),
		attribute.Int("pipeline.errors", len(run.errors)),
	)
	logger.Info().
		Str("intent", string(intent.Intent)).
		Str("urgency", string(triage.Urgency)).
		Str("route", string(orchestration.RouteTo)).
		Int("errors", len(run.errors)).
		Int("warnings", len(run.warnings)).
		Float64("latency_s", resp.LatencySeconds).
		Msg("analysis completed")

	return resp, nil
}

// runStage executes one stage and substitutes fallback() when it fails.
func runStage[T any](
	ctx context.Context,
	s *PipelineService,
	run *pipelineRun,
	name string,
	stage func(context.Context) (T, error),
	fallback func() T,
) T {
	ctx, span := observability.StartSpan(ctx, "pipeline."+strings.ToLower(name))
	defer span.End()
	logger := observability.LoggerFromContext(ctx)

	start := time.Now()
	result, err := callStage(ctx, stage)
	failed := err != nil
	if failed {
		observability.RecordError(span, err)
		logger.Warn().Err(err).Str("stage", name).Msg("stage failed, using fallback")
		run.errors = append(run.errors, fmt.Sprintf("%s: %v", name, err))
		result = fallback()
	}
	observability.RecordStageMetric(ctx, s.metrics, name, time.Since(start), failed)

	if run.debug {
		logger.Info().Str("stage", name).Interface("result", result).Bool("fallback", failed).Msg("stage result")
	}
	return result
}

// callStage runs stage and turns a panic into an ordinary stage error.
func callStage[T any](ctx context.Context, stage func(context.Context) (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result, err = zero, fmt.Errorf("panic: %v", r)
		}
	}()
	return stage(ctx)
}

func checkBounds(run *pipelineRun, stage, field string, items []string, lo, hi int) {
	if n := len(items); n < lo || n > hi {
		run.warnf("%s: %s has %d items, expected %d-%d", stage, field, n, lo, hi)
	}
}
