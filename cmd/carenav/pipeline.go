package main

import (
	"context"

	"github.com/zatekoja/carenavigator/backend/internal/application/llm"
	"github.com/zatekoja/carenavigator/backend/internal/application/services"
	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
	"github.com/zatekoja/carenavigator/backend/internal/infrastructure/clients/openai"
	"github.com/zatekoja/carenavigator/backend/pkg/config"
	apperrors "github.com/zatekoja/carenavigator/backend/pkg/errors"
)

type analyzer interface {
	Analyze(ctx context.Context, input entities.AnalysisInput) (*entities.AnalysisResponse, error)
}

func newPipeline(cfg *config.Config) (analyzer, string, error) {
	if !cfg.OpenAI.Configured() {
		return nil, "", apperrors.NewConfigurationError("OPENAI_API_KEY is not set")
	}
	client, err := openai.NewClient(&cfg.OpenAI)
	if err != nil {
		return nil, "", err
	}
	pipeline := services.NewPipelineService(cfg.OpenAI, llm.NewSchemaInvoker(client), nil)
	return pipeline, pipeline.Model(), nil
}
