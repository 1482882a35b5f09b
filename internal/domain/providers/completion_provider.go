package providers

import (
	"context"

	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
)

// CompletionProvider generates schema-constrained text from a chat model.
type CompletionProvider interface {
	// Complete returns the raw text content of the model's reply. Empty content is not an error.
	Complete(ctx context.Context, req entities.CompletionRequest) (string, error)
}
