package providers

import (
	"context"
	"io"
)

// TranscriptionProvider converts recorded call audio to text.
type TranscriptionProvider interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}
