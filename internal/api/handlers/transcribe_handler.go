package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zatekoja/carenavigator/backend/internal/domain/providers"
	"github.com/zatekoja/carenavigator/backend/internal/infrastructure/observability"
)

const (
	maxAudioBytes      = 25 << 20
	multipartMemory    = 8 << 20
	defaultAudioName   = "audio.mp3"
	audioContentPrefix = "audio/"
)

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".ogg": true,
	".flac": true, ".webm": true, ".aac": true, ".opus": true,
}

// TranscribeHandler converts uploaded call audio to text.
type TranscribeHandler struct {
	transcriber providers.TranscriptionProvider
}

// NewTranscribeHandler creates a new transcribe handler. A nil transcriber means no credential is configured.
func NewTranscribeHandler(transcriber providers.TranscriptionProvider) *TranscribeHandler {
	return &TranscribeHandler{transcriber: transcriber}
}

// Transcribe handles POST /api/transcribe
func (h *TranscribeHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if h.transcriber == nil {
		respondWithError(w, http.StatusServiceUnavailable, "OPENAI_API_KEY is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "audio file exceeds 25 MiB")
			return
		}
		respondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if ok, ext := isAudioUpload(contentType, header.Filename); !ok {
		respondWithError(w, http.StatusBadRequest, "File must be an audio file. Got: "+ext)
		return
	}

	filename := header.Filename
	if filename == "" {
		filename = defaultAudioName
	}

	text, err := h.transcriber.Transcribe(r.Context(), filename, file)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("filename", filename).Msg("transcription failed")
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Transcription failed: %v", err))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"transcript": text})
}

// isAudioUpload accepts audio content types, or a known audio extension when browsers send something else.
func isAudioUpload(contentType, filename string) (bool, string) {
	if contentType == "" || strings.HasPrefix(contentType, audioContentPrefix) || filename == "" {
		return true, ""
	}
	ext := strings.ToLower(filepath.Ext(filename))
	return audioExtensions[ext], ext
}
