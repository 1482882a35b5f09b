package entities

// ChatMessage is one message of a chat completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest asks a model backend for output constrained to a JSON schema.
type CompletionRequest struct {
	Model      string
	Messages   []ChatMessage
	SchemaName string
	Schema     map[string]interface{}
	Strict     bool
}
