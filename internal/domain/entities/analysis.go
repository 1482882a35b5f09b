package entities

// Channel is how the caller reached the call center.
type Channel string

const (
	ChannelPhone Channel = "phone"
	ChannelChat  Channel = "chat"
)

// IsValid reports whether c is a known channel. The empty channel is valid.
func (c Channel) IsValid() bool {
	switch c {
	case "", ChannelPhone, ChannelChat:
		return true
	}
	return false
}

// AnalysisInput is a single transcript submitted for analysis.
type AnalysisInput struct {
	Transcript    string
	CallerContext map[string]interface{}
	Channel       Channel
	Debug         bool
}

// AnalysisResponse aggregates the four stage results of one pipeline run.
type AnalysisResponse struct {
	RequestID      string              `json:"request_id" yaml:"request_id"`
	Intent         IntentResult        `json:"intent" yaml:"intent"`
	Triage         TriageResult        `json:"triage" yaml:"triage"`
	Orchestration  OrchestrationResult `json:"orchestration" yaml:"orchestration"`
	Documentation  DocumentationResult `json:"documentation" yaml:"documentation"`
	LatencySeconds float64             `json:"latency_s" yaml:"latency_s"`
	ModelUsed      string              `json:"model_used" yaml:"model_used"`
	Warnings       []string            `json:"warnings" yaml:"warnings"`
	Errors         []string            `json:"errors" yaml:"errors"`
}
