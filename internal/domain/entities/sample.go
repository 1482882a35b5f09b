package entities

// SampleTranscript is a canned call transcript used for demos and smoke tests.
type SampleTranscript struct {
	ID         string `json:"id" yaml:"id"`
	Label      string `json:"label" yaml:"label"`
	Transcript string `json:"transcript" yaml:"transcript"`
}
