package entities

// SOAPNote is a Subjective/Objective/Assessment/Plan clinical note.
type SOAPNote struct {
	Subjective string `json:"S" yaml:"S"`
	Objective  string `json:"O" yaml:"O"`
	Assessment string `json:"A" yaml:"A"`
	Plan       string `json:"P" yaml:"P"`
}

// DocumentationResult is the output of the documentation stage.
type DocumentationResult struct {
	SummaryBullets []string `json:"summary_bullets" yaml:"summary_bullets"`
	SOAP           SOAPNote `json:"soap" yaml:"soap"`
	FollowUpTasks  []string `json:"follow_up_tasks" yaml:"follow_up_tasks"`
}
