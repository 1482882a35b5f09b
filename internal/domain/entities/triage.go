package entities

// Urgency is how quickly a caller needs care.
type Urgency string

const (
	UrgencyER         Urgency = "er"
	UrgencySameDay    Urgency = "same_day"
	UrgencyTelehealth Urgency = "telehealth"
	UrgencyRoutine    Urgency = "routine"
)

// Urgencies lists every urgency from most to least urgent.
var Urgencies = []Urgency{UrgencyER, UrgencySameDay, UrgencyTelehealth, UrgencyRoutine}

// IsValid reports whether u is one of the known urgency levels.
func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyER, UrgencySameDay, UrgencyTelehealth, UrgencyRoutine:
		return true
	}
	return false
}

// TriageResult is the output of the triage stage.
// When RedFlagsDetected is non-empty, Urgency is always UrgencyER.
type TriageResult struct {
	Urgency          Urgency  `json:"urgency" yaml:"urgency"`
	RedFlagsDetected []string `json:"red_flags_detected" yaml:"red_flags_detected"`
	QuestionsToAsk   []string `json:"questions_to_ask" yaml:"questions_to_ask"`
	Reasoning        string   `json:"reasoning" yaml:"reasoning"`
}
