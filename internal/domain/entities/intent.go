package entities

// Intent is the primary reason a caller contacted the call center.
type Intent string

const (
	IntentScheduling Intent = "scheduling"
	IntentBilling    Intent = "billing"
	IntentRefill     Intent = "refill"
	IntentSymptoms   Intent = "symptoms"
)

// Intents lists every intent in classifier order.
var Intents = []Intent{IntentScheduling, IntentBilling, IntentRefill, IntentSymptoms}

// IsValid reports whether i is one of the known intents.
func (i Intent) IsValid() bool {
	switch i {
	case IntentScheduling, IntentBilling, IntentRefill, IntentSymptoms:
		return true
	}
	return false
}

// IntentResult is the output of the intent classifier stage.
type IntentResult struct {
	Intent     Intent  `json:"intent" yaml:"intent"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Reason     string  `json:"reason" yaml:"reason"`
}
