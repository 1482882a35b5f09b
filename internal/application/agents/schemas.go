package agents

import (
	"github.com/zatekoja/carenavigator/backend/internal/application/llm"
)

type object = map[string]interface{}

var stringArray = object{"type": "array", "items": object{"type": "string"}}

// IntentSchema constrains intent classifier output.
var IntentSchema = llm.MustSchema("intent_result", object{
	"type": "object",
	"properties": object{
		"intent":     object{"type": "string", "enum": []string{"scheduling", "billing", "refill", "symptoms"}},
		"confidence": object{"type": "number", "minimum": 0, "maximum": 1},
		"reason":     object{"type": "string"},
	},
	"required":             []string{"intent", "confidence", "reason"},
	"additionalProperties": false,
})

// TriageSchema constrains triage output when no red flag was found.
var TriageSchema = llm.MustSchema("triage_result", object{
	"type": "object",
	"properties": object{
		"urgency":            object{"type": "string", "enum": []string{"er", "same_day", "telehealth", "routine"}},
		"red_flags_detected": stringArray,
		"questions_to_ask":   stringArray,
		"reasoning":          object{"type": "string"},
	},
	"required":             []string{"urgency", "red_flags_detected", "questions_to_ask", "reasoning"},
	"additionalProperties": false,
})

// OrchestrationSchema constrains orchestration output. The route_to value is discarded.
var OrchestrationSchema = llm.MustSchema("orchestration_result", object{
	"type": "object",
	"properties": object{
		"route_to":          object{"type": "string", "enum": []string{"agent", "nurse", "er_instruction", "self_service"}},
		"next_best_actions": stringArray,
		"suggested_script":  stringArray,
		"escalation_reason": object{"type": []string{"string", "null"}},
	},
	"required":             []string{"route_to", "next_best_actions", "suggested_script", "escalation_reason"},
	"additionalProperties": false,
})

// DocumentationSchema constrains documentation output.
var DocumentationSchema = llm.MustSchema("documentation_result", object{
	"type": "object",
	"properties": object{
		"summary_bullets": stringArray,
		"soap": object{
			"type": "object",
			"properties": object{
				"S": object{"type": "string"},
				"O": object{"type": "string"},
				"A": object{"type": "string"},
				"P": object{"type": "string"},
			},
			"required":             []string{"S", "O", "A", "P"},
			"additionalProperties": false,
		},
		"follow_up_tasks": stringArray,
	},
	"required":             []string{"summary_bullets", "soap", "follow_up_tasks"},
	"additionalProperties": false,
})
