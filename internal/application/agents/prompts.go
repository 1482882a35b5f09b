package agents

import (
	"encoding/json"
	"fmt"

	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/carenavigator/backend/pkg/errors"
)

// Transcript excerpt lengths in characters.
const (
	orchestrationExcerptChars = 1500
	documentationExcerptChars = 3000
)

const intentSystemPrompt = `You are a healthcare call center intent classifier. Given a call transcript, classify the primary intent into exactly one of: scheduling, billing, refill, symptoms.
- scheduling: appointment booking, rescheduling, cancellation, availability
- billing: charges, insurance, payment, statements
- refill: prescription refill, medication renewal
- symptoms: patient describing symptoms, seeking medical advice, feeling unwell
Return only valid JSON matching the schema. No markdown, no extra keys.`

const triageSystemPrompt = `You are a healthcare triage assistant. Given a call transcript and any known red flags, determine urgency:
- er: emergency, needs ER or 911
- same_day: urgent, same-day visit
- telehealth: can be handled via telehealth
- routine: non-urgent, routine follow-up
Provide 1-5 questions_to_ask that would help clarify urgency or safety. Be concise.
Return only valid JSON matching the schema. No markdown, no extra keys.`

const orchestrationSystemPrompt = `You are a healthcare call center orchestrator. Given intent, triage urgency, and route_to, produce:
- next_best_actions: 4-8 concrete actions the agent should take (e.g., verify insurance, schedule callback).
- suggested_script: 3-6 lines the agent can say to the caller, appropriate for the route and intent.
- escalation_reason: null unless escalating; otherwise short reason.
Return only valid JSON matching the schema. No markdown, no extra keys.`

const documentationSystemPrompt = `You are a healthcare call documentation assistant. Create documentation from the call. Rules:
- Be conservative: no medical diagnosis. Use "possible", "reported", "caller stated".
- Summary: 4-6 bullet points.
- SOAP: S=Subjective (caller's report), O=Objective (if any from call), A=Assessment (possible/working assessment only), P=Plan (next steps). Keep aligned to urgency and route.
- Follow-up tasks: 2-5 concrete tasks.
Return only valid JSON matching the schema. No markdown, no extra keys.`

func orchestrationUserPrompt(transcript string, intent entities.Intent, urgency entities.Urgency, route entities.Route) string {
	return fmt.Sprintf(
		"Intent: %s. Urgency: %s. Route: %s.\n\nTranscript (excerpt): %s",
		intent, urgency, route, excerpt(transcript, orchestrationExcerptChars),
	)
}

func documentationUserPrompt(transcript string, intent entities.Intent, urgency entities.Urgency, route entities.Route) string {
	return fmt.Sprintf(
		"Intent: %s. Urgency: %s. Route: %s.\n\nTranscript:\n%s",
		intent, urgency, route, excerpt(transcript, documentationExcerptChars),
	)
}

// excerpt returns the first n characters (code points) of s.
func excerpt(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func decode[T any](stage string, raw json.RawMessage) (T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, apperrors.NewParseError(fmt.Sprintf("failed to decode %s result", stage), err)
	}
	return out, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
