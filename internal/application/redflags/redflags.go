// Package redflags detects emergency phrases in call transcripts with fixed rules.
// Nothing here consults a model.
package redflags

import (
	"regexp"
	"strings"
)

// Labels reported by Detect.
const (
	LabelChestPain         = "chest pain"
	LabelTroubleBreathing  = "trouble breathing"
	LabelShortnessOfBreath = "shortness of breath"
	LabelFaceDroop         = "stroke symptoms (face droop)"
	LabelSlurredSpeech     = "stroke symptoms (slurred speech)"
	LabelStrokeSymptoms    = "stroke symptoms"
	LabelUnconscious       = "unconscious/fainting"
	LabelSevereBleeding    = "severe bleeding"
	LabelAllergicReaction  = "severe allergic reaction"
	LabelAllergicSwelling  = "severe allergic reaction swelling"
	LabelSuicidalThoughts  = "suicidal thoughts"
)

// GenericSafetyQuestion is asked when red flags exist but none maps to a known category.
const GenericSafetyQuestion = "Can you describe what happened and how you feel right now?"

const maxSafetyQuestions = 3

type rule struct {
	pattern *regexp.Regexp
	label   string
}

// rules are evaluated in order; output order follows the first rule that produced each label.
var rules = []rule{
	{regexp.MustCompile(`(?i)\bchest\s+pain\b`), LabelChestPain},
	{regexp.MustCompile(`(?i)\btrouble\s+breathing\b`), LabelTroubleBreathing},
	{regexp.MustCompile(`(?i)\bshortness\s+of\s+breath\b`), LabelShortnessOfBreath},
	{regexp.MustCompile(`(?i)\bface\s+droop\b`), LabelFaceDroop},
	{regexp.MustCompile(`(?i)\bslurred\s+speech\b`), LabelSlurredSpeech},
	{regexp.MustCompile(`(?i)\bstroke\s+symptoms\b`), LabelStrokeSymptoms},
	{regexp.MustCompile(`(?i)\bunconscious\b`), LabelUnconscious},
	{regexp.MustCompile(`(?i)\bfainting\b`), LabelUnconscious},
	{regexp.MustCompile(`(?i)\bpassed\s+out\b`), LabelUnconscious},
	{regexp.MustCompile(`(?i)\bsevere\s+bleeding\b`), LabelSevereBleeding},
	{regexp.MustCompile(`(?i)\bheavy\s+bleeding\b`), LabelSevereBleeding},
	{regexp.MustCompile(`(?i)\bsevere\s+allergic\s+reaction\b`), LabelAllergicReaction},
	{regexp.MustCompile(`(?i)\bthroat\s+swelling\b`), LabelAllergicSwelling},
	{regexp.MustCompile(`(?i)\bswelling\s+of\s+(the\s+)?throat\b`), LabelAllergicSwelling},
	{regexp.MustCompile(`(?i)\bsuicidal\s+thoughts\b`), LabelSuicidalThoughts},
	{regexp.MustCompile(`(?i)\bthinking\s+about\s+suicide\b`), LabelSuicidalThoughts},
	{regexp.MustCompile(`(?i)\bwant\s+to\s+die\b`), LabelSuicidalThoughts},
}

// Detect returns the red-flag labels found in transcript, without duplicates.
// Labels are ordered by rule position, not by where they occur in the text.
func Detect(transcript string) []string {
	flags := []string{}
	if strings.TrimSpace(transcript) == "" {
		return flags
	}

	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if _, ok := seen[r.label]; ok {
			continue
		}
		if r.pattern.MatchString(transcript) {
			seen[r.label] = struct{}{}
			flags = append(flags, r.label)
		}
	}
	return flags
}

type category struct {
	keywords []string
	question string
}

// categories are checked in this order; each contributes at most one question.
var categories = []category{
	{
		keywords: []string{"chest", "breath"},
		question: "Are you currently having chest pain or difficulty breathing right now?",
	},
	{
		keywords: []string{"stroke", "face", "slurred"},
		question: "Are you or the patient currently experiencing any weakness on one side or speech difficulty?",
	},
	{
		keywords: []string{"suicidal", "suicide", "die"},
		question: "Are you in a safe place? Do you have access to weapons or means to harm yourself?",
	},
	{
		keywords: []string{"unconscious", "fainting"},
		question: "Is the person conscious and breathing normally now?",
	},
	{
		keywords: []string{"allergic", "swelling"},
		question: "Is there any swelling of the face, lips, or throat? Can they breathe normally?",
	},
	{
		keywords: []string{"bleeding"},
		question: "Is the bleeding under control with direct pressure?",
	},
}

// SafetyQuestions returns up to three clarifying questions for the given labels.
// No labels yields no questions; labels that match no category yield the generic question.
func SafetyQuestions(labels []string) []string {
	questions := []string{}
	if len(labels) == 0 {
		return questions
	}

	for _, c := range categories {
		if anyLabelContains(labels, c.keywords) {
			questions = append(questions, c.question)
		}
	}

	if len(questions) == 0 {
		return []string{GenericSafetyQuestion}
	}
	if len(questions) > maxSafetyQuestions {
		questions = questions[:maxSafetyQuestions]
	}
	return questions
}

func anyLabelContains(labels []string, keywords []string) bool {
	for _, label := range labels {
		for _, kw := range keywords {
			if strings.Contains(label, kw) {
				return true
			}
		}
	}
	return false
}
