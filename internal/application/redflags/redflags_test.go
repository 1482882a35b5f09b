package redflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		want       []string
	}{
		{
			name:       "empty transcript",
			transcript: "",
			want:       []string{},
		},
		{
			name:       "whitespace only",
			transcript: "  \n\t ",
			want:       []string{},
		},
		{
			name:       "no red flags",
			transcript: "I need a refill on my blood pressure medication",
			want:       []string{},
		},
		{
			name:       "chest pain and shortness of breath",
			transcript: "I've been having chest pain for the last hour... shortness of breath",
			want:       []string{LabelChestPain, LabelShortnessOfBreath},
		},
		{
			name:       "case insensitive",
			transcript: "MY FATHER HAS SLURRED SPEECH",
			want:       []string{LabelSlurredSpeech},
		},
		{
			name:       "whitespace between words",
			transcript: "there was heavy\n bleeding after the fall",
			want:       []string{LabelSevereBleeding},
		},
		{
			name:       "pattern order not text order",
			transcript: "She passed out earlier and now has chest pain",
			want:       []string{LabelChestPain, LabelUnconscious},
		},
		{
			name:       "shared label reported once",
			transcript: "he was fainting, then unconscious, then passed out again",
			want:       []string{LabelUnconscious},
		},
		{
			name:       "throat swelling with optional article",
			transcript: "there is swelling of the throat",
			want:       []string{LabelAllergicSwelling},
		},
		{
			name:       "throat swelling without article",
			transcript: "swelling of throat after eating peanuts, a severe allergic reaction",
			want:       []string{LabelAllergicReaction, LabelAllergicSwelling},
		},
		{
			name:       "suicidal phrasing",
			transcript: "Sometimes I want to die. I keep thinking about suicide.",
			want:       []string{LabelSuicidalThoughts},
		},
		{
			name:       "word boundaries",
			transcript: "the chestpain app and unconsciously tapping",
			want:       []string{},
		},
		{
			name:       "short of breath is not a listed phrase",
			transcript: "I'm also a bit short of breath",
			want:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.transcript))
		})
	}
}

func TestDetect_Deterministic(t *testing.T) {
	transcript := "Face droop and stroke symptoms, also trouble breathing and chest pain"
	first := Detect(transcript)
	assert.Equal(t, []string{LabelChestPain, LabelTroubleBreathing, LabelFaceDroop, LabelStrokeSymptoms}, first)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Detect(transcript))
	}
}

func TestSafetyQuestions(t *testing.T) {
	t.Run("no labels", func(t *testing.T) {
		assert.Empty(t, SafetyQuestions(nil))
		assert.Empty(t, SafetyQuestions([]string{}))
	})

	t.Run("chest pain", func(t *testing.T) {
		got := SafetyQuestions([]string{LabelChestPain})
		assert.Equal(t, []string{"Are you currently having chest pain or difficulty breathing right now?"}, got)
	})

	t.Run("one question per category", func(t *testing.T) {
		got := SafetyQuestions([]string{LabelChestPain, LabelShortnessOfBreath, LabelTroubleBreathing})
		assert.Len(t, got, 1)
	})

	t.Run("category order", func(t *testing.T) {
		got := SafetyQuestions([]string{LabelSevereBleeding, LabelFaceDroop})
		assert.Equal(t, []string{
			"Are you or the patient currently experiencing any weakness on one side or speech difficulty?",
			"Is the bleeding under control with direct pressure?",
		}, got)
	})

	t.Run("truncated to three", func(t *testing.T) {
		got := SafetyQuestions([]string{
			LabelChestPain,
			LabelFaceDroop,
			LabelUnconscious,
			LabelAllergicReaction,
			LabelSevereBleeding,
			LabelSuicidalThoughts,
		})
		assert.Equal(t, []string{
			"Are you currently having chest pain or difficulty breathing right now?",
			"Are you or the patient currently experiencing any weakness on one side or speech difficulty?",
			"Are you in a safe place? Do you have access to weapons or means to harm yourself?",
		}, got)
	})

	t.Run("unknown label falls back to generic question", func(t *testing.T) {
		got := SafetyQuestions([]string{"something else"})
		assert.Equal(t, []string{GenericSafetyQuestion}, got)
	})
}

func TestSafetyQuestions_EveryLabelHasACategory(t *testing.T) {
	for _, r := range rules {
		got := SafetyQuestions([]string{r.label})
		assert.Len(t, got, 1, r.label)
		assert.NotEqual(t, GenericSafetyQuestion, got[0], r.label)
	}
}
