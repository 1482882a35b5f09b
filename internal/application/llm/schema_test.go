package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/zatekoja/carenavigator/backend/pkg/errors"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `{"a":1}`, want: `{"a":1}`},
		{name: "surrounding whitespace", in: "\n  {\"a\":1}  \n", want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "unterminated fence", in: "```json\n{\"a\":1}", want: `{"a":1}`},
		{name: "closing fence with trailing spaces", in: "```\n{\"a\":1}\n```   ", want: `{"a":1}`},
		{name: "only a fence", in: "```", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.in))
		})
	}
}

func TestNewSchema_RejectsInvalidDefinition(t *testing.T) {
	_, err := NewSchema("broken", map[string]interface{}{
		"type": 42,
	})
	assert.Error(t, err)
}

func TestSchema_Parse(t *testing.T) {
	out, err := testSchema.Parse(`{"greeting":"hi","mood":"happy","score":0.25}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"greeting":"hi","mood":"happy","score":0.25}`, string(out))

	_, err = testSchema.Parse(`{"greeting":"hi"}`)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeParse))

	_, err = testSchema.Parse("")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeParse))
}
