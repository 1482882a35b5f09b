package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecall(t *testing.T) {
	tests := []struct {
		name     string
		expected []string
		got      []string
		want     float64
	}{
		{name: "nothing expected", expected: nil, got: []string{"chest pain"}, want: 1.0},
		{name: "all found", expected: []string{"chest pain", "stroke symptoms"}, got: []string{"stroke symptoms", "chest pain"}, want: 1.0},
		{name: "half found", expected: []string{"chest pain", "stroke symptoms"}, got: []string{"chest pain"}, want: 0.5},
		{name: "none found", expected: []string{"chest pain"}, got: []string{}, want: 0.0},
		{name: "duplicates counted once", expected: []string{"chest pain", "chest pain"}, got: []string{"chest pain"}, want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Recall(tt.expected, tt.got), 1e-9)
		})
	}
}

func TestPrecision(t *testing.T) {
	assert.InDelta(t, 1.0, Precision([]string{"chest pain"}, nil), 1e-9)
	assert.InDelta(t, 0.5, Precision([]string{"chest pain"}, []string{"chest pain", "unconscious"}), 1e-9)
	assert.InDelta(t, 0.0, Precision(nil, []string{"unconscious"}), 1e-9)
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.0, ratio(3, 0))
	assert.Equal(t, 0.75, ratio(3, 4))
}
