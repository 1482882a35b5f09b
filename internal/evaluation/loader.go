package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// LoadGoldenCases reads a golden case set from a JSON or YAML file, chosen by extension.
func LoadGoldenCases(path string) ([]GoldenCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden cases file: %w", err)
	}

	var cases []GoldenCase
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cases)
	default:
		err = json.Unmarshal(data, &cases)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse golden cases: %w", err)
	}

	return cases, nil
}

var validDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

// ValidateGoldenCases checks that all golden cases have required fields and valid values.
func ValidateGoldenCases(cases []GoldenCase) error {
	seen := make(map[string]struct{}, len(cases))

	for i, c := range cases {
		if c.ID == "" {
			return fmt.Errorf("case at index %d: missing id", i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("case at index %d: duplicate id %q", i, c.ID)
		}
		seen[c.ID] = struct{}{}

		if strings.TrimSpace(c.Transcript) == "" {
			return fmt.Errorf("case %q: missing transcript", c.ID)
		}
		if !c.Intent.IsValid() {
			return fmt.Errorf("case %q: invalid intent %q", c.ID, c.Intent)
		}
		if !c.Urgency.IsValid() {
			return fmt.Errorf("case %q: invalid urgency %q", c.ID, c.Urgency)
		}
		if len(c.RedFlags) > 0 && c.Urgency != entities.UrgencyER {
			return fmt.Errorf("case %q: red flags require urgency er", c.ID)
		}
		if !validDifficulties[c.Difficulty] {
			return fmt.Errorf("case %q: invalid difficulty %q (must be easy/medium/hard)", c.ID, c.Difficulty)
		}
	}

	return nil
}
