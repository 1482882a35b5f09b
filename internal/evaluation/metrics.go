package evaluation

// Recall computes the fraction of expected labels present in got.
// Returns 1.0 if expected is empty, since nothing was missed.
func Recall(expected, got []string) float64 {
	if len(expected) == 0 {
		return 1.0
	}
	return float64(overlap(expected, got)) / float64(len(expected))
}

// Precision computes the fraction of got labels that were expected.
// Returns 1.0 if got is empty, since nothing was wrongly flagged.
func Precision(expected, got []string) float64 {
	if len(got) == 0 {
		return 1.0
	}
	return float64(overlap(got, expected)) / float64(len(got))
}

// overlap counts distinct items of a that also appear in b.
func overlap(a, b []string) int {
	set := make(map[string]struct{}, len(b))
	for _, item := range b {
		set[item] = struct{}{}
	}

	seen := make(map[string]struct{}, len(a))
	found := 0
	for _, item := range a {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		if _, ok := set[item]; ok {
			found++
		}
	}
	return found
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(n) / float64(total)
}
