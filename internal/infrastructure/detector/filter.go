package detector

import "strings"

func classSet(classes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		set[normalizeLabel(c)] = struct{}{}
	}
	return set
}

// accept applies the class allowlist and the confidence floor. An empty
// allowlist admits every class.
func accept(allowed map[string]struct{}, label string, confidence, minConfidence float64) bool {
	if confidence < minConfidence {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[normalizeLabel(label)]
	return ok
}

// normalizeLabel maps "Cell Phone" and "cell-phone" to "cell_phone".
func normalizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(label)
}
