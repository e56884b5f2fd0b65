package postgres

// Query limits for history listings.
const (
	DefaultQueryLimit = 100
	MaxQueryLimit     = 1000
)

// normalizeLimit clamps a caller supplied limit into (0, MaxQueryLimit].
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultQueryLimit
	}
	if limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}
