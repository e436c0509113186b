package portfolio

import "strings"

// Confidence levels as rendered on recommendation cards.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceOther  = "other"
)

// ConfidenceLevel classifies a confidence label case-insensitively.
func ConfidenceLevel(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceMedium:
		return ConfidenceMedium
	default:
		return ConfidenceOther
	}
}

// ConfidenceClass returns the CSS class for a confidence label.
func ConfidenceClass(label string) string {
	switch ConfidenceLevel(label) {
	case ConfidenceHigh:
		return "text-green-400"
	case ConfidenceMedium:
		return "text-yellow-400"
	default:
		return "text-gray-400"
	}
}
