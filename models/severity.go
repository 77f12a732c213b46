package models

// Severity is the ordinal risk band derived from a numeric score.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// SeverityFromScore maps a score in [0,10] to a severity band.
// Applied identically to integer per-image scores and the real-valued
// weighted site score: score < 4 is Low, 4 <= score < 7 is Medium,
// score >= 7 is High.
func SeverityFromScore(score float64) Severity {
	switch {
	case score < 4:
		return SeverityLow
	case score < 7:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// Weight returns the aggregation weight for the band: Low=1, Medium=2, High=3.
func (s Severity) Weight() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

func (s Severity) String() string {
	return string(s)
}
