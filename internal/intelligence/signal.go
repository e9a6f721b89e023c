// Package intelligence runs pure rule modules over a return and its
// computed snapshot, emitting prioritized advisory signals. Signals are
// read-only downstream: scoring and routing consume them but never
// mutate them.
package intelligence

// Category classifies what a signal is about.
type Category string

// Signal categories.
const (
	CategoryIncome    Category = "income"
	CategoryDeduction Category = "deduction"
	CategoryRegime    Category = "regime"
	CategoryRisk      Category = "risk"
)

// Severity ranks how strongly a signal should influence the taxpayer.
type Severity string

// Signal severities.
const (
	SeverityInfo      Severity = "info"
	SeverityWarning   Severity = "warning"
	SeverityImportant Severity = "important"
)

// Weight returns the sort weight for the severity.
func (s Severity) Weight() int {
	switch s {
	case SeverityImportant:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	}
	return 0
}

// Signal is one advisory observation about a return.
type Signal struct {
	ID             string         `json:"id"`
	Category       Category       `json:"category"`
	Severity       Severity       `json:"severity"`
	Confidence     float64        `json:"confidence"`
	ReasonCode     string         `json:"reason_code"`
	Facts          map[string]any `json:"facts,omitempty"`
	Recommendation string         `json:"recommendation"`
}
