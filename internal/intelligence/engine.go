package intelligence

import (
	"log/slog"
	"sort"
	"time"

	"github.com/veritax/veritax/internal/compute"
	"github.com/veritax/veritax/internal/forms"
)

// Rule inspects a return and its computed snapshot and emits zero or
// more signals. Rules must be pure: no I/O, no mutation of inputs.
type Rule interface {
	Name() string
	Evaluate(form *forms.FormData, snapshot *compute.TaxSnapshot, now time.Time) []Signal
}

// Engine runs its rule modules in order and returns the concatenated
// signals sorted by severity weight, descending. Ties keep the module
// emission order.
type Engine struct {
	rules  []Rule
	logger *slog.Logger
}

// NewEngine creates an Engine with the default rule set.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{
		rules: []Rule{
			missing80CRule{},
			seniorCitizen80DRule{},
			salaryCertificateRule{},
			multipleEmployersRule{},
			regimeComparisonRule{},
		},
		logger: logger.With("system", "intelligence"),
	}
}

// Analyze evaluates every rule and returns the prioritized signal list.
func (e *Engine) Analyze(form *forms.FormData, snapshot *compute.TaxSnapshot) []Signal {
	now := time.Now()

	var signals []Signal
	for _, rule := range e.rules {
		emitted := rule.Evaluate(form, snapshot, now)
		signals = append(signals, emitted...)
		if len(emitted) > 0 {
			e.logger.Debug("rule emitted signals", "rule", rule.Name(), "count", len(emitted))
		}
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Severity.Weight() > signals[j].Severity.Weight()
	})

	return signals
}
