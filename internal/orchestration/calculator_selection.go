package orchestration

import (
	"github.com/agbru/fibengine/internal/fibonacci"
)

// GetCalculatorsToRun returns the calculators selected by algo: every
// registered calculator in name order for "all", the named one otherwise,
// or nil when the name is unknown.
func GetCalculatorsToRun(algo string, registry *fibonacci.Registry) []fibonacci.Calculator {
	if algo == fibonacci.AlgoAll {
		return registry.GetAll()
	}
	if calc, err := registry.Get(algo); err == nil {
		return []fibonacci.Calculator{calc}
	}
	return nil
}
