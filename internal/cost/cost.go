// Package cost prices sized components from per-kilogram rates.
package cost

import (
	"github.com/drivese/drivese/internal/config"
	"github.com/drivese/drivese/pkg/core"
)

// Model prices components by mass.
type Model struct {
	rates       map[string]float64
	defaultRate float64
}

// New creates a cost model from the configured rates.
func New(cfg config.CostConfig) *Model {
	m := &Model{rates: make(map[string]float64, len(cfg.Rates)), defaultRate: cfg.Default}
	for name, rate := range cfg.Rates {
		m.rates[name] = rate
	}
	return m
}

// Rate returns the USD/kg rate for a component.
func (m *Model) Rate(component string) float64 {
	if r, ok := m.rates[component]; ok {
		return r
	}
	return m.defaultRate
}

// Apply fills in the cost of each row and returns the totals.
func (m *Model) Apply(rows []core.ComponentResult) (mass, total float64) {
	for i := range rows {
		rows[i].Cost = rows[i].Mass * m.Rate(rows[i].Name)
		mass += rows[i].Mass
		total += rows[i].Cost
	}
	return mass, total
}
