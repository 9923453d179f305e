// pkg/core/run.go
package core

import (
	"encoding/json"
	"time"
)

// Assembly names a sizing pipeline.
type Assembly string

const (
	AssemblyDrive4pt Assembly = "drive4pt"
	AssemblyDrive3pt Assembly = "drive3pt"
	AssemblyHub      Assembly = "hub"
)

// ComponentResult is one row of a run's breakdown.
type ComponentResult struct {
	Name   string  `json:"name"`
	Mass   float64 `json:"mass"`
	Cost   float64 `json:"cost"`
	CM     Vec3    `json:"cm"`
	Length float64 `json:"length,omitempty"`
	Height float64 `json:"height,omitempty"`
	Width  float64 `json:"width,omitempty"`
}

// Run is a single evaluation of an assembly for one input set.
type Run struct {
	ID         string            `json:"id"`
	Assembly   Assembly          `json:"assembly"`
	Preset     string            `json:"preset,omitempty"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
	Inputs     json.RawMessage   `json:"inputs"`
	Outputs    json.RawMessage   `json:"outputs"`
	Components []ComponentResult `json:"components"`
	TotalMass  float64           `json:"totalMass"`
	TotalCost  float64           `json:"totalCost"`
}

// Duration is the wall time spent evaluating the run.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
