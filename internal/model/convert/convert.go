// Package convert maps sizing runs between the core types and the GORM models.
package convert

import (
	"github.com/drivese/drivese/internal/model"
	"github.com/drivese/drivese/pkg/core"
	"gorm.io/datatypes"
)

// RunToModel converts a core.Run to a GORM SizingRun.
// Component rows keep their order through Position.
func RunToModel(r core.Run) model.SizingRun {
	out := model.SizingRun{
		ID:         r.ID,
		Assembly:   string(r.Assembly),
		Preset:     r.Preset,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Inputs:     datatypes.JSON(r.Inputs),
		Outputs:    datatypes.JSON(r.Outputs),
		TotalMass:  r.TotalMass,
		TotalCost:  r.TotalCost,
	}
	if len(r.Components) > 0 {
		out.Components = make([]model.ComponentRecord, len(r.Components))
		for i, c := range r.Components {
			out.Components[i] = ComponentToModel(r.ID, i, c)
		}
	}
	return out
}

// ComponentToModel converts a single breakdown row.
func ComponentToModel(runID string, position int, c core.ComponentResult) model.ComponentRecord {
	return model.ComponentRecord{
		RunID:    runID,
		Position: position,
		Name:     c.Name,
		Mass:     c.Mass,
		Cost:     c.Cost,
		CMX:      c.CM[0],
		CMY:      c.CM[1],
		CMZ:      c.CM[2],
		Length:   c.Length,
		Height:   c.Height,
		Width:    c.Width,
	}
}

// RunToCore converts a GORM SizingRun back to a core.Run.
// Components are expected to be loaded ordered by Position.
func RunToCore(m model.SizingRun) core.Run {
	out := core.Run{
		ID:         m.ID,
		Assembly:   core.Assembly(m.Assembly),
		Preset:     m.Preset,
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
		TotalMass:  m.TotalMass,
		TotalCost:  m.TotalCost,
	}
	if len(m.Inputs) > 0 {
		out.Inputs = []byte(m.Inputs)
	}
	if len(m.Outputs) > 0 {
		out.Outputs = []byte(m.Outputs)
	}
	if len(m.Components) > 0 {
		out.Components = make([]core.ComponentResult, len(m.Components))
		for i, c := range m.Components {
			out.Components[i] = ComponentToCore(c)
		}
	}
	return out
}

// ComponentToCore converts a GORM ComponentRecord to a core.ComponentResult.
func ComponentToCore(c model.ComponentRecord) core.ComponentResult {
	return core.ComponentResult{
		Name:   c.Name,
		Mass:   c.Mass,
		Cost:   c.Cost,
		CM:     core.Vec3{c.CMX, c.CMY, c.CMZ},
		Length: c.Length,
		Height: c.Height,
		Width:  c.Width,
	}
}
