package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/drivese/drivese/internal/cost"
	"github.com/drivese/drivese/internal/influx"
	"github.com/drivese/drivese/internal/logging"
	"github.com/drivese/drivese/internal/metrics"
	"github.com/drivese/drivese/internal/storage"
	"github.com/drivese/drivese/pkg/core"
	"github.com/drivese/drivese/pkg/drivetrain"
	"github.com/drivese/drivese/pkg/hub"
	"github.com/google/uuid"
)

// Dependencies holds all dependencies for the worker manager. Influx and Metrics are optional.
type Dependencies struct {
	LogManager  *logging.SlogManager
	Cost        *cost.Model
	Influx      *influx.Manager
	Metrics     *metrics.Collector
	BatchBuffer int
}

// Manager evaluates sizing requests and records the resulting runs.
type Manager struct {
	deps    Dependencies
	backend storage.Backend
	now     func() time.Time
	newID   func() string
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies, backend storage.Backend) *Manager {
	return &Manager{
		deps:    deps,
		backend: backend,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// DrivetrainRequest selects a preset and optionally replaces its configuration or inputs.
// Without a preset both Config and Inputs are required. A run is recorded under the
// preset name only when neither part was replaced.
type DrivetrainRequest struct {
	Preset string             `json:"preset,omitempty"`
	Config *drivetrain.Config `json:"config,omitempty"`
	Inputs *drivetrain.Inputs `json:"inputs,omitempty"`
}

// HubRequest selects a preset and optionally replaces its inputs. Without a preset
// Inputs is required. Replaced inputs are recorded without the preset name.
type HubRequest struct {
	Preset string      `json:"preset,omitempty"`
	Inputs *hub.Inputs `json:"inputs,omitempty"`
}

type drivetrainRunInputs struct {
	Config drivetrain.Config `json:"config"`
	Inputs drivetrain.Inputs `json:"inputs"`
}

// SizeDrivetrain evaluates one drivetrain layout and records the run.
func (m *Manager) SizeDrivetrain(layout drivetrain.Layout, req DrivetrainRequest) (*core.Run, error) {
	if !layout.Valid() {
		return nil, core.InvalidInput("layout", "must be 3pt or 4pt, got %q", layout)
	}

	var cfg drivetrain.Config
	var in drivetrain.Inputs
	if req.Preset != "" {
		var err error
		if cfg, in, err = drivetrain.Preset(req.Preset, layout); err != nil {
			return nil, err
		}
	} else if req.Config == nil || req.Inputs == nil {
		return nil, core.InvalidInput("request", "either a preset or both config and inputs are required")
	}
	preset := req.Preset
	if req.Config != nil {
		cfg = *req.Config
		preset = ""
	}
	if req.Inputs != nil {
		in = *req.Inputs
		preset = ""
	}

	asm := layout.Assembly()
	start := m.now()
	res, err := drivetrain.Assemble(layout, cfg, in)
	if err != nil {
		m.fail(asm, preset, err)
		return nil, err
	}

	run, err := m.newRun(asm, preset, start, drivetrainRunInputs{Config: cfg, Inputs: in}, res, res.Components())
	if err != nil {
		return nil, err
	}
	return run, m.record(run)
}

// SizeHub evaluates the hub system and records the run.
func (m *Manager) SizeHub(req HubRequest) (*core.Run, error) {
	var in hub.Inputs
	if req.Preset != "" {
		var err error
		if in, err = hub.Preset(req.Preset); err != nil {
			return nil, err
		}
	} else if req.Inputs == nil {
		return nil, core.InvalidInput("request", "either a preset or inputs are required")
	}
	preset := req.Preset
	if req.Inputs != nil {
		in = *req.Inputs
		preset = ""
	}

	start := m.now()
	res, err := hub.Assemble(in)
	if err != nil {
		m.fail(core.AssemblyHub, preset, err)
		return nil, err
	}

	run, err := m.newRun(core.AssemblyHub, preset, start, in, res, res.Components())
	if err != nil {
		return nil, err
	}
	return run, m.record(run)
}

func (m *Manager) newRun(asm core.Assembly, preset string, start time.Time, inputs, outputs any, rows []core.ComponentResult) (*core.Run, error) {
	inJSON, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("encoding inputs: %w", err)
	}
	outJSON, err := json.Marshal(outputs)
	if err != nil {
		return nil, fmt.Errorf("encoding outputs: %w", err)
	}

	run := &core.Run{
		ID:         m.newID(),
		Assembly:   asm,
		Preset:     preset,
		StartedAt:  start,
		FinishedAt: m.now(),
		Inputs:     inJSON,
		Outputs:    outJSON,
		Components: rows,
	}
	if m.deps.Cost != nil {
		run.TotalMass, run.TotalCost = m.deps.Cost.Apply(run.Components)
	} else {
		for _, c := range rows {
			run.TotalMass += c.Mass
		}
	}
	return run, nil
}

// record persists the run. Influx failures are logged and do not fail the run.
func (m *Manager) record(run *core.Run) error {
	if m.backend != nil {
		if err := m.backend.SaveRun(run); err != nil {
			return fmt.Errorf("saving run %s: %w", run.ID, err)
		}
	}

	ctx := logging.WithRun(context.Background(), logging.Run{ID: run.ID, Assembly: run.Assembly, Preset: run.Preset})
	if m.deps.Influx != nil {
		if err := m.deps.Influx.WriteRun(run); err != nil {
			m.logger().WarnContext(ctx, "writing run to influx", "error", err)
		}
	}

	m.deps.Metrics.ObserveRun(run)
	m.logger().InfoContext(ctx, "run complete",
		"mass", run.TotalMass,
		"cost", run.TotalCost,
		"duration", run.Duration(),
	)
	return nil
}

// fail counts a run that did not size and logs why.
func (m *Manager) fail(asm core.Assembly, preset string, err error) {
	m.deps.Metrics.ObserveFailure(asm)
	ctx := logging.WithRun(context.Background(), logging.Run{Assembly: asm, Preset: preset})
	m.logger().WarnContext(ctx, "sizing failed", "error", err)
}

func (m *Manager) logger() *slog.Logger {
	if m.deps.LogManager == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.deps.LogManager.Logger()
}
