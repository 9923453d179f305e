package worker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/drivese/drivese/internal/config"
	"github.com/drivese/drivese/internal/cost"
	"github.com/drivese/drivese/internal/logging"
	"github.com/drivese/drivese/internal/metrics"
	"github.com/drivese/drivese/internal/storage"
	"github.com/drivese/drivese/internal/storage/memory"
	"github.com/drivese/drivese/pkg/core"
	"github.com/drivese/drivese/pkg/drivetrain"
	"github.com/drivese/drivese/pkg/hub"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	m       *Manager
	backend *memory.Backend
	metrics *metrics.Collector
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	col, err := metrics.NewCollector(prometheus.NewRegistry())
	require.NoError(t, err)

	backend := memory.New(config.MemoryConfig{})
	m := NewManager(Dependencies{
		LogManager: logging.NewSlogManager(),
		Cost:       cost.New(config.CostConfig{Default: 10, Rates: config.DefaultCostRates}),
		Metrics:    col,
	}, backend)

	// batch handlers call this from several goroutines
	var n atomic.Int64
	m.newID = func() string {
		return fmt.Sprintf("run-%d", n.Add(1))
	}
	return &testEnv{m: m, backend: backend, metrics: col}
}

func TestSizeDrivetrain_Preset(t *testing.T) {
	env := newTestEnv(t)

	run, err := env.m.SizeDrivetrain(drivetrain.Layout4pt, DrivetrainRequest{Preset: "5mw"})
	require.NoError(t, err)

	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, core.AssemblyDrive4pt, run.Assembly)
	assert.Equal(t, "5mw", run.Preset)
	assert.False(t, run.FinishedAt.Before(run.StartedAt))

	// Totals match the nacelle adder.
	var res drivetrain.Result
	require.NoError(t, json.Unmarshal(run.Outputs, &res))
	assert.InDelta(t, res.Nacelle.Mass, run.TotalMass, 1e-6*res.Nacelle.Mass)

	var costSum float64
	for _, c := range run.Components {
		assert.GreaterOrEqual(t, c.Cost, 0.0, c.Name)
		costSum += c.Cost
	}
	assert.InDelta(t, costSum, run.TotalCost, 1e-6)
	assert.Greater(t, run.TotalCost, 0.0)

	var in drivetrainRunInputs
	require.NoError(t, json.Unmarshal(run.Inputs, &in))
	assert.Equal(t, 5000.0, in.Inputs.MachineRating)

	stored, err := env.backend.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, run.TotalMass, stored.TotalMass)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Runs.WithLabelValues("drive4pt", "ok")))
}

func TestSizeDrivetrain_ExplicitInputs(t *testing.T) {
	env := newTestEnv(t)
	cfg, in, err := drivetrain.Preset("750kw", drivetrain.Layout3pt)
	require.NoError(t, err)

	run, err := env.m.SizeDrivetrain(drivetrain.Layout3pt, DrivetrainRequest{Config: &cfg, Inputs: &in})
	require.NoError(t, err)
	assert.Equal(t, core.AssemblyDrive3pt, run.Assembly)
	assert.Empty(t, run.Preset)
}

func TestSizeDrivetrain_OverridesClearPreset(t *testing.T) {
	env := newTestEnv(t)
	cfg, in, err := drivetrain.Preset("5mw", drivetrain.Layout4pt)
	require.NoError(t, err)
	cfg.Crane = false
	in.MachineRating = 4500

	tests := []struct {
		name   string
		req    DrivetrainRequest
		rating float64
		crane  bool
	}{
		{"config only", DrivetrainRequest{Preset: "5mw", Config: &cfg}, 5000, false},
		{"inputs only", DrivetrainRequest{Preset: "5mw", Inputs: &in}, 4500, true},
		{"both", DrivetrainRequest{Preset: "5mw", Config: &cfg, Inputs: &in}, 4500, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, err := env.m.SizeDrivetrain(drivetrain.Layout4pt, tt.req)
			require.NoError(t, err)
			assert.Empty(t, run.Preset)

			var got drivetrainRunInputs
			require.NoError(t, json.Unmarshal(run.Inputs, &got))
			assert.Equal(t, tt.rating, got.Inputs.MachineRating)
			assert.Equal(t, tt.crane, got.Config.Crane)
		})
	}
}

func TestSizeDrivetrain_Errors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		layout drivetrain.Layout
		req    DrivetrainRequest
	}{
		{"bad layout", "5pt", DrivetrainRequest{Preset: "5mw"}},
		{"unknown preset", drivetrain.Layout4pt, DrivetrainRequest{Preset: "10mw"}},
		{"missing inputs", drivetrain.Layout4pt, DrivetrainRequest{}},
		{"invalid override", drivetrain.Layout3pt, DrivetrainRequest{Preset: "5mw", Inputs: &drivetrain.Inputs{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.m.SizeDrivetrain(tt.layout, tt.req)
			assert.True(t, errors.Is(err, core.ErrInvalidInput), "got %v", err)
		})
	}

	assert.Equal(t, 0, env.backend.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Runs.WithLabelValues("drive3pt", "error")))
}

func TestSizeHub(t *testing.T) {
	env := newTestEnv(t)

	run, err := env.m.SizeHub(HubRequest{Preset: "1.5mw"})
	require.NoError(t, err)
	assert.Equal(t, core.AssemblyHub, run.Assembly)

	names := make([]string, len(run.Components))
	for i, c := range run.Components {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"hub", "pitch_system", "spinner"}, names)

	var res hub.Result
	require.NoError(t, json.Unmarshal(run.Outputs, &res))
	assert.InDelta(t, res.System.Mass, run.TotalMass, 1e-6*res.System.Mass)
}

func TestSizeHub_InputsOverridePreset(t *testing.T) {
	env := newTestEnv(t)
	in, err := hub.Preset("750kw")
	require.NoError(t, err)

	run, err := env.m.SizeHub(HubRequest{Preset: "5mw", Inputs: &in})
	require.NoError(t, err)
	assert.Empty(t, run.Preset)

	var got hub.Inputs
	require.NoError(t, json.Unmarshal(run.Inputs, &got))
	assert.Equal(t, in, got)

	preset, err := env.m.SizeHub(HubRequest{Preset: "5mw"})
	require.NoError(t, err)
	assert.Equal(t, "5mw", preset.Preset)

	runs, err := env.backend.ListRuns(storage.Filter{Preset: "5mw"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, preset.ID, runs[0].ID)
}

func TestSizeHub_Errors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.m.SizeHub(HubRequest{})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = env.m.SizeHub(HubRequest{Preset: "nope"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = env.m.SizeHub(HubRequest{Inputs: &hub.Inputs{}})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	in, err := hub.Preset("5mw")
	require.NoError(t, err)
	_, err = env.m.SizeHub(HubRequest{Preset: "nope", Inputs: &in})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestRunsAreLoggedWithRunContext(t *testing.T) {
	env := newTestEnv(t)
	var buf bytes.Buffer
	logs := logging.NewSlogManager()
	logs.Setup(&buf, "info", nil)
	env.m.deps.LogManager = logs

	run, err := env.m.SizeDrivetrain(drivetrain.Layout3pt, DrivetrainRequest{Preset: "5mw"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "run complete")
	assert.Contains(t, out, "runId="+run.ID)
	assert.Contains(t, out, "assembly=drive3pt")
	assert.Contains(t, out, "preset=5mw")

	buf.Reset()
	_, err = env.m.SizeHub(HubRequest{Inputs: &hub.Inputs{}})
	require.Error(t, err)

	out = buf.String()
	assert.Contains(t, out, "sizing failed")
	assert.Contains(t, out, "assembly=hub")
	assert.NotContains(t, out, "runId")
}

type failingBackend struct{ storage.Backend }

func (failingBackend) SaveRun(*core.Run) error { return errors.New("disk full") }

func TestRecord_BackendError(t *testing.T) {
	m := NewManager(Dependencies{}, failingBackend{})
	_, err := m.SizeHub(HubRequest{Preset: "5mw"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestNewRun_NoCostModel(t *testing.T) {
	m := NewManager(Dependencies{}, nil)
	m.now = func() time.Time { return time.Unix(0, 0) }

	rows := []core.ComponentResult{{Name: "a", Mass: 2}, {Name: "b", Mass: 3}}
	run, err := m.newRun(core.AssemblyHub, "", time.Unix(0, 0), struct{}{}, struct{}{}, rows)
	require.NoError(t, err)
	assert.Equal(t, 5.0, run.TotalMass)
	assert.Zero(t, run.TotalCost)
	assert.NotEmpty(t, run.ID)
}
