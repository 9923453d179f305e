package worker

import (
	"encoding/json"
	"fmt"

	"github.com/drivese/drivese/internal/dispatcher"
	"github.com/drivese/drivese/pkg/core"
	"github.com/drivese/drivese/pkg/drivetrain"
)

// Dispatcher commands.
const (
	CmdSize4pt  = "size:4pt"
	CmdSize3pt  = "size:3pt"
	CmdHub      = "hub"
	CmdBatch4pt = "batch:4pt"
	CmdBatch3pt = "batch:3pt"
	CmdBatchHub = "batch:hub"
)

const defaultBatchBuffer = 64

// RegisterHandlers registers the sizing handlers with the dispatcher.
// size:* and hub run synchronously and return the run; batch:* queue and block when full.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	buffer := m.deps.BatchBuffer
	if buffer <= 0 {
		buffer = defaultBatchBuffer
	}

	d.Register(CmdSize4pt, m.handleDrivetrain(drivetrain.Layout4pt), dispatcher.Logged())
	d.Register(CmdSize3pt, m.handleDrivetrain(drivetrain.Layout3pt), dispatcher.Logged())
	d.Register(CmdHub, m.handleHub, dispatcher.Logged())

	d.Register(CmdBatch4pt, m.handleDrivetrain(drivetrain.Layout4pt), dispatcher.Buffered(buffer), dispatcher.Blocking(), dispatcher.Logged())
	d.Register(CmdBatch3pt, m.handleDrivetrain(drivetrain.Layout3pt), dispatcher.Buffered(buffer), dispatcher.Blocking(), dispatcher.Logged())
	d.Register(CmdBatchHub, m.handleHub, dispatcher.Buffered(buffer), dispatcher.Blocking(), dispatcher.Logged())
}

// decodeEvent fills req from the event payload, then applies Args[0] as the preset name.
func decodeEvent(e dispatcher.Event, req any, preset *string) error {
	if len(e.Payload) > 0 {
		if err := json.Unmarshal(e.Payload, req); err != nil {
			return fmt.Errorf("%w: decoding payload: %v", core.ErrInvalidInput, err)
		}
	}
	if len(e.Args) > 0 && e.Args[0] != "" {
		*preset = e.Args[0]
	}
	return nil
}

func (m *Manager) handleDrivetrain(layout drivetrain.Layout) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		var req DrivetrainRequest
		if err := decodeEvent(e, &req, &req.Preset); err != nil {
			return nil, err
		}
		run, err := m.SizeDrivetrain(layout, req)
		if err != nil {
			return nil, fmt.Errorf("failed to size %s drivetrain: %w", layout, err)
		}
		return run, nil
	}
}

func (m *Manager) handleHub(e dispatcher.Event) (any, error) {
	var req HubRequest
	if err := decodeEvent(e, &req, &req.Preset); err != nil {
		return nil, err
	}
	run, err := m.SizeHub(req)
	if err != nil {
		return nil, fmt.Errorf("failed to size hub: %w", err)
	}
	return run, nil
}
