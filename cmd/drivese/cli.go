package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/drivese/drivese/internal/dispatcher"
	"github.com/drivese/drivese/internal/storage"
	"github.com/drivese/drivese/internal/worker"
	"github.com/drivese/drivese/pkg/core"
	"github.com/drivese/drivese/pkg/drivetrain"
	"github.com/drivese/drivese/pkg/hub"
	"github.com/spf13/pflag"
)

const defaultPreset = "5mw"

func (a *app) runCommand(fs *pflag.FlagSet, args []string, stdout io.Writer) error {
	cmd := strings.ToLower(args[0])
	rest := args[1:]

	switch cmd {
	case "size4pt", "size3pt", "hub":
		input, _ := fs.GetString("input")
		return a.sizeOne(cmd, rest, input, stdout)
	case "batch":
		if len(rest) == 0 {
			return errors.New("no presets provided")
		}
		return a.batch(rest, stdout)
	case "runs":
		asm, _ := fs.GetString("assembly")
		preset, _ := fs.GetString("preset")
		limit, _ := fs.GetInt("limit")
		return a.listRuns(storage.Filter{Assembly: core.Assembly(asm), Preset: preset, Limit: limit}, stdout)
	case "show":
		if len(rest) == 0 {
			return errors.New("no run ID provided")
		}
		return a.showRun(rest[0], stdout)
	case "serve":
		return a.serve()
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

var sizeCommands = map[string]string{
	"size4pt": worker.CmdSize4pt,
	"size3pt": worker.CmdSize3pt,
	"hub":     worker.CmdHub,
}

func (a *app) sizeOne(cmd string, args []string, inputPath string, stdout io.Writer) error {
	e := dispatcher.Event{Command: sizeCommands[cmd], Args: args}
	if inputPath != "" {
		payload, err := os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		e.Payload = payload
	} else if len(args) == 0 {
		e.Args = []string{defaultPreset}
	}

	result, err := a.Dispatcher.Dispatch(e)
	if err != nil {
		return err
	}
	return writeJSON(stdout, result)
}

// batch queues every assembly for each preset, drains the queues, then summarizes the
// stored runs.
func (a *app) batch(presets []string, stdout io.Writer) error {
	queued := 0
	for _, preset := range presets {
		for _, cmd := range []string{worker.CmdBatch4pt, worker.CmdBatch3pt, worker.CmdBatchHub} {
			if _, err := a.Dispatcher.Dispatch(dispatcher.Event{Command: cmd, Args: []string{preset}}); err != nil {
				return fmt.Errorf("queueing %s %s: %w", cmd, preset, err)
			}
			queued++
		}
	}
	a.Logger.Info("Batch queued", "presets", presets, "commands", queued)

	ctx, cancel := shutdownContext()
	defer cancel()
	if err := a.Dispatcher.Close(ctx); err != nil {
		return err
	}

	runs, err := a.Backend.ListRuns(storage.Filter{Limit: queued})
	if err != nil {
		return err
	}
	if err := printRuns(stdout, runs); err != nil {
		return err
	}
	if len(runs) < queued {
		fmt.Fprintf(stdout, "%d of %d runs failed, see log for details\n", queued-len(runs), queued)
	}

	if exp, ok := a.Backend.(storage.Exporter); ok && len(runs) > 0 {
		if _, err := exp.Export(); err != nil {
			return fmt.Errorf("exporting runs: %w", err)
		}
		fmt.Fprintf(stdout, "exported to %s\n", exp.GetExportedFilePath())
	}
	return nil
}

func (a *app) listRuns(f storage.Filter, stdout io.Writer) error {
	runs, err := a.Backend.ListRuns(f)
	if err != nil {
		return err
	}
	return printRuns(stdout, runs)
}

func (a *app) showRun(id string, stdout io.Writer) error {
	run, err := a.Backend.GetRun(id)
	if err != nil {
		return err
	}
	return writeJSON(stdout, run)
}

func printRuns(w io.Writer, runs []core.Run) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tASSEMBLY\tPRESET\tMASS (kg)\tCOST (USD)\tFINISHED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%.0f\t%s\n",
			r.ID, r.Assembly, r.Preset, r.TotalMass, r.TotalCost, r.FinishedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func printPresets(w io.Writer) {
	fmt.Fprintf(w, "drivetrain: %s\n", strings.Join(drivetrain.PresetNames(), ", "))
	fmt.Fprintf(w, "hub:        %s\n", strings.Join(hub.PresetNames(), ", "))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
