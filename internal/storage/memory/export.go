// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/drivese/drivese/pkg/core"
)

// RunsExport is the root JSON structure
type RunsExport struct {
	Generated string                       `json:"generated"`
	Count     int                          `json:"count"`
	Summary   map[core.Assembly]AsmSummary `json:"summary"`
	Runs      []core.Run                   `json:"runs"`
}

// AsmSummary aggregates the runs of one assembly.
type AsmSummary struct {
	Runs      int     `json:"runs"`
	MeanMass  float64 `json:"meanMass"`
	MeanCost  float64 `json:"meanCost"`
	MaxMass   float64 `json:"maxMass"`
	TotalCost float64 `json:"totalCost"`
}

// Export writes every stored run, in insertion order, to OutputDir and returns the file path.
func (b *Backend) Export() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	export := b.buildExport()

	timestamp := b.now().UTC().Format("20060102_150405")
	filename := fmt.Sprintf("drivese_runs_%s.json", timestamp)
	if b.cfg.CompressOutput {
		filename += ".gz"
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	if b.cfg.CompressOutput {
		err = writeGzipJSON(outputPath, export)
	} else {
		err = writeJSON(outputPath, export)
	}
	if err != nil {
		return "", err
	}

	b.lastExportPath = outputPath
	return outputPath, nil
}

// GetExportedFilePath returns the path of the last export, or "" if none.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

func (b *Backend) buildExport() RunsExport {
	export := RunsExport{
		Generated: b.now().UTC().Format("2006-01-02T15:04:05Z"),
		Count:     len(b.order),
		Summary:   make(map[core.Assembly]AsmSummary),
		Runs:      make([]core.Run, 0, len(b.order)),
	}

	for _, id := range b.order {
		r := b.runs[id]
		export.Runs = append(export.Runs, *r)

		s := export.Summary[r.Assembly]
		s.Runs++
		s.MeanMass += r.TotalMass
		s.TotalCost += r.TotalCost
		if r.TotalMass > s.MaxMass {
			s.MaxMass = r.TotalMass
		}
		export.Summary[r.Assembly] = s
	}

	for asm, s := range export.Summary {
		s.MeanMass /= float64(s.Runs)
		s.MeanCost = s.TotalCost / float64(s.Runs)
		export.Summary[asm] = s
	}

	return export
}

func writeJSON(path string, data RunsExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data RunsExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}
