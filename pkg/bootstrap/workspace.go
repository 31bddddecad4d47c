package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hl7fileprocessor/internal/config"
	"hl7fileprocessor/internal/constants"
	"hl7fileprocessor/internal/logger"
	"hl7fileprocessor/internal/patient"
	"hl7fileprocessor/internal/spreadsheet"
)

const sampleSheetName = "Patients"

// SampleRows are the records written to a freshly seeded input folder.
var SampleRows = [][]interface{}{
	{"P001", "Alice", "Smith", time.Date(1985, time.January, 15, 0, 0, 0, 0, time.UTC), patient.GenderFemale},
	{"P002", "Bob", "Johnson", time.Date(1979, time.August, 2, 0, 0, 0, 0, time.UTC), patient.GenderMale},
	{"P003", "Carol", "Diaz", time.Date(1993, time.December, 21, 0, 0, 0, 0, time.UTC), patient.GenderFemale},
}

// Workspace prepares the folders the pipeline works in.
type Workspace struct {
	processing config.ProcessingConfig
	bootstrap  config.BootstrapConfig
	logger     logger.Logger
}

func NewWorkspace(processing config.ProcessingConfig, bootstrap config.BootstrapConfig, log logger.Logger) *Workspace {
	return &Workspace{
		processing: processing,
		bootstrap:  bootstrap,
		logger:     log,
	}
}

// Prepare creates the input and output folders. When seeding is enabled
// and the input folder holds no spreadsheet yet, a sample workbook is
// written so a first run has something to process.
func (w *Workspace) Prepare(ctx context.Context) error {
	for _, dir := range []string{w.processing.InputFolder, w.processing.OutputFolder} {
		if err := os.MkdirAll(dir, constants.DirPerm); err != nil {
			return fmt.Errorf("failed to create folder %s: %w", dir, err)
		}
	}

	if !w.bootstrap.SeedSample {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	present, err := hasSpreadsheet(w.processing.InputFolder)
	if err != nil {
		return err
	}
	if present {
		return nil
	}

	name := w.bootstrap.SampleFileName
	if name == "" {
		name = constants.DefaultSampleFile
	}
	path := filepath.Join(w.processing.InputFolder, name)

	if err := spreadsheet.WriteWorkbook(path, sampleSheetName, patient.Header, SampleRows); err != nil {
		return fmt.Errorf("failed to write sample workbook: %w", err)
	}

	w.logger.Infow("Seeded sample workbook", "path", path, "rows", len(SampleRows))
	return nil
}

func hasSpreadsheet(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("failed to list input folder %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.EqualFold(filepath.Ext(entry.Name()), constants.SpreadsheetExtension) {
			return true, nil
		}
	}
	return false, nil
}
