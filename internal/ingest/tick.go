package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"hl7fileprocessor/internal/constants"
	apperrors "hl7fileprocessor/pkg/errors"
	"hl7fileprocessor/pkg/logging"
	"hl7fileprocessor/pkg/metrics"
	"hl7fileprocessor/pkg/tracing"
)

const (
	tickStatusOK        = "ok"
	tickStatusError     = "error"
	tickStatusCancelled = "cancelled"
)

type TickReport struct {
	TickID          string        `json:"tick_id"`
	StartedAt       time.Time     `json:"started_at"`
	DurationMs      int64         `json:"duration_ms"`
	FilesFound      int           `json:"files_found"`
	FilesArchived   int           `json:"files_archived"`
	FilesFailed     int           `json:"files_failed"`
	MessagesWritten int           `json:"messages_written"`
	Failures        []FileFailure `json:"failures,omitempty"`
	Cancelled       bool          `json:"cancelled"`
	Error           string        `json:"error,omitempty"`
}

// FileFailure is what an operator needs to fix a rejected spreadsheet.
type FileFailure struct {
	File  string `json:"file"`
	Code  string `json:"code"`
	Row   int    `json:"row,omitempty"`
	Field string `json:"field,omitempty"`
	Error string `json:"error"`
}

// Tick processes every pending spreadsheet once, in sorted order. By
// default the first failing file ends the tick and later files wait for
// the next one; with continue_on_error the remaining files are still
// processed and the failures are returned joined.
func (p *Pipeline) Tick(ctx context.Context) (report TickReport, err error) {
	report = TickReport{
		TickID:    uuid.NewString(),
		StartedAt: p.now().UTC(),
	}
	started := time.Now()

	ctx = logging.WithTickID(ctx, report.TickID)
	ctx, span := p.tracer.Start(ctx, "ingest.tick")

	defer func() {
		if r := recover(); r != nil {
			err = apperrors.RecoverPanic(r)
		}

		report.DurationMs = time.Since(started).Milliseconds()
		status := tickStatusOK
		switch {
		case err == nil:
			metrics.SetLastSuccess(report.StartedAt)
		case isCancellation(ctx, err):
			status = tickStatusCancelled
			report.Cancelled = true
		default:
			status = tickStatusError
			report.Error = err.Error()
		}
		metrics.ObserveTick(time.Since(started), status)
		span.SetAttributes(
			attribute.Int("files_found", report.FilesFound),
			attribute.Int("files_archived", report.FilesArchived),
			attribute.Int("messages_written", report.MessagesWritten),
		)
		tracing.EndSpan(span, err)
		p.setLast(report)
	}()

	files, err := p.ListPending()
	if err != nil {
		return report, err
	}
	report.FilesFound = len(files)
	metrics.SetPendingFiles(len(files))

	var failures []error
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		written, err := p.processFile(ctx, path)
		report.MessagesWritten += written

		if err == nil {
			report.FilesArchived++
			continue
		}

		if isCancellation(ctx, err) {
			return report, ctx.Err()
		}

		report.FilesFailed++
		report.Failures = append(report.Failures, newFileFailure(path, err))

		if !p.cfg.ContinueOnError {
			return report, err
		}
		failures = append(failures, err)
	}

	return report, errors.Join(failures...)
}

// ListPending returns the spreadsheets directly under the input folder.
// Subdirectories (the archive among them) and Office lock files are
// skipped. The order is a case-insensitive ordinal sort of the path.
func (p *Pipeline) ListPending() ([]string, error) {
	entries, err := os.ReadDir(p.cfg.InputFolder)
	if err != nil {
		return nil, apperrors.ErrIO.
			WithMessage("failed to list input folder").
			WithCause(err).
			WithDetail("dir", p.cfg.InputFolder)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), constants.SpreadsheetExtension) {
			continue
		}
		if strings.HasPrefix(name, constants.OfficeLockFilePrefix) {
			continue
		}
		files = append(files, filepath.Join(p.cfg.InputFolder, name))
	}

	sort.SliceStable(files, func(i, j int) bool {
		a, b := strings.ToUpper(files[i]), strings.ToUpper(files[j])
		if a != b {
			return a < b
		}
		return files[i] < files[j]
	})

	return files, nil
}

func newFileFailure(path string, err error) FileFailure {
	failure := FileFailure{
		File:  path,
		Code:  apperrors.Code(err),
		Error: err.Error(),
	}

	details := apperrors.Details(err)
	if row, ok := details["row"].(int); ok {
		failure.Row = row
	}
	if field, ok := details["field"].(string); ok {
		failure.Field = field
	}

	return failure
}
