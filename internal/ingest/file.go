package ingest

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"hl7fileprocessor/internal/constants"
	"hl7fileprocessor/internal/patient"
	apperrors "hl7fileprocessor/pkg/errors"
	"hl7fileprocessor/pkg/logging"
	"hl7fileprocessor/pkg/metrics"
	"hl7fileprocessor/pkg/stamp"
	"hl7fileprocessor/pkg/tracing"
)

// processFile reads, converts and archives one spreadsheet. It returns
// the number of messages written, which can be non-zero on failure: files
// already written are left in the output folder.
func (p *Pipeline) processFile(tickCtx context.Context, path string) (written int, err error) {
	ctx := logging.WithFile(tickCtx, path)
	if p.cfg.FileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.FileTimeout)
		defer cancel()
	}

	ctx, span := p.tracer.Start(ctx, "ingest.file", trace.WithAttributes(attribute.String("file", path)))
	started := time.Now()

	p.logger.InfowCtx(ctx, "Processing file")

	defer func() {
		if r := recover(); r != nil {
			err = apperrors.RecoverPanic(r)
			p.logFailure(tickCtx, ctx, "Panic while processing file", err)
		}

		status := metrics.StatusProcessed
		switch {
		case err == nil:
		case apperrors.IsValidation(err):
			status = metrics.StatusRejected
		default:
			status = metrics.StatusFailed
		}

		if !isCancellation(tickCtx, err) {
			metrics.IncFile(status)
			metrics.ObserveFileDuration(time.Since(started), status)
		}
		span.SetAttributes(attribute.Int("messages_written", written))
		tracing.EndSpan(span, err)
	}()

	rows, err := p.readRows(ctx, path)
	if err != nil {
		p.logFailure(tickCtx, ctx, "Failed to read file", err)
		return 0, err
	}

	written, err = p.writeMessages(ctx, rows)
	if err != nil {
		p.logFailure(tickCtx, ctx, "Failed to write messages", err, "messages_written", written)
		return written, err
	}

	archived, err := p.archive(path)
	if err != nil {
		p.logFailure(tickCtx, ctx, "Failed to archive file", err, "messages_written", written)
		return written, err
	}

	p.logger.InfowCtx(ctx, "Processed file",
		"rows", len(rows),
		"messages_written", written,
		"archived_to", archived,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return written, nil
}

func (p *Pipeline) logFailure(tickCtx, ctx context.Context, msg string, err error, keysAndValues ...interface{}) {
	if isCancellation(tickCtx, err) {
		return
	}

	fields := []interface{}{"error", err, "code", apperrors.Code(err)}
	details := apperrors.Details(err)
	for _, key := range []string{"row", "field", "value", "reason"} {
		if v, ok := details[key]; ok {
			fields = append(fields, key, v)
		}
	}
	p.logger.ErrorwCtx(ctx, msg, append(fields, keysAndValues...)...)
}

// readRows validates every row before any message is produced, so a
// single bad row rejects the file as a whole.
func (p *Pipeline) readRows(ctx context.Context, path string) ([]patient.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.ErrIO.
			WithMessage("failed to open spreadsheet").
			WithCause(err)
	}
	defer f.Close()

	raws, err := p.source.ReadRows(ctx, f)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, apperrors.ErrIO.
			WithMessage("failed to read spreadsheet").
			WithCause(err)
	}

	rows := make([]patient.Row, 0, len(raws))
	for _, raw := range raws {
		row, err := patient.ValidateRow(raw)
		if err != nil {
			return nil, validationFailure(err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func validationFailure(err error) error {
	appErr := apperrors.ErrValidation.WithMessage(err.Error()).WithCause(err)

	var vErr *patient.ValidationError
	if errors.As(err, &vErr) {
		metrics.IncRowRejected(vErr.Field)
		appErr = appErr.
			WithDetail("row", vErr.Row).
			WithDetail("field", vErr.Field).
			WithDetail("reason", vErr.Reason)
		if vErr.Value != "" {
			appErr = appErr.WithDetail("value", vErr.Value)
		}
	}

	return appErr
}

// writeMessages converts and writes all rows concurrently. The first
// failure cancels the remaining writes.
func (p *Pipeline) writeMessages(ctx context.Context, rows []patient.Row) (int, error) {
	var written atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for _, row := range rows {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = apperrors.RecoverPanic(r)
				}
			}()

			if err := gctx.Err(); err != nil {
				return err
			}

			msg := p.factory.CreateAdmissionMessage(row)
			if err := p.sink.Write(gctx, msg); err != nil {
				return err
			}

			written.Add(1)
			metrics.IncMessagesWritten()
			return nil
		})
	}

	err := g.Wait()
	return int(written.Load()), err
}

// archive moves a fully processed spreadsheet to
// {input}/processed/{yyyyMMddHHmmssfff}_{name}. An existing destination is
// never overwritten.
func (p *Pipeline) archive(path string) (string, error) {
	dir := filepath.Join(p.cfg.InputFolder, constants.ProcessedDirName)
	if err := os.MkdirAll(dir, constants.DirPerm); err != nil {
		return "", apperrors.ErrIO.
			WithMessage("failed to create archive folder").
			WithCause(err).
			WithDetail("dir", dir)
	}

	dest := filepath.Join(dir, stamp.Millis(p.stamps.Next())+"_"+filepath.Base(path))

	if _, err := os.Lstat(dest); err == nil {
		return "", apperrors.ErrArchiveConflict.WithDetail("destination", dest)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", apperrors.ErrIO.
			WithMessage("failed to inspect archive destination").
			WithCause(err).
			WithDetail("destination", dest)
	}

	if err := os.Rename(path, dest); err != nil {
		return "", apperrors.ErrIO.
			WithMessage("failed to archive spreadsheet").
			WithCause(err).
			WithDetail("destination", dest)
	}

	return dest, nil
}
