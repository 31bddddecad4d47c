// Package sink persists encoded HL7 messages.
package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"hl7fileprocessor/internal/constants"
	"hl7fileprocessor/internal/hl7"
	apperrors "hl7fileprocessor/pkg/errors"
)

type Writer interface {
	Write(ctx context.Context, msg hl7.AdmissionMessage) error
}

// FileSink writes each message as its own file in a directory. A file is
// either fully present under its final name or absent: content goes to a
// temporary file in the same directory first and is renamed into place.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

func (s *FileSink) Dir() string {
	return s.dir
}

func (s *FileSink) Write(ctx context.Context, msg hl7.AdmissionMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if msg.FileName == "" || filepath.Base(msg.FileName) != msg.FileName {
		return apperrors.ErrIO.
			WithMessage(fmt.Sprintf("invalid message file name %q", msg.FileName)).
			WithDetail("file_name", msg.FileName)
	}

	if err := os.MkdirAll(s.dir, constants.DirPerm); err != nil {
		return apperrors.ErrIO.
			WithMessage("failed to create output folder").
			WithCause(err).
			WithDetail("dir", s.dir)
	}

	target := filepath.Join(s.dir, msg.FileName)
	if err := writeAtomic(target, []byte(msg.Content)); err != nil {
		return apperrors.ErrIO.
			WithMessage("failed to write message").
			WithCause(err).
			WithDetail("path", target)
	}

	return nil
}

func writeAtomic(target string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, constants.FilePerm); err != nil {
		return err
	}
	return os.Rename(tmpName, target)
}
