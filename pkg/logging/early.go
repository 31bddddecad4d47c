package logging

import (
	"fmt"
	"io"
	"os"
)

// EarlyLog writes to stderr/stdout before the zap logger is configured.
type EarlyLog struct {
	stdout io.Writer
	stderr io.Writer
}

func NewEarlyLog() *EarlyLog {
	return &EarlyLog{stdout: os.Stdout, stderr: os.Stderr}
}

func (l *EarlyLog) Error(msg string, args ...interface{}) {
	fmt.Fprintf(l.stderr, "ERROR: "+msg+"\n", args...)
}

func (l *EarlyLog) Warn(msg string, args ...interface{}) {
	fmt.Fprintf(l.stderr, "WARN: "+msg+"\n", args...)
}

func (l *EarlyLog) Info(msg string, args ...interface{}) {
	fmt.Fprintf(l.stdout, "INFO: "+msg+"\n", args...)
}
