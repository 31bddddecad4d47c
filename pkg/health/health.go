package health

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// ErrDegraded marks a check failure that does not make the service
// unhealthy on its own.
var ErrDegraded = errors.New("degraded")

type Checker interface {
	Check(ctx context.Context) error
	Name() string
}

type Health struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

type CheckResult struct {
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type CheckerRegistry struct {
	checkers []Checker
}

func NewCheckerRegistry() *CheckerRegistry {
	return &CheckerRegistry{
		checkers: make([]Checker, 0),
	}
}

func (r *CheckerRegistry) Register(checker Checker) {
	r.checkers = append(r.checkers, checker)
}

func (r *CheckerRegistry) Check(ctx context.Context) Health {
	results := make(map[string]CheckResult)
	allHealthy := true
	anyDegraded := false

	for _, checker := range r.checkers {
		err := checker.Check(ctx)
		result := CheckResult{
			Timestamp: time.Now(),
		}

		switch {
		case err == nil:
			result.Status = StatusHealthy
		case errors.Is(err, ErrDegraded):
			result.Status = StatusDegraded
			result.Message = err.Error()
			anyDegraded = true
		default:
			result.Status = StatusUnhealthy
			result.Message = err.Error()
			allHealthy = false
		}

		results[checker.Name()] = result
	}

	overallStatus := StatusHealthy
	if !allHealthy {
		overallStatus = StatusUnhealthy
	} else if anyDegraded {
		overallStatus = StatusDegraded
	}

	return Health{
		Status:    overallStatus,
		Timestamp: time.Now(),
		Checks:    results,
	}
}

// DirectoryChecker verifies that a folder exists and, optionally, that
// files can be created in it.
type DirectoryChecker struct {
	name     string
	path     string
	writable bool
}

func NewDirectoryChecker(name, path string, writable bool) *DirectoryChecker {
	return &DirectoryChecker{name: name, path: path, writable: writable}
}

func (c *DirectoryChecker) Name() string {
	return c.name
}

func (c *DirectoryChecker) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(c.path)
	if err != nil {
		return fmt.Errorf("%s stat failed: %w", c.path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", c.path)
	}

	if !c.writable {
		return nil
	}

	tmp, err := os.CreateTemp(c.path, ".health-*")
	if err != nil {
		return fmt.Errorf("%s is not writable: %w", c.path, err)
	}
	name := tmp.Name()
	tmp.Close()
	return os.Remove(name)
}

// TickChecker reports degraded when the last successful tick is older
// than maxAge. Before the first tick it reports healthy.
type TickChecker struct {
	lastSuccess func() (time.Time, bool)
	maxAge      time.Duration
	now         func() time.Time
}

func NewTickChecker(lastSuccess func() (time.Time, bool), maxAge time.Duration) *TickChecker {
	return &TickChecker{lastSuccess: lastSuccess, maxAge: maxAge, now: time.Now}
}

func (c *TickChecker) Name() string {
	return "ingest"
}

func (c *TickChecker) Check(ctx context.Context) error {
	last, ok := c.lastSuccess()
	if !ok {
		return nil
	}
	if age := c.now().Sub(last); age > c.maxAge {
		return fmt.Errorf("%w: last successful tick %s ago", ErrDegraded, age.Truncate(time.Second))
	}
	return nil
}
