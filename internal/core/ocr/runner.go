package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, logger *slog.Logger, args ...string) (stdout, stderr []byte, err error)
}

// CommandError is returned by the exec runner when a poppler or tesseract
// binary fails. Stderr is capped.
type CommandError struct {
	Name     string
	ExitCode int // -1 when the process never ran
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.Missing() {
		return fmt.Sprintf("%s: not installed or not on PATH", e.Name)
	}
	if e.Stderr == "" {
		return fmt.Sprintf("%s: exit %d: %v", e.Name, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("%s: exit %d: %s", e.Name, e.ExitCode, e.Stderr)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Missing reports whether the binary could not be found.
func (e *CommandError) Missing() bool { return errors.Is(e.Err, exec.ErrNotFound) }

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, logger *slog.Logger, args ...string) ([]byte, []byte, error) {
	start := time.Now()
	logger.Debug("running command", "cmd_line", strings.Join(append([]string{name}, args...), " "))

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)
	if err == nil {
		logger.Debug("exec ok",
			"cmd", name,
			"duration_ms", dur.Milliseconds(),
			"stdout_bytes", out.Len(),
			"stderr_bytes", errb.Len(),
		)
		return out.Bytes(), errb.Bytes(), nil
	}

	cerr := &CommandError{Name: name, ExitCode: -1, Stderr: truncate(strings.TrimSpace(errb.String()), 512), Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cerr.ExitCode = exitErr.ExitCode()
	}
	logger.Error("exec failed",
		"cmd", name,
		"duration_ms", dur.Milliseconds(),
		"exit_code", cerr.ExitCode,
		"error", err,
		"stderr", truncate(errb.String(), 8<<10), // cap at 8KB
	)
	return out.Bytes(), errb.Bytes(), cerr
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
