package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// waitDelay bounds how long Run waits for output pipes to close after the process is killed
const waitDelay = 500 * time.Millisecond

// ScriptResult is what osascript left behind: its stdout and exit code
type ScriptResult struct {
	Stdout   string
	ExitCode int
}

// ScriptExecutor runs an AppleScript snippet.
// A non-zero exit is reported in ScriptResult; err is only for failing to run at all.
type ScriptExecutor interface {
	Run(ctx context.Context, script string) (ScriptResult, error)
}

// osascriptExecutor runs scripts with macOS's osascript binary
type osascriptExecutor struct {
	bin     string
	timeout time.Duration
	logger  *zap.Logger
}

// NewScriptExecutor returns an executor backed by osascript.
// Every run is killed after timeout; zero means no limit beyond ctx.
func NewScriptExecutor(timeout time.Duration, logger *zap.Logger) ScriptExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &osascriptExecutor{bin: "osascript", timeout: timeout, logger: logger}
}

func (o *osascriptExecutor) Run(ctx context.Context, script string) (ScriptResult, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, o.bin, "-e", script)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children of osascript can hold the pipes open after the kill
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	// A killed process also surfaces as an ExitError, so check the context first
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ScriptResult{}, fmt.Errorf("%s did not finish: %w", o.bin, ctxErr)
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return ScriptResult{}, fmt.Errorf("failed to start %s: %w", o.bin, err)
	}

	res := ScriptResult{
		Stdout:   strings.ToValidUTF8(stdout.String(), "\uFFFD"),
		ExitCode: cmd.ProcessState.ExitCode(),
	}

	o.logger.Debug("script finished",
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("elapsed", elapsed),
		zap.String("stderr", strings.TrimSpace(stderr.String())))

	return res, nil
}
