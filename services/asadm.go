// ABOUTME: Diagnostic-command runner executing asadm against collectinfo files.
// ABOUTME: Captures stdout/stderr/exit status per command; failures are recorded, not fatal.

package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CommandResult is the captured output of one diagnostic command.
type CommandResult struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
	Success  bool
}

// AsadmRunner executes asadm in collectinfo mode against a local file.
type AsadmRunner struct {
	binary string
}

// NewAsadmRunner creates a runner for the given asadm binary path.
func NewAsadmRunner(binary string) *AsadmRunner {
	if binary == "" {
		binary = "asadm"
	}
	return &AsadmRunner{binary: binary}
}

// Run executes one command against the collectinfo file:
//
//	asadm -c -f <file> -e <command>
//
// A non-zero exit is reported in the result, not as an error; an error is
// only returned when the process could not run at all.
func (r *AsadmRunner) Run(ctx context.Context, filePath, command string) (CommandResult, error) {
	result := CommandResult{Command: command}

	cmd := exec.CommandContext(ctx, r.binary, "-c", "-f", filePath, "-e", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return result, fmt.Errorf("running %s: %w", r.binary, err)
		}
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	result.Success = true
	return result, nil
}

// Available probes the asadm binary and returns its version string.
func (r *AsadmRunner) Available(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, r.binary, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("asadm not available: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// CombineResults merges per-command outputs into one text block for the
// structured parser, marking failed sections so the parser can report gaps.
func CombineResults(results []CommandResult) string {
	var sb strings.Builder
	for _, res := range results {
		if res.Success {
			fmt.Fprintf(&sb, "\n=== %s ===\n%s\n", strings.ToUpper(res.Command), res.Stdout)
		} else {
			fmt.Fprintf(&sb, "\n=== %s (FAILED) ===\nError: %s\n", strings.ToUpper(res.Command), res.Stderr)
		}
	}
	return sb.String()
}
