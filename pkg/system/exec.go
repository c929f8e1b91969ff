package system

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Command describes one synchronous child-process invocation
type Command struct {
	Path  string
	Args  []string
	Dir   string
	Stdin string
}

// String renders the command line for messages
func (c Command) String() string {
	parts := append([]string{c.Path}, c.Args...)
	for i, p := range parts {
		if strings.ContainsAny(p, " \t") {
			parts[i] = `"` + p + `"`
		}
	}
	return strings.Join(parts, " ")
}

// Result holds the captured output of a finished process
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Output returns stderr, or stdout when stderr is empty
func (r *Result) Output() string {
	if strings.TrimSpace(r.Stderr) != "" {
		return r.Stderr
	}
	return r.Stdout
}

// Combined returns stdout followed by stderr
func (r *Result) Combined() string {
	return r.Stdout + r.Stderr
}

// Runner executes external tools. A non-zero exit is reported through Result.ExitCode, not
// through the error; the error is reserved for processes that could not be started or were
// cancelled.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner runs commands with os/exec, inheriting the parent environment plus ExtraEnv
type ExecRunner struct {
	ExtraEnv []string
}

// NewExecRunner creates a runner. When javaHome is set, JAVA_HOME is exported to every child.
func NewExecRunner(javaHome string) *ExecRunner {
	r := &ExecRunner{}
	if javaHome != "" {
		r.ExtraEnv = append(r.ExtraEnv, "JAVA_HOME="+javaHome)
	}
	return r
}

// Run implements Runner
func (r *ExecRunner) Run(ctx context.Context, c Command) (*Result, error) {
	name, args := shellWrap(runtime.GOOS, c.Path, c.Args)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), r.ExtraEnv...)
	if c.Stdin != "" {
		cmd.Stdin = strings.NewReader(c.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if ctx.Err() != nil {
		result.ExitCode = -1
		return result, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("failed to start %s: %w", c.Path, err)
	}
	return result, nil
}

// shellWrap routes .bat/.cmd shims through cmd.exe on Windows hosts; elsewhere commands run
// without a shell.
func shellWrap(goos, path string, args []string) (string, []string) {
	if goos != "windows" {
		return path, args
	}
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".bat") || strings.HasSuffix(lower, ".cmd") {
		return "cmd", append([]string{"/c", path}, args...)
	}
	return path, args
}

// ExecutableName appends the host-specific suffix to a tool name. shim selects ".bat" over
// ".exe" on Windows.
func ExecutableName(name string, shim bool) string {
	if runtime.GOOS != "windows" {
		return name
	}
	if shim {
		return name + ".bat"
	}
	return name + ".exe"
}
