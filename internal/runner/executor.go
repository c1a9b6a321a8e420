package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/signalnine/streamcheck/internal/ctxlog"
	"github.com/signalnine/streamcheck/internal/docker"
	"github.com/signalnine/streamcheck/internal/result"
)

// Execution is what one benchmark process left behind.
type Execution struct {
	Output   []byte
	ExitCode int
	Duration time.Duration
}

// Executor launches the benchmark once with the given arguments and waits for
// it. An error means the process could not be launched or waited on; a
// non-zero exit is reported through Execution.ExitCode.
type Executor interface {
	Execute(ctx context.Context, args []string) (*Execution, error)
}

// LocalExecutor runs the benchmark binary on this host.
type LocalExecutor struct {
	Path string
	Env  map[string]string
}

func (e *LocalExecutor) Execute(ctx context.Context, args []string) (*Execution, error) {
	cmd := exec.CommandContext(ctx, e.Path, args...)
	cmd.Env = os.Environ()
	for k, v := range e.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	start := time.Now()
	out, err := cmd.CombinedOutput()
	ex := &Execution{Output: out, Duration: time.Since(start)}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			ex.ExitCode = exitErr.ExitCode()
			return ex, nil
		}
		return nil, fmt.Errorf("launching %s: %w", e.Path, err)
	}
	return ex, nil
}

// ContainerExecutor runs the benchmark inside a container image that ships
// UHD, with host networking and device access.
type ContainerExecutor struct {
	Image  string
	Path   string
	Env    map[string]string
	Mounts []docker.Mount
}

func (e *ContainerExecutor) Execute(ctx context.Context, args []string) (*Execution, error) {
	res, err := docker.RunContainer(ctx, &docker.RunOpts{
		Image:       e.Image,
		Command:     append([]string{e.Path}, args...),
		Env:         e.Env,
		Mounts:      e.Mounts,
		HostNetwork: true,
		Privileged:  true,
	})
	if err != nil {
		return nil, err
	}
	return &Execution{Output: res.Output, ExitCode: res.ExitCode, Duration: res.Duration}, nil
}

// trialLogger keeps each trial's raw output next to the scenario record.
type trialLogger struct {
	next  Executor
	dir   string
	trial int
}

// WithTrialLogs wraps ex so the output of the Nth call lands in trial-N.log
// under dir.
func WithTrialLogs(ex Executor, dir string) Executor {
	return &trialLogger{next: ex, dir: dir}
}

func (l *trialLogger) Execute(ctx context.Context, args []string) (*Execution, error) {
	l.trial++
	res, err := l.next.Execute(ctx, args)
	if res != nil {
		path := result.TrialLogPath(l.dir, l.trial)
		if werr := writeTrialLog(l.dir, path, res.Output); werr != nil {
			ctxlog.FromContext(ctx).Warn("writing trial log", "path", path, "error", werr)
		}
	}
	return res, err
}

func writeTrialLog(dir, path string, output []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, output, 0o644)
}
