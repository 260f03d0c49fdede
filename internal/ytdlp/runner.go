package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hbomb79/Cadence/pkg/logger"
	goytdlp "github.com/lrstanley/go-ytdlp"
)

var log = logger.Get("YtDlp")

var (
	// ErrTimeout is returned when an invocation is killed for running
	// longer than its Invocation.Timeout.
	ErrTimeout = errors.New("yt-dlp invocation timed out")

	// ErrOutputLimit is returned when an invocation is killed for writing more
	// than Invocation.MaxOutputBytes to either stdout or stderr.
	ErrOutputLimit = errors.New("yt-dlp output exceeded capture limit")
)

const waitDelay = 2 * time.Second

type (
	// Invocation describes a single execution of the external tool. Command
	// carries the option flags (a bare command is used when nil) and Args
	// the trailing positional arguments. Everything is passed to the process
	// as a discrete argument vector; no shell is ever involved.
	Invocation struct {
		Command        *goytdlp.Command
		Args           []string
		Timeout        time.Duration
		MaxOutputBytes int64
	}

	// Output is the captured result of a completed invocation.
	Output struct {
		Stdout   []byte
		Stderr   []byte
		ExitCode int
	}

	// Runner abstracts process execution so that callers can be
	// exercised without spawning real processes.
	Runner interface {
		Run(ctx context.Context, inv Invocation) (*Output, error)
	}

	// ExitError is returned when the tool ran but exited with a
	// non-zero status.
	ExitError struct {
		ExitCode int
		Stderr   string
		Err      error
	}

	// ExecRunner runs the tool binary, building each process from the
	// invocation's go-ytdlp command.
	ExecRunner struct {
		binary string
	}
)

func (e *ExitError) Error() string {
	return fmt.Sprintf("yt-dlp exited with status %d: %s", e.ExitCode, e.Stderr)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Argv returns the arguments, excluding the executable, that this
// invocation passes to the tool.
func (inv Invocation) Argv() []string {
	return inv.build(context.Background(), DefaultBinary).Args[1:]
}

func (inv Invocation) build(ctx context.Context, binary string) *exec.Cmd {
	command := inv.Command
	if command == nil {
		command = goytdlp.New()
	}

	return command.SetExecutable(binary).BuildCommand(ctx, inv.Args...)
}

// NewExecRunner creates a runner for the binary at the path (or $PATH
// lookup name) given in the config.
func NewExecRunner(config Config) *ExecRunner {
	return &ExecRunner{binary: config.Binary()}
}

// Binary returns the name or path of the executable this runner invokes.
func (runner *ExecRunner) Binary() string { return runner.binary }

// Available reports whether the tool binary can currently be found.
func (runner *ExecRunner) Available() bool {
	_, err := exec.LookPath(runner.binary)
	return err == nil
}

// Run executes the tool and blocks until it exits, is killed because the
// invocation timeout elapsed (ErrTimeout), is killed because it produced
// too much output (ErrOutputLimit), or the parent context is cancelled.
func (runner *ExecRunner) Run(ctx context.Context, inv Invocation) (*Output, error) {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if inv.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	overflowed := &atomic.Bool{}
	onOverflow := func() {
		overflowed.Store(true)
		cancel()
	}
	stdout := &cappedBuffer{limit: inv.MaxOutputBytes, onOverflow: onOverflow}
	stderr := &cappedBuffer{limit: inv.MaxOutputBytes, onOverflow: onOverflow}

	cmd := inv.build(runCtx, runner.binary)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	started := time.Now()
	err := cmd.Run()
	log.Debugf("%s finished after %s (err=%v)\n", runner.binary, time.Since(started).Round(time.Millisecond), err)

	output := &Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes(), ExitCode: cmd.ProcessState.ExitCode()}
	if err == nil {
		return output, nil
	}

	switch {
	case overflowed.Load():
		return output, fmt.Errorf("%w (limit %d bytes)", ErrOutputLimit, inv.MaxOutputBytes)
	case ctx.Err() != nil:
		return output, ctx.Err()
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return output, fmt.Errorf("%w after %s", ErrTimeout, inv.Timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return output, &ExitError{
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimSpace(string(output.Stderr)),
			Err:      err,
		}
	}

	return output, fmt.Errorf("failed to run %s: %w", runner.binary, err)
}

// cappedBuffer collects process output up to a limit. Once the limit is
// exceeded the overflow callback fires (once) and further writes fail.
type cappedBuffer struct {
	buf        bytes.Buffer
	limit      int64
	onOverflow func()
	exceeded   bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if b.exceeded {
		return 0, ErrOutputLimit
	}

	if b.limit > 0 && int64(b.buf.Len()+len(p)) > b.limit {
		b.buf.Write(p[:b.limit-int64(b.buf.Len())])
		b.exceeded = true
		b.onOverflow()
		return 0, ErrOutputLimit
	}

	return b.buf.Write(p)
}

func (b *cappedBuffer) Bytes() []byte { return b.buf.Bytes() }
