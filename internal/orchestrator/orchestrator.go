// Package orchestrator builds and launches the Valgrind child process,
// manages stdio redirection, enforces expected exit semantics, and
// disables ASLR where possible.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"runtime"
	"time"

	apperr "github.com/vgbench/runner/pkg/errors"
	"github.com/vgbench/runner/pkg/utils"
)

// StdioKind tags which mode a stream is configured with.
type StdioKind int

const (
	StdioInherit StdioKind = iota
	StdioNull
	StdioFile
	StdioPipe
	// StdioSetup pipes the named stream of a concurrently-run setup child
	// into the benchmark's stdin. Only valid for stdin.
	StdioSetup
)

// SetupStream selects which stream of the setup child feeds the
// benchmark's stdin under StdioSetup.
type SetupStream int

const (
	SetupStdout SetupStream = iota
	SetupStderr
)

// Stdio configures one of a child's three standard streams.
type Stdio struct {
	Kind        StdioKind
	Path        string      // StdioFile
	SetupStream SetupStream // StdioSetup
}

// ExitWithVariant tags which member of ExitWith is active.
type ExitWithVariant int

const (
	ExitSuccess ExitWithVariant = iota
	ExitFailure
	ExitCode
)

// ExitWith is the expected exit-status configuration for a launched
// command; mismatch is a fatal BenchLaunchError.
type ExitWith struct {
	Variant ExitWithVariant
	Code    int // only meaningful when Variant == ExitCode
}

// Matches reports whether the observed exit code satisfies e.
func (e ExitWith) Matches(code int) bool {
	switch e.Variant {
	case ExitSuccess:
		return code == 0
	case ExitFailure:
		return code != 0
	case ExitCode:
		return code == e.Code
	default:
		return code == 0
	}
}

// Readiness configures the optional delay before launching the measured
// command.
type Readiness struct {
	Duration     time.Duration // zero disables the fixed-duration predicate
	TCPAddr      string
	UDPAddr      string
	PathExists   string
	PollInterval time.Duration
	Timeout      time.Duration
}

func (r Readiness) configured() bool {
	return r.Duration > 0 || r.TCPAddr != "" || r.UDPAddr != "" || r.PathExists != ""
}

// Spec describes one Valgrind child invocation.
type Spec struct {
	Tool        string // --tool=<id>
	ToolArgs    []string
	Executable  string
	UserArgs    []string
	Env         []string
	Dir         string // working directory for the measured child, empty inherits the runner's
	ValgrindBin string
	AllowASLR   bool
	Stdin       Stdio
	Stdout      Stdio
	Stderr      Stdio
	ExitWith    ExitWith
	Readiness   Readiness
	SetupCmd    *exec.Cmd // the already-configured setup child for StdioSetup
}

// Result reports a completed invocation.
type Result struct {
	ExitCode int
}

// BuildArgs assembles the full argv passed to the wrapped launcher,
// following the convention: `--tool=<id>`, assembled tool arguments,
// executable path, user arguments.
func (s *Spec) BuildArgs() []string {
	args := []string{fmt.Sprintf("--tool=%s", s.Tool)}
	args = append(args, s.ToolArgs...)
	args = append(args, s.Executable)
	args = append(args, s.UserArgs...)
	return args
}

// Launcher returns the program name and leading wrapper arguments used to
// disable ASLR. When allowASLR is true or the platform has no known
// wrapper, valgrind is launched directly.
func Launcher(valgrindBin string, allowASLR bool) (string, []string) {
	if allowASLR {
		return valgrindBin, nil
	}
	switch runtime.GOOS {
	case "linux":
		return "setarch", []string{runtime.GOARCH, "-R", valgrindBin}
	case "freebsd":
		return "proccontrol", []string{"-m", "aslr", "-s", "disable", valgrindBin}
	default:
		return valgrindBin, nil
	}
}

// Run launches the configured Valgrind child, waits for the readiness
// predicate if configured, then blocks until the child exits and
// validates its exit status.
func Run(ctx context.Context, s *Spec, logger utils.Logger) (*Result, error) {
	if s.Readiness.configured() {
		if err := waitReady(ctx, s.Readiness); err != nil {
			if s.SetupCmd != nil && s.SetupCmd.Process != nil {
				_ = s.SetupCmd.Process.Kill()
			}
			return nil, err
		}
	}

	program, wrapperArgs := Launcher(s.ValgrindBin, s.AllowASLR)
	args := append(wrapperArgs, s.BuildArgs()...)

	cmd := exec.CommandContext(ctx, program, args...)
	if len(s.Env) > 0 {
		cmd.Env = append(os.Environ(), s.Env...)
	}
	cmd.Dir = s.Dir

	var cleanup []io.Closer
	defer func() {
		for _, c := range cleanup {
			_ = c.Close()
		}
	}()

	if err := attachStdio(cmd, s, &cleanup); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Debug("launching %s %v", program, args)
	}

	if err := cmd.Start(); err != nil {
		return nil, apperr.Wrap(apperr.CodeLaunchError, "failed to launch valgrind", err)
	}

	err := cmd.Wait()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return nil, apperr.Wrap(apperr.CodeLaunchError, "valgrind child failed to run to completion", err)
		}
	}

	if !s.ExitWith.Matches(exitCode) {
		return nil, apperr.New(apperr.CodeBenchLaunchError,
			fmt.Sprintf("benchmark child exited with code %d, expected %s", exitCode, describeExitWith(s.ExitWith)))
	}

	return &Result{ExitCode: exitCode}, nil
}

func describeExitWith(e ExitWith) string {
	switch e.Variant {
	case ExitSuccess:
		return "success"
	case ExitFailure:
		return "failure"
	default:
		return fmt.Sprintf("code %d", e.Code)
	}
}

func attachStdio(cmd *exec.Cmd, s *Spec, cleanup *[]io.Closer) error {
	attachOne := func(kind StdioKind, path string, assign func(io.Reader), assignW func(io.Writer), isWriter bool) error {
		switch kind {
		case StdioInherit:
			if isWriter {
				assignW(os.Stdout)
			} else {
				assign(os.Stdin)
			}
		case StdioNull:
			dn, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
			if err != nil {
				return apperr.Wrap(apperr.CodeLaunchError, "failed to open null device", err)
			}
			*cleanup = append(*cleanup, dn)
			if isWriter {
				assignW(dn)
			} else {
				assign(dn)
			}
		case StdioFile:
			if isWriter {
				f, err := os.Create(path)
				if err != nil {
					return apperr.Wrap(apperr.CodeLaunchError, "failed to create stdio file", err)
				}
				*cleanup = append(*cleanup, f)
				assignW(f)
			} else {
				f, err := os.Open(path)
				if err != nil {
					return apperr.Wrap(apperr.CodeLaunchError, "failed to open stdio file", err)
				}
				*cleanup = append(*cleanup, f)
				assign(f)
			}
		}
		return nil
	}

	if s.Stdin.Kind == StdioSetup {
		r, err := setupPipe(s)
		if err != nil {
			return err
		}
		cmd.Stdin = r
	} else if err := attachOne(s.Stdin.Kind, s.Stdin.Path, func(r io.Reader) { cmd.Stdin = r }, nil, false); err != nil {
		return err
	}

	if err := attachOne(s.Stdout.Kind, s.Stdout.Path, nil, func(w io.Writer) { cmd.Stdout = w }, true); err != nil {
		return err
	}
	if err := attachOne(s.Stderr.Kind, s.Stderr.Path, nil, func(w io.Writer) { cmd.Stderr = w }, true); err != nil {
		return err
	}
	return nil
}

// setupPipe starts the setup child and pipes the configured stream into
// a reader the benchmark can consume, running the setup concurrently with
// the measured command.
func setupPipe(s *Spec) (io.Reader, error) {
	if s.SetupCmd == nil {
		return nil, apperr.New(apperr.CodeConfigError, "stdin configured as Setup but no setup command provided")
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeLaunchError, "failed to create setup pipe", err)
	}
	switch s.Stdin.SetupStream {
	case SetupStderr:
		s.SetupCmd.Stderr = w
	default:
		s.SetupCmd.Stdout = w
	}

	if err := s.SetupCmd.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return nil, apperr.Wrap(apperr.CodeLaunchError, "failed to launch setup child", err)
	}
	// The child holds its own copy of the write end; closing ours lets the
	// benchmark see EOF once the setup exits.
	_ = w.Close()

	go func() { _ = s.SetupCmd.Wait() }()

	return r, nil
}

// waitReady blocks until one of the configured readiness predicates
// succeeds or the timeout elapses.
func waitReady(ctx context.Context, r Readiness) error {
	deadline := time.Now().Add(r.Timeout)
	if r.Timeout <= 0 {
		deadline = time.Now().Add(24 * time.Hour)
	}
	interval := r.PollInterval
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}

	if r.Duration > 0 {
		select {
		case <-time.After(r.Duration):
			return nil
		case <-ctx.Done():
			return apperr.Wrap(apperr.CodeLaunchError, "readiness wait cancelled", ctx.Err())
		}
	}

	for time.Now().Before(deadline) {
		if readinessSatisfied(r) {
			return nil
		}
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return apperr.Wrap(apperr.CodeLaunchError, "readiness wait cancelled", ctx.Err())
		}
	}
	return apperr.New(apperr.CodeLaunchError, "readiness probe timed out")
}

func readinessSatisfied(r Readiness) bool {
	if r.TCPAddr != "" {
		conn, err := net.DialTimeout("tcp", r.TCPAddr, 200*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return true
		}
		return false
	}
	if r.UDPAddr != "" {
		conn, err := net.DialTimeout("udp", r.UDPAddr, 200*time.Millisecond)
		if err != nil {
			return false
		}
		defer conn.Close()
		_, err = conn.Write([]byte{0})
		if err != nil {
			return false
		}
		_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		buf := make([]byte, 1)
		_, err = conn.Read(buf)
		return err == nil
	}
	if r.PathExists != "" {
		_, err := os.Stat(r.PathExists)
		return err == nil
	}
	return false
}
