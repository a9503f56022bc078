package orchestrator

import (
	"net"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitWith_Matches(t *testing.T) {
	assert.True(t, ExitWith{Variant: ExitSuccess}.Matches(0))
	assert.False(t, ExitWith{Variant: ExitSuccess}.Matches(1))
	assert.True(t, ExitWith{Variant: ExitFailure}.Matches(1))
	assert.False(t, ExitWith{Variant: ExitFailure}.Matches(0))
	assert.True(t, ExitWith{Variant: ExitCode, Code: 7}.Matches(7))
	assert.False(t, ExitWith{Variant: ExitCode, Code: 7}.Matches(8))
}

func TestBuildArgs_Order(t *testing.T) {
	s := &Spec{
		Tool:       "callgrind",
		ToolArgs:   []string{"--callgrind-out-file=out.out"},
		Executable: "/bin/bench",
		UserArgs:   []string{"--bench", "foo"},
	}
	args := s.BuildArgs()
	assert.Equal(t, []string{"--tool=callgrind", "--callgrind-out-file=out.out", "/bin/bench", "--bench", "foo"}, args)
}

func TestLauncher_AllowASLRSkipsWrapper(t *testing.T) {
	prog, args := Launcher("/usr/bin/valgrind", true)
	assert.Equal(t, "/usr/bin/valgrind", prog)
	assert.Empty(t, args)
}

func TestLauncher_LinuxUsesSetarch(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux-specific wrapper")
	}
	prog, args := Launcher("/usr/bin/valgrind", false)
	assert.Equal(t, "setarch", prog)
	assert.Contains(t, args, "/usr/bin/valgrind")
	assert.Contains(t, args, "-R")
}

func TestReadinessSatisfied_PathExists(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "ready")
	r := Readiness{PathExists: p}
	assert.False(t, readinessSatisfied(r))
	require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	assert.True(t, readinessSatisfied(r))
}

func TestReadinessSatisfied_TCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	r := Readiness{TCPAddr: ln.Addr().String()}
	assert.True(t, readinessSatisfied(r))

	ln.Close()
	r2 := Readiness{TCPAddr: ln.Addr().String()}
	assert.False(t, readinessSatisfied(r2))
}

func TestReadiness_Configured(t *testing.T) {
	assert.False(t, Readiness{}.configured())
	assert.True(t, Readiness{Duration: time.Millisecond}.configured())
	assert.True(t, Readiness{TCPAddr: "x"}.configured())
}
