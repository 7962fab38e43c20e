package provision

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kroekerlabs.dev/chyme/postscript/internal/core"
)

type recordedRun struct {
	Cmd string
	Cwd string
}

// recordingRunner stands in for the shell runner so provisioning can be
// verified without touching a real package manager.
type recordingRunner struct {
	runs []recordedRun
}

func (r *recordingRunner) Run(_ context.Context, cmd string, args string, cwd string) error {
	r.runs = append(r.runs, recordedRun{cmd, cwd})
	return nil
}

func testWorkspace(t *testing.T, dependencySpec string) *Workspace {
	t.Helper()

	profileDir := t.TempDir()
	cachePath := filepath.Join(t.TempDir(), "file-1234.mkv")

	ws, err := NewWorkspace(profileDir, &core.TaskResult{
		FinalCachePath: cachePath,
		LibraryID:      "5",
	}, dependencySpec)
	require.NoError(t, err)
	return ws
}

func TestNewWorkspaceLayout(t *testing.T) {
	profileDir := t.TempDir()
	taskDir := t.TempDir()

	ws, err := NewWorkspace(profileDir, &core.TaskResult{
		FinalCachePath: filepath.Join(taskDir, "file-1234.mkv"),
		LibraryID:      "5",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(taskDir, "postprocessor_script"), ws.ScratchDir)
	assert.Equal(t, filepath.Join(profileDir, ".dependency_cache", "5"), ws.CacheDir)
	assert.DirExists(t, ws.ScratchDir)

	// The cache root is only created once a provisioner needs it
	assert.NoDirExists(t, ws.CacheDir)
}

func TestNewWorkspaceWithoutProfileDirectory(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	ws, err := NewWorkspace("", &core.TaskResult{
		FinalCachePath: filepath.Join(t.TempDir(), "file-1234.mkv"),
		LibraryID:      "5",
	}, "")
	require.NoError(t, err)

	// No cache directory appears relative to the working directory for
	// languages that never install packages
	assert.NoDirExists(t, filepath.Join(cwd, ".dependency_cache"))
	assert.DirExists(t, ws.ScratchDir)
}

func TestPythonProvisioner(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not found on PATH")
	}

	spec := "requests==2.31.0\npyyaml\n"
	ws := testWorkspace(t, spec)
	runner := &recordingRunner{}

	executable, err := NewPythonProvisioner(runner).Provision(context.Background(), ws)
	require.NoError(t, err)

	// Resolved interpreter lives inside the venv
	assert.Equal(t, filepath.Join(ws.ScratchDir, "venv", "bin", "python3"), executable)

	// The requirements file is written back byte-identical
	written, err := os.ReadFile(filepath.Join(ws.ScratchDir, "requirements.txt"))
	require.NoError(t, err)
	assert.Equal(t, spec, string(written))

	// Cache directory exists before the package manager is invoked
	cachePath := filepath.Join(ws.CacheDir, "pip")
	assert.DirExists(t, cachePath)

	require.Len(t, runner.runs, 2)
	assert.Contains(t, runner.runs[0].Cmd, "-m venv venv")
	assert.Equal(t, ws.ScratchDir, runner.runs[0].Cwd)
	assert.Contains(t, runner.runs[1].Cmd, "-m pip install --cache-dir "+cachePath+" -r requirements.txt")
	assert.Equal(t, ws.ScratchDir, runner.runs[1].Cwd)
}

func TestNodeProvisioner(t *testing.T) {
	if _, err := exec.LookPath("node"); err != nil {
		t.Skip("node not found on PATH")
	}
	if _, err := exec.LookPath("npm"); err != nil {
		t.Skip("npm not found on PATH")
	}

	spec := `{"dependencies": {"lodash": "^4.17.0"}}`
	ws := testWorkspace(t, spec)
	runner := &recordingRunner{}

	executable, err := NewNodeProvisioner(runner).Provision(context.Background(), ws)
	require.NoError(t, err)

	// The runtime itself is not virtualized
	nodePath, _ := exec.LookPath("node")
	assert.Equal(t, nodePath, executable)

	written, err := os.ReadFile(filepath.Join(ws.ScratchDir, "package.json"))
	require.NoError(t, err)
	assert.Equal(t, spec, string(written))

	cachePath := filepath.Join(ws.CacheDir, "node")
	assert.DirExists(t, cachePath)

	require.Len(t, runner.runs, 1)
	assert.Contains(t, runner.runs[0].Cmd, "install --cache "+cachePath+" --prefer-offline")
	assert.Equal(t, ws.ScratchDir, runner.runs[0].Cwd)
}

func TestBashProvisioner(t *testing.T) {
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not found on PATH")
	}

	executable, err := NewBashProvisioner().Provision(context.Background(), nil)
	require.NoError(t, err)

	bashPath, _ := exec.LookPath("bash")
	assert.Equal(t, bashPath, executable)
}

func TestServiceUnknownInputType(t *testing.T) {
	svc := NewService(Registry{})

	_, err := svc.Executable(context.Background(), core.InputType("ruby"), &Workspace{LibraryID: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown input type")
}

// trackingProvisioner resolves each workspace to its own interpreter path and
// records how many provisioning runs overlap.
type trackingProvisioner struct {
	mu      sync.Mutex
	active  int
	maxSeen int
}

func (p *trackingProvisioner) Language() string { return "pip" }

func (p *trackingProvisioner) Provision(_ context.Context, ws *Workspace) (string, error) {
	p.mu.Lock()
	p.active++
	if p.active > p.maxSeen {
		p.maxSeen = p.active
	}
	p.mu.Unlock()

	time.Sleep(10 * time.Millisecond)

	p.mu.Lock()
	p.active--
	p.mu.Unlock()
	return filepath.Join(ws.ScratchDir, "venv", "bin", "python3"), nil
}

func TestServiceSerializesProvisioningPerCacheKey(t *testing.T) {
	provisioner := &trackingProvisioner{}
	svc := NewService(Registry{core.InputPython: provisioner})

	workspaces := []*Workspace{
		{LibraryID: "2", ScratchDir: filepath.Join(t.TempDir(), "postprocessor_script")},
		{LibraryID: "2", ScratchDir: filepath.Join(t.TempDir(), "postprocessor_script")},
	}

	executables := make([]string, len(workspaces))
	errs := make([]error, len(workspaces))
	var wg sync.WaitGroup
	for i, ws := range workspaces {
		wg.Add(1)
		go func(i int, ws *Workspace) {
			defer wg.Done()
			executables[i], errs[i] = svc.Executable(context.Background(), core.InputPython, ws)
		}(i, ws)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	// Each invocation provisions its own workspace, one at a time
	assert.Equal(t, 1, provisioner.maxSeen)
	for i, ws := range workspaces {
		assert.Equal(t, filepath.Join(ws.ScratchDir, "venv", "bin", "python3"), executables[i])
	}
}

func TestServiceDelegatesToRegisteredProvisioner(t *testing.T) {
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not found on PATH")
	}

	svc := NewService(Registry{core.InputBash: NewBashProvisioner()})

	executable, err := svc.Executable(context.Background(), core.InputBash, &Workspace{LibraryID: "1"})
	require.NoError(t, err)
	assert.NotEmpty(t, executable)
}
