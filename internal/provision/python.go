package provision

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
)

// Python-backed Provisioner. Builds a virtual environment inside the scratch
// workspace, installs the configured requirements into it and returns the
// environment's interpreter.
type pythonProvisioner struct {
	runner Runner
}

func NewPythonProvisioner(runner Runner) Provisioner {
	return &pythonProvisioner{runner}
}

func (p *pythonProvisioner) Language() string {
	return "pip"
}

func (p *pythonProvisioner) Provision(ctx context.Context, ws *Workspace) (string, error) {
	executable, err := exec.LookPath("python3")
	if err != nil {
		return "", err
	}

	// The requirements file pip reads back must be byte-identical to the
	// configured dependency spec.
	requirementsPath := filepath.Join(ws.ScratchDir, "requirements.txt")
	if err := os.WriteFile(requirementsPath, []byte(ws.DependencySpec), 0644); err != nil {
		return "", err
	}

	cachePath := filepath.Join(ws.CacheDir, "pip")
	if err := os.MkdirAll(cachePath, 0755); err != nil {
		return "", err
	}

	// venv creation is idempotent over an existing environment
	if err := p.runner.Run(ctx, executable+" -m venv venv", "", ws.ScratchDir); err != nil {
		return "", err
	}
	executable = filepath.Join(ws.ScratchDir, "venv", "bin", "python3")

	// The cache path is passed to pip explicitly rather than through
	// PIP_CACHE_DIR, which would leak process-wide.
	install := executable + " -m pip install --cache-dir " + cachePath + " -r requirements.txt"
	if err := p.runner.Run(ctx, install, "", ws.ScratchDir); err != nil {
		return "", err
	}

	return executable, nil
}
