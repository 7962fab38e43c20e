package provision

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
)

// Node-backed Provisioner. Installs the configured package manifest into the
// scratch workspace with npm and returns the system node runtime; only the
// packages are isolated, not the runtime itself.
type nodeProvisioner struct {
	runner Runner
}

func NewNodeProvisioner(runner Runner) Provisioner {
	return &nodeProvisioner{runner}
}

func (p *nodeProvisioner) Language() string {
	return "node"
}

func (p *nodeProvisioner) Provision(ctx context.Context, ws *Workspace) (string, error) {
	nodeExecutable, err := exec.LookPath("node")
	if err != nil {
		return "", err
	}
	npmExecutable, err := exec.LookPath("npm")
	if err != nil {
		return "", err
	}

	packagePath := filepath.Join(ws.ScratchDir, "package.json")
	if err := os.WriteFile(packagePath, []byte(ws.DependencySpec), 0644); err != nil {
		return "", err
	}

	cachePath := filepath.Join(ws.CacheDir, "node")
	if err := os.MkdirAll(cachePath, 0755); err != nil {
		return "", err
	}

	install := npmExecutable + " install --cache " + cachePath + " --prefer-offline"
	if err := p.runner.Run(ctx, install, "", ws.ScratchDir); err != nil {
		return "", err
	}

	return nodeExecutable, nil
}
