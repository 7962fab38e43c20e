package provision

import (
	"context"
	"os/exec"
)

// Bash-backed Provisioner. Bash scripts carry no dependency spec, so there is
// nothing to install; the system interpreter is resolved and returned.
type bashProvisioner struct{}

func NewBashProvisioner() Provisioner {
	return &bashProvisioner{}
}

func (p *bashProvisioner) Language() string {
	return "bash"
}

func (p *bashProvisioner) Provision(_ context.Context, _ *Workspace) (string, error) {
	return exec.LookPath("bash")
}
