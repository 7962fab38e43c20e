// Package provision builds the isolated runtime a configured script needs
// before it can be executed: a virtual environment for Python scripts, a
// node_modules tree for NodeJS scripts, or a bare interpreter for Bash.
// Downloaded packages are cached per (library, language) across task runs.
package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/semaphore"

	"kroekerlabs.dev/chyme/postscript/internal/core"
)

// Represents a type capable of running a command line to completion.
type Runner interface {
	Run(ctx context.Context, cmd string, args string, cwd string) error
}

// Represents a type capable of resolving the executable for one input type,
// installing any dependencies it needs first. Provision is idempotent with
// respect to the cache directory: an existing cache is reused, never
// invalidated.
type Provisioner interface {
	Provision(ctx context.Context, ws *Workspace) (string, error)
	Language() string
}

type Registry map[core.InputType]Provisioner

// Workspace locates the scratch and cache directories for one provisioning
// run and carries the configured dependency spec.
type Workspace struct {
	LibraryID      string
	ScratchDir     string
	CacheDir       string
	DependencySpec string
}

// NewWorkspace derives the scratch workspace from the final cache path and
// the dependency cache root from the profile directory. The scratch directory
// is created here; cache directories are created by the provisioners that
// actually use them, so languages without a package manager never touch the
// cache root.
func NewWorkspace(profileDir string, result *core.TaskResult, dependencySpec string) (*Workspace, error) {
	scratchDir := filepath.Join(filepath.Dir(result.FinalCachePath), "postprocessor_script")
	if err := os.MkdirAll(scratchDir, 0755); err != nil {
		return nil, err
	}

	cacheDir := filepath.Join(profileDir, ".dependency_cache", string(result.LibraryID))

	return &Workspace{
		LibraryID:      string(result.LibraryID),
		ScratchDir:     scratchDir,
		CacheDir:       cacheDir,
		DependencySpec: dependencySpec,
	}, nil
}

type Service struct {
	registry Registry

	mu    sync.Mutex
	locks map[string]*semaphore.Weighted
}

// Creates a new Service that delegates to the Provisioner registered for the
// requested input type. Provisioning runs are serialized per
// (library, language) key so concurrent tasks for the same library cannot
// corrupt a shared package cache; every invocation still provisions its own
// scratch workspace.
func NewService(registry Registry) *Service {
	return &Service{
		registry: registry,
		locks:    make(map[string]*semaphore.Weighted),
	}
}

// keyLock returns the semaphore guarding one (library, language) cache key.
func (s *Service) keyLock(key string) *semaphore.Weighted {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock := s.locks[key]
	if lock == nil {
		lock = semaphore.NewWeighted(1)
		s.locks[key] = lock
	}
	return lock
}

func (s *Service) Executable(ctx context.Context, inputType core.InputType, ws *Workspace) (string, error) {
	provisioner := s.registry[inputType]
	if provisioner == nil {
		return "", fmt.Errorf("unknown input type %s", inputType)
	}

	lock := s.keyLock(ws.LibraryID + "/" + provisioner.Language())
	if err := lock.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer lock.Release(1)

	return provisioner.Provision(ctx, ws)
}
