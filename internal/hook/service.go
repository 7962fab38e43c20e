// Package hook implements the post-task script hook: once the pipeline has
// finished a transcode task it hands the result payload to this service,
// which runs the configured command or script with pipeline-derived
// variables substituted in.
package hook

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"kroekerlabs.dev/chyme/postscript/internal/core"
	"kroekerlabs.dev/chyme/postscript/internal/provision"
)

// Represents a type capable of resolving the executable for an input type,
// provisioning its dependency environment first.
type Provisioner interface {
	Executable(ctx context.Context, inputType core.InputType, ws *provision.Workspace) (string, error)
}

// Represents a type capable of running a command line to completion.
type Runner interface {
	Run(ctx context.Context, cmd string, args string, cwd string) error
}

type Service struct {
	Settings    *Settings
	Provisioner Provisioner
	Runner      Runner
	Logger      log.Logger
}

func New(settings *Settings, provisioner Provisioner, runner Runner, logger log.Logger) *Service {
	return &Service{
		settings,
		provisioner,
		runner,
		logger,
	}
}

// OnTaskComplete runs the configured command for a finished task: once per
// destination file or once in aggregate. Single pass, no retries; the first
// failure aborts the remaining fan-out.
func (s *Service) OnTaskComplete(ctx context.Context, result *core.TaskResult) error {
	if s.Settings.OnlyOnTaskProcessingSuccess && !result.TaskProcessingSuccess {
		// The worker task processes did not all complete successfully
		level.Debug(s.Logger).Log("msg", "skipping execution, task processing was not successful", "library", result.LibraryID)
		return nil
	}

	cmd := s.Settings.Cmd
	if s.Settings.InputType != core.InputCommand {
		built, err := s.buildScript(ctx, result)
		if err != nil {
			return err
		}
		cmd = built
	}

	// Remove any line-breaks in args
	args := strings.NewReplacer("\n", " ", "\r", "").Replace(s.Settings.Args)

	if s.Settings.RunForEachDestinationFile {
		for _, destinationFile := range result.DestinationFiles {
			vars := core.Variables(result).Bind(core.TokenOutputFile, destinationFile)
			fileCmd, fileArgs := vars.Apply(cmd), vars.Apply(args)

			level.Info(s.Logger).Log("msg", "execute command on single file", "cmd", fileCmd+" "+fileArgs)
			if err := s.Runner.Run(ctx, fileCmd, fileArgs, ""); err != nil {
				return err
			}
		}
		return nil
	}

	destinationFiles := result.DestinationFiles
	if destinationFiles == nil {
		destinationFiles = []string{}
	}
	encoded, err := json.Marshal(destinationFiles)
	if err != nil {
		return err
	}
	vars := core.Variables(result).Bind(core.TokenOutputFiles, string(encoded))
	cmd, args = vars.Apply(cmd), vars.Apply(args)

	level.Info(s.Logger).Log("msg", "execute command", "cmd", cmd+" "+args)
	return s.Runner.Run(ctx, cmd, args, "")
}

// buildScript provisions the runtime for the selected script language and
// materializes the script body next to it in the scratch workspace.
func (s *Service) buildScript(ctx context.Context, result *core.TaskResult) (string, error) {
	ws, err := provision.NewWorkspace(s.Settings.ProfileDirectory, result, s.Settings.ScriptDependencies)
	if err != nil {
		return "", err
	}

	executable, err := s.Provisioner.Executable(ctx, s.Settings.InputType, ws)
	if err != nil {
		return "", err
	}

	return materializeScript(ws, s.Settings.InputType, s.Settings.Script, executable)
}
