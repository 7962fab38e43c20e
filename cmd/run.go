package main

import (
	"context"
	"os"

	"github.com/go-kit/kit/log/level"
	"github.com/spf13/cobra"

	"kroekerlabs.dev/chyme/postscript/internal/core"
	"kroekerlabs.dev/chyme/postscript/internal/hook"
	"kroekerlabs.dev/chyme/postscript/internal/provision"
	"kroekerlabs.dev/chyme/postscript/pkg/shell"
)

func init() {
	runCmd.Flags().StringVarP(&payloadPath, "payload", "p", "", "path to the task result payload JSON handed over by the pipeline")
	_ = runCmd.MarkFlagRequired("payload")

	MainCmd.AddCommand(runCmd)
}

var payloadPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the post-task hook for one finished task.",
	RunE: func(_ *cobra.Command, args []string) error {

		result, err := loadPayload(payloadPath)
		if err != nil {
			return err
		}

		settings, err := loadSettings()
		if err != nil {
			return err
		}
		if err := settings.Validate(); err != nil {
			return err
		}
		level.Debug(logger).Log("msg", "settings loaded", "settings", settings.String())

		runner := shell.NewRunner(logger)

		provisioner := provision.NewService(provision.Registry{
			core.InputBash:   provision.NewBashProvisioner(),
			core.InputPython: provision.NewPythonProvisioner(runner),
			core.InputNode:   provision.NewNodeProvisioner(runner),
		})

		svc := hook.New(settings, provisioner, runner, logger)

		return svc.OnTaskComplete(context.Background(), result)
	},
}

func loadPayload(path string) (*core.TaskResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	result := &core.TaskResult{}
	if err := result.Decode(f); err != nil {
		return nil, err
	}
	return result, nil
}

// loadSettings reads the per-library settings JSON persisted by the host and
// fills in the profile directory from the environment config.
func loadSettings() (*hook.Settings, error) {
	settings := hook.DefaultSettings()

	if psConfig.SettingsPath != "" {
		f, err := os.Open(psConfig.SettingsPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := settings.Decode(f); err != nil {
			return nil, err
		}
	}

	settings.ProfileDirectory = psConfig.ProfileDirectory
	return settings, nil
}
