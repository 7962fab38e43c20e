package hook

import (
	"encoding/json"
	"fmt"
	"io"
	"os/exec"

	"github.com/hashicorp/go-multierror"

	"kroekerlabs.dev/chyme/postscript/internal/core"
)

// Per-library configuration for the hook, persisted by the host against the
// library profile.
type Settings struct {
	OnlyOnTaskProcessingSuccess bool           `json:"only_on_task_processing_success"`
	RunForEachDestinationFile   bool           `json:"run_for_each_destination_file"`
	InputType                   core.InputType `json:"input_type"`
	Script                      string         `json:"script"`
	Cmd                         string         `json:"cmd"`
	Args                        string         `json:"args"`
	ScriptDependencies          string         `json:"script_dependencies"`
	ProfileDirectory            string         `json:"-"`
}

// DefaultSettings returns the settings applied to a library profile before
// the user has configured anything.
func DefaultSettings() *Settings {
	return &Settings{InputType: core.InputCommand}
}

func (s *Settings) Decode(r io.Reader) error {
	return json.NewDecoder(r).Decode(s)
}

func (s *Settings) String() string {
	str, err := json.MarshalIndent(s, "  ", "  ")
	if err != nil {
		str = []byte("error marshaling struct: " + err.Error())
	}
	return fmt.Sprintf("\n==> Postscript configuration:\n\n  %s\n", string(str))
}

// Validate aggregates every configuration problem rather than stopping at the
// first, so the host can surface them all at once.
func (s *Settings) Validate() error {
	errs := &multierror.Error{}

	switch s.InputType {
	case core.InputCommand:
		// An empty cmd is allowed: the composed command line is a silent
		// no-op at execution time.
	case core.InputBash, core.InputPython, core.InputNode:
		if _, err := exec.LookPath(string(s.InputType)); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("input type %s selected but no %s binary found on PATH", s.InputType, s.InputType))
		}
		if s.Script == "" {
			errs = multierror.Append(errs, fmt.Errorf("input type %s selected but no script body configured", s.InputType))
		}
		if s.ProfileDirectory == "" && s.InputType != core.InputBash {
			errs = multierror.Append(errs, fmt.Errorf("no profile directory configured for the dependency cache"))
		}
	default:
		errs = multierror.Append(errs, fmt.Errorf("unknown input type %s", s.InputType))
	}

	return errs.ErrorOrNil()
}
