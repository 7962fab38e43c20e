package hook

import (
	"fmt"
	"os/exec"

	"kroekerlabs.dev/chyme/postscript/internal/core"
)

// FormField describes one settings option to the host's settings form.
type FormField struct {
	Key         string
	Label       string
	Description string
	InputKind   string
	SubSetting  bool
	Hidden      bool
	Options     []FormOption
}

// FormOption is one choice of a select field.
type FormOption struct {
	Value core.InputType
	Label string
}

// Form returns the settings form descriptors for the current settings state.
// Script, cmd and dependency fields are hidden when the selected input type
// does not use them.
func (s *Settings) Form() []FormField {
	return []FormField{
		{
			Key:   "only_on_task_processing_success",
			Label: "Only run the command when all worker processes completed successfully.",
			Description: "When this is selected, if a worker process fails, " +
				"then the configured command will not be executed.",
			InputKind: "checkbox",
		},
		{
			Key:   "run_for_each_destination_file",
			Label: "Run the command for each output file created by the task.",
			Description: "When this is selected, the given command will be executed once " +
				"for each of the destination files produced by the postprocessor file movements.",
			InputKind: "checkbox",
		},
		{
			Key:         "input_type",
			Label:       "Execution Type",
			Description: "Specify what to execute the defined script with.",
			InputKind:   "select",
			Options:     inputTypeOptions(),
		},
		{
			Key:         "script",
			Label:       "Script",
			Description: "Write here the script you wish to run.",
			InputKind:   "textarea",
			SubSetting:  true,
			Hidden:      s.InputType == core.InputCommand,
		},
		{
			Key:   "cmd",
			Label: "Command or external script to execute.",
			Description: "Specify the command or full path to the script that this plugin should execute.\n" +
				"The specified command or script must be executable.\n" +
				"Variables may be given in this field.",
			InputKind:  "text",
			SubSetting: true,
			Hidden:     s.InputType != core.InputCommand,
		},
		{
			Key:   "args",
			Label: "Arguments to pass to the command or script.",
			Description: "Specify an optional list of arguments to add to the given command or script.\n" +
				"Variables may be given in this field.",
			InputKind:  "textarea",
			SubSetting: true,
		},
		s.dependenciesField(),
	}
}

// inputTypeOptions prunes the execution type choices to the interpreters that
// actually exist on the host. Command execution is always available.
func inputTypeOptions() []FormOption {
	options := []FormOption{
		{Value: core.InputCommand, Label: "Command"},
	}
	if _, err := exec.LookPath("bash"); err == nil {
		options = append(options, FormOption{Value: core.InputBash, Label: "Bash Script"})
	}
	if path, err := exec.LookPath("python3"); err == nil {
		options = append(options, FormOption{Value: core.InputPython, Label: fmt.Sprintf("Python Script (%s)", path)})
	}
	if path, err := exec.LookPath("node"); err == nil {
		options = append(options, FormOption{Value: core.InputNode, Label: fmt.Sprintf("NodeJS Script (%s)", path)})
	}
	return options
}

func (s *Settings) dependenciesField() FormField {
	field := FormField{
		Key:        "script_dependencies",
		Label:      "Script Dependencies file",
		InputKind:  "textarea",
		SubSetting: true,
		Hidden:     s.InputType != core.InputPython && s.InputType != core.InputNode,
	}
	switch s.InputType {
	case core.InputPython:
		field.Label = "Script requirements.txt file"
		field.Description = "Specify dependencies in a requirements.txt file.\n" +
			"These will be installed prior to script execution."
	case core.InputNode:
		field.Label = "Script package.json file"
		field.Description = "Specify dependencies in a package.json file.\n" +
			"These will be installed prior to script execution."
	}
	return field
}
