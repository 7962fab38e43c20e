package core

import (
	"encoding/json"
	"io"
)

// Opaque library identifier. The pipeline sends it as either a JSON string
// or a JSON number; both decode to its string form.
type LibraryID string

func (id *LibraryID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = LibraryID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = LibraryID(n.String())
	return nil
}

// Represents the result payload handed to the hook by the pipeline once a
// transcode task and its postprocessor file movements have finished.
type TaskResult struct {
	FinalCachePath        string     `json:"final_cache_path"`
	LibraryID             LibraryID  `json:"library_id"`
	TaskProcessingSuccess bool       `json:"task_processing_success"`
	FileMoveSuccess       bool       `json:"file_move_processes_success"`
	DestinationFiles      []string   `json:"destination_files"`
	SourceData            SourceData `json:"source_data"`
}

// SourceData describes the original source file the task was created from.
type SourceData struct {
	Abspath string `json:"abspath"`
}

func (r *TaskResult) Decode(rd io.Reader) error {
	return json.NewDecoder(rd).Decode(r)
}

// InputType selects what the configured script is executed with.
type InputType string

const (
	InputCommand InputType = "command"
	InputBash    InputType = "bash"
	InputPython  InputType = "python3"
	InputNode    InputType = "node"
)

// Reports whether the input type materializes a script before execution.
func (t InputType) Scripted() bool {
	switch t {
	case InputBash, InputPython, InputNode:
		return true
	}
	return false
}

// ScriptExtension returns the file extension used when the script body is
// written to the scratch workspace.
func (t InputType) ScriptExtension() string {
	switch t {
	case InputBash:
		return "sh"
	case InputPython:
		return "py"
	case InputNode:
		return "js"
	}
	return "txt"
}
