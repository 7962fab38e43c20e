package hook

import (
	"os"
	"path/filepath"

	"kroekerlabs.dev/chyme/postscript/internal/core"
	"kroekerlabs.dev/chyme/postscript/internal/provision"
)

// Writes the configured script body to the scratch workspace, marks it
// executable and returns the command line that runs it with the resolved
// interpreter. Must be called after provisioning so the interpreter path is
// final.
func materializeScript(ws *provision.Workspace, inputType core.InputType, script string, executable string) (string, error) {
	scriptPath := filepath.Join(ws.ScratchDir, "script."+inputType.ScriptExtension())
	if err := os.WriteFile(scriptPath, []byte(script), 0644); err != nil {
		return "", err
	}

	// Add owner-exec without clobbering existing permission bits.
	info, err := os.Stat(scriptPath)
	if err != nil {
		return "", err
	}
	if err := os.Chmod(scriptPath, info.Mode()|0100); err != nil {
		return "", err
	}

	return executable + " " + scriptPath, nil
}
