package core

import (
	"os"
	"strconv"
	"strings"
)

// Placeholder tokens recognized in the configured command and args strings.
const (
	TokenLibraryID      = "{library_id}"
	TokenFinalCachePath = "{final_cache_path}"
	TokenSourcePath     = "{source_file_path}"
	TokenSourceSize     = "{source_file_size}"
	TokenOutputFile     = "{output_file_path}"
	TokenOutputFiles    = "{output_files}"
)

// Variable binds a placeholder token to its value for one invocation. A nil
// value leaves the literal token untouched when the map is applied.
type Variable struct {
	Token string
	Value *string
}

// VariableMap is the ordered set of placeholder bindings for one execution.
type VariableMap []Variable

// Bind appends a token bound to a concrete value.
func (m VariableMap) Bind(token, value string) VariableMap {
	return append(m, Variable{token, &value})
}

// BindNil appends a token with no value; Apply leaves it as literal text.
func (m VariableMap) BindNil(token string) VariableMap {
	return append(m, Variable{token, nil})
}

// Apply replaces every occurrence of each bound token in s, in binding order.
func (m VariableMap) Apply(s string) string {
	for _, v := range m {
		if v.Value == nil {
			continue
		}
		s = strings.ReplaceAll(s, v.Token, *v.Value)
	}
	return s
}

// Variables builds the bindings shared by every execution mode. The source
// file size is left unbound when the file does not exist on disk.
func Variables(result *TaskResult) VariableMap {
	m := VariableMap{}.
		Bind(TokenLibraryID, string(result.LibraryID)).
		Bind(TokenFinalCachePath, result.FinalCachePath).
		Bind(TokenSourcePath, result.SourceData.Abspath)

	if info, err := os.Stat(result.SourceData.Abspath); err == nil {
		m = m.Bind(TokenSourceSize, strconv.FormatInt(info.Size(), 10))
	} else {
		m = m.BindNil(TokenSourceSize)
	}
	return m
}
