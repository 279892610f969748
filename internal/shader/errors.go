package shader

import "fmt"

// Stage identifies a programmable pipeline stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StageFragment
)

// String returns a human-readable name.
func (s Stage) String() string {
	if s == StageFragment {
		return "fragment"
	}
	return "vertex"
}

// CompileError reports a stage that failed to compile.
// Log carries the compiler diagnostics.
type CompileError struct {
	Stage Stage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%v shader compile failed: %s", e.Stage, e.Log)
}

// LinkError reports two stages that compile on their own but whose
// interfaces do not match.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return "shader program link failed: " + e.Log
}

// UnresolvedBindingError reports a name the linked program does not expose.
type UnresolvedBindingError struct {
	Name string
}

func (e *UnresolvedBindingError) Error() string {
	return fmt.Sprintf("shader program has no binding or attribute named %q", e.Name)
}
