package cli

const (
	// ExitRejected is returned when business rules reported problems.
	ExitRejected = 1
	// ExitAborted is returned when a structural precondition failed.
	ExitAborted = 2
)

// CommandError signals a command failure with a specific exit code.
// Commands return this after handling all output (printing errors/warnings to stderr).
// Main centralizes exit handling instead of commands calling os.Exit directly.
type CommandError struct {
	exitCode int
}

// NewCommandError creates a new CommandError with the given exit code.
func NewCommandError(exitCode int) *CommandError {
	return &CommandError{exitCode: exitCode}
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return "command failed"
}

// ExitCode returns the exit code associated with this error.
func (e *CommandError) ExitCode() int {
	return e.exitCode
}

// CommandResult encapsulates the outcome of a command execution.
type CommandResult struct {
	// ExitCode is the exit code to return to the OS.
	// 0 indicates success, non-zero indicates failure.
	ExitCode int

	// Err is an unexpected error, such as a failed document read. It is
	// returned to kong as is rather than mapped to an exit code.
	Err error
}

// Success returns a CommandResult indicating successful execution.
func Success() CommandResult {
	return CommandResult{ExitCode: 0}
}

// Failure returns a CommandResult indicating failure with the given error.
func Failure(err error) CommandResult {
	return CommandResult{ExitCode: 1, Err: err}
}

// Rejected returns a CommandResult for output already reported to the user.
func Rejected(exitCode int) CommandResult {
	return CommandResult{ExitCode: exitCode}
}

// AsError converts the result to the error a kong Run method returns.
func (r CommandResult) AsError() error {
	switch {
	case r.ExitCode == 0:
		return nil
	case r.Err != nil:
		return r.Err
	}
	return NewCommandError(r.ExitCode)
}
