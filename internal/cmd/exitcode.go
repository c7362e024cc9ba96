package cmd

const (
	ExitOK    = 0
	ExitError = 1
)

// ExitCode maps a command error to the process exit status. Every failure,
// whatever its kind, exits 1.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	return ExitError
}
