// Package dotsible provides public constants for tools that wrap the dotsible
// commands.
package dotsible

// Exit codes returned by the dotsible and merge-markdown commands.
// These constants allow wrapper scripts to check exit codes symbolically
// rather than using magic numbers.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitFailure indicates a runtime failure (I/O error, unreadable event
	// stream) or a wrong argument count.
	ExitFailure = 1

	// ExitConfigError indicates an unreadable or invalid configuration file.
	ExitConfigError = 2
)
