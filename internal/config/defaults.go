package config

import "path/filepath"

// Default configuration values.
const (
	DefaultLogDirName = ".dotsible"
	DefaultColor      = ColorAuto
	ConfigFileName    = "callback" // callback.yaml in the log directory
	EnvPrefix         = "DOTSIBLE"
)

// Colour modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// DefaultLogDir returns <home>/.dotsible.
func DefaultLogDir(home string) string {
	return filepath.Join(home, DefaultLogDirName)
}
