// Package schema provides embedded JSON schemas for runner events and the
// formatter configuration file.
package schema

import "embed"

// FS contains the embedded schema files.
//
//go:embed *.schema.json
var FS embed.FS
