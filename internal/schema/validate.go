// Package schema provides JSON schema validation for runner events and the
// formatter configuration.
package schema

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	schemafs "github.com/dotsible/dotsible/schema"
)

var (
	eventSchema  *jsonschema.Schema
	configSchema *jsonschema.Schema
	compileOnce  sync.Once
	compileErr   error
)

// compileSchemas compiles all embedded schemas once.
func compileSchemas() error {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()

		for _, name := range []string{"event.schema.json", "config.schema.json"} {
			data, err := schemafs.FS.ReadFile(name)
			if err != nil {
				compileErr = fmt.Errorf("read %s: %w", name, err)
				return
			}
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
			if err != nil {
				compileErr = fmt.Errorf("unmarshal %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(name, doc); err != nil {
				compileErr = fmt.Errorf("add %s resource: %w", name, err)
				return
			}
		}

		var err error
		eventSchema, err = compiler.Compile("event.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile event schema: %w", err)
			return
		}

		configSchema, err = compiler.Compile("config.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile config schema: %w", err)
			return
		}
	})

	return compileErr
}

// ValidateEvent validates one JSON-encoded runner event.
func ValidateEvent(data []byte) error {
	return validate(data, func() *jsonschema.Schema { return eventSchema }, "event")
}

// ValidateConfig validates JSON-encoded formatter settings.
func ValidateConfig(data []byte) error {
	return validate(data, func() *jsonschema.Schema { return configSchema }, "config")
}

func validate(data []byte, sch func() *jsonschema.Schema, what string) error {
	if err := compileSchemas(); err != nil {
		return err
	}

	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := sch().Validate(v); err != nil {
		return fmt.Errorf("%s validation failed: %w", what, err)
	}

	return nil
}
