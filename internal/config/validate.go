package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dotsible/dotsible/internal/schema"
)

// validateSettings checks merged settings against the embedded config schema.
func validateSettings(settings map[string]interface{}) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return schema.ValidateConfig(data)
}

// normalizeColor lowercases and trims a colour mode.
func normalizeColor(mode string) string {
	return strings.ToLower(strings.TrimSpace(mode))
}
