package config

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

var settingsSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
})

// ValidateSettings checks a settings file as viper reports it, with lower-cased keys.
// roocode.claudeapikey must be a string, http.timeout a Go duration string
// and output.render a boolean. Unknown keys are allowed.
func ValidateSettings(settings map[string]any) error {
	schema, err := settingsSchema()
	if err != nil {
		return fmt.Errorf("load settings schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(settings))
	if err != nil {
		return fmt.Errorf("validate settings schema: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", settingKey(desc.Field()), desc.Description()))
	}
	sort.Strings(problems)

	return fmt.Errorf("settings schema validation failed: %s", strings.Join(problems, "; "))
}

// settingKey maps a gojsonschema field path to the dotted setting key.
func settingKey(field string) string {
	if field == gojsonschema.STRING_ROOT_SCHEMA_PROPERTY || field == "" {
		return "settings"
	}
	return field
}
