package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

// SchemaJSON returns the JSON Schema of the config file
func SchemaJSON() string {
	return schemaJSON
}

// ValidationError is one problem found in a config file
type ValidationError struct {
	Field   string
	Message string
}

// ValidationResult collects the problems found in a config file
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

func (r *ValidationResult) add(field, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}

// ValidateWithSchema checks content (named path, for format detection)
// against the embedded schema
func ValidateWithSchema(path string, content []byte) (*ValidationResult, error) {
	result := &ValidationResult{Valid: true, Errors: []ValidationError{}}

	var data interface{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(content, &data); err != nil {
			result.add("syntax", fmt.Sprintf("Invalid YAML syntax: %v", err))
			return result, nil
		}
	case ".json":
		if err := json.Unmarshal(content, &data); err != nil {
			result.add("syntax", fmt.Sprintf("Invalid JSON syntax: %v", err))
			return result, nil
		}
	case ".toml":
		m, err := toml.Parser().Unmarshal(content)
		if err != nil {
			result.add("syntax", fmt.Sprintf("Invalid TOML syntax: %v", err))
			return result, nil
		}
		data = m
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}

	// An empty document means "all defaults"
	if data == nil {
		data = map[string]interface{}{}
	}

	res, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewGoLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}

	for _, e := range res.Errors() {
		result.add(e.Field(), e.Description())
	}
	return result, nil
}

// ValidateFile runs the schema check and, when it passes, the semantic checks
// applied at load time
func ValidateFile(path string) (*ValidationResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}

	result, err := ValidateWithSchema(path, content)
	if err != nil || !result.Valid {
		return result, err
	}

	if _, err := Load(path); err != nil {
		result.add("config", err.Error())
	}
	return result, nil
}
