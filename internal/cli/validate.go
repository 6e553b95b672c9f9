package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/NikitaCOEUR/snipcomplete/internal/config"
)

// Validate validates a snipcomplete configuration file
func Validate(configPath string, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}

	// If no path provided, look for the config in the default location
	if configPath == "" {
		configPath = config.Resolve("")
		if configPath == "" {
			return fmt.Errorf("no config file found")
		}
	}

	_, _ = fmt.Fprintf(out, "Validating: %s\n\n", configPath)

	result, err := config.ValidateFile(configPath)
	if err != nil {
		return err
	}

	if result.Valid {
		_, _ = fmt.Fprintln(out, "✅ Configuration is valid!")
		return nil
	}

	_, _ = fmt.Fprintln(out, "❌ Configuration has errors:")
	for i, validationErr := range result.Errors {
		_, _ = fmt.Fprintf(out, "%d. [%s] %s\n", i+1, validationErr.Field, validationErr.Message)
	}
	_, _ = fmt.Fprintf(out, "\nFound %d error(s)\n", len(result.Errors))

	return fmt.Errorf("validation failed")
}
