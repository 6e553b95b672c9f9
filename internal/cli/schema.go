package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/NikitaCOEUR/snipcomplete/internal/config"
)

// Schema displays or exports the JSON Schema for snipcomplete configuration files
func Schema(outputPath string, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}
	schemaJSON := config.SchemaJSON()

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(schemaJSON), 0644); err != nil {
			return fmt.Errorf("failed to write schema to %s: %w", outputPath, err)
		}
		_, _ = fmt.Fprintf(out, "JSON Schema written to: %s\n", outputPath)
		return nil
	}

	_, _ = fmt.Fprintln(out, schemaJSON)
	return nil
}
