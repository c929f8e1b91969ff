package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/huanfeng/androidgen-cli/internal/errors"
)

// Output formats shared by the listing commands
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// writeOutput renders value as JSON or YAML, or calls table for the table format
func writeOutput(w io.Writer, format string, value interface{}, table func(*tabwriter.Writer)) error {
	switch strings.ToLower(format) {
	case formatTable, "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(value)
	default:
		return errors.NewConfigurationError("INVALID_FORMAT",
			fmt.Sprintf("unknown output format '%s', expected table, json or yaml", format))
	}
}
