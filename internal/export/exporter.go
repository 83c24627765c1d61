package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rebeliceyang/lazydb/internal/vtable"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported formats in menu order.
var Formats = []Format{FormatCSV, FormatJSON, FormatYAML}

// ParseFormat maps a name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Write encodes rows in the given format. Rows are written in the order
// given, which for a table view is its current filtered and sorted order.
func Write(w io.Writer, format Format, columns []string, rows [][]vtable.Value) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, columns, rows)
	case FormatJSON:
		return writeJSON(w, columns, rows)
	case FormatYAML:
		return writeYAML(w, columns, rows)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// ToFile writes rows to path, inferring the format from its extension.
func ToFile(path string, columns []string, rows [][]vtable.Value) error {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", format, err)
	}

	if err := Write(file, format, columns, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DefaultFileName suggests a file name for exporting table.
func DefaultFileName(table string, format Format, now time.Time) string {
	name := unsafeName.ReplaceAllString(table, "_")
	if name == "" {
		name = "export"
	}
	return fmt.Sprintf("%s_%s.%s", name, now.Format("20060102_150405"), format)
}

func writeCSV(w io.Writer, columns []string, rows [][]vtable.Value) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = vtable.Stringify(row[i])
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// exportValue keeps scalars typed and replaces blobs with their label.
func exportValue(row []vtable.Value, i int) any {
	if i >= len(row) {
		return nil
	}
	switch v := row[i].(type) {
	case []byte:
		return vtable.Stringify(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return v
	}
}

func writeJSON(w io.Writer, columns []string, rows [][]vtable.Value) error {
	out := make([]map[string]any, len(rows))
	for r, row := range rows {
		obj := make(map[string]any, len(columns))
		for i, col := range columns {
			obj[col] = exportValue(row, i)
		}
		out[r] = obj
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to marshal rows to JSON: %w", err)
	}
	return nil
}

// writeYAML emits a sequence of mappings keeping column order.
func writeYAML(w io.Writer, columns []string, rows [][]vtable.Value) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for i, col := range columns {
			var val yaml.Node
			if err := val.Encode(exportValue(row, i)); err != nil {
				return fmt.Errorf("failed to encode %s: %w", col, err)
			}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: col},
				&val,
			)
		}
		seq.Content = append(seq.Content, m)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return fmt.Errorf("failed to marshal rows to YAML: %w", err)
	}
	return enc.Close()
}
