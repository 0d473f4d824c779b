// Package output renders CLI results as an aligned table, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/orris-inc/harborline/internal/shared/errors"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", errors.NewValidationError("unknown output format", fmt.Sprintf("%q: want table, json or yaml", s))
	}
}

// Table is the row form of a value for the table format.
type Table struct {
	Header []string
	Rows   [][]string
}

type Printer struct {
	w      io.Writer
	format Format
}

func New(w io.Writer, format string) (*Printer, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return &Printer{w: w, format: f}, nil
}

// Print writes v in the structured formats and table otherwise.
func (p *Printer) Print(v any, table Table) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return p.table(table)
	}
}

// Message writes a human confirmation line. Structured formats get v instead
// so scripts can parse the result.
func (p *Printer) Message(v any, format string, args ...any) error {
	if p.format != FormatTable {
		return p.Print(v, Table{})
	}
	_, err := fmt.Fprintf(p.w, format+"\n", args...)
	return err
}

func (p *Printer) table(t Table) error {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	if len(t.Header) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Header, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
