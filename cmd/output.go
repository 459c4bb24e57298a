package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// table is the console view of a command result. Data is what json and
// yaml output encode.
type table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Data    any
}

// render writes t in the chosen output format.
func render(w io.Writer, format string, t table) error {
	switch strings.ToLower(format) {
	case "json":
		b, err := json.MarshalIndent(t.Data, "", "  ")
		if err != nil {
			return fmt.Errorf("error formatting JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		// Round-trip through JSON so yaml keys follow the json tags.
		b, err := json.Marshal(t.Data)
		if err != nil {
			return fmt.Errorf("error formatting YAML: %w", err)
		}
		var generic any
		if err := json.Unmarshal(b, &generic); err != nil {
			return fmt.Errorf("error formatting YAML: %w", err)
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return fmt.Errorf("error formatting YAML: %w", err)
		}
		_, err = w.Write(out)
		return err
	case "table", "":
		return renderTable(w, t)
	default:
		return fmt.Errorf("unsupported output format %q (want table, json or yaml)", format)
	}
}

func renderTable(w io.Writer, t table) error {
	if t.Title != "" {
		fmt.Fprintln(w, headingStyle.Render(t.Title))
	}
	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// keyValues renders label/value pairs as a two-column table.
func keyValues(title string, data any, pairs ...string) table {
	t := table{Title: title, Data: data}
	for i := 0; i+1 < len(pairs); i += 2 {
		t.Rows = append(t.Rows, []string{labelStyle.Render(pairs[i]), pairs[i+1]})
	}
	return t
}
