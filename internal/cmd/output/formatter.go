// Package output renders command results as tables, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/wxdata/internal/cmd/constants"
	"github.com/agentstation/wxdata/internal/cmd/table"
	"github.com/agentstation/wxdata/pkg/errors"
)

// Format is an output format name as given to --format.
type Format string

const (
	// FormatTable renders aligned columns with relative paths.
	FormatTable Format = constants.FormatTable
	// FormatWide is FormatTable with full paths and product patterns.
	FormatWide Format = constants.FormatWide
	// FormatJSON renders the raw result as indented JSON.
	FormatJSON Format = constants.FormatJSON
	// FormatYAML renders the raw result as YAML.
	FormatYAML Format = constants.FormatYAML
)

// IsTable reports whether f renders as a table.
func (f Format) IsTable() bool {
	return f == FormatTable || f == FormatWide || f == ""
}

// Formatter writes one command result.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(io.Writer, any) error

// Format calls f.
func (f FormatterFunc) Format(w io.Writer, data any) error {
	return f(w, data)
}

// NewFormatter returns the formatter for format. Unknown formats render
// as tables.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatWide:
		return &TableFormatter{Wide: true}
	}
	return &TableFormatter{}
}

// JSONFormatter writes JSON, indented when Indent is set.
type JSONFormatter struct {
	Indent string
}

// Format implements Formatter.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", f.Indent)
	return enc.Encode(data)
}

// YAMLFormatter writes YAML with block sequences at the key's indent.
type YAMLFormatter struct{}

// Format implements Formatter.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	out, err := yaml.MarshalWithOptions(data, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// TableFormatter renders table.Data. Other values are converted field by
// field when they are structs or struct slices, and written as JSON
// otherwise.
type TableFormatter struct {
	Wide bool
}

// Format implements Formatter.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case table.Data:
		return render(w, v)
	case *table.Data:
		return render(w, *v)
	}
	if converted := f.convertToTableData(data); converted != nil {
		return render(w, *converted)
	}
	return (&JSONFormatter{Indent: "  "}).Format(w, data)
}

var alignments = map[table.Align]tw.Align{
	table.AlignLeft:   tw.AlignLeft,
	table.AlignCenter: tw.AlignCenter,
	table.AlignRight:  tw.AlignRight,
}

func render(w io.Writer, data table.Data) error {
	var config tablewriter.Config
	if len(data.ColumnAlignment) > 0 {
		perColumn := make([]tw.Align, len(data.ColumnAlignment))
		for i, a := range data.ColumnAlignment {
			if mapped, ok := alignments[a]; ok {
				perColumn[i] = mapped
			} else {
				perColumn[i] = tw.Skip
			}
		}
		config.Header.Alignment = tw.CellAlignment{PerColumn: perColumn}
		config.Row.Alignment = tw.CellAlignment{PerColumn: perColumn}
	}

	tbl := tablewriter.NewTable(w, tablewriter.WithConfig(config))
	if len(data.Headers) > 0 {
		tbl.Header(cells(data.Headers)...)
	}
	for _, row := range data.Rows {
		if err := tbl.Append(cells(row)...); err != nil {
			return err
		}
	}
	return tbl.Render()
}

func cells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// DetectFormat returns explicit when set. Otherwise stdout decides: a
// terminal gets a table, a pipe or file gets JSON.
func DetectFormat(explicit string) Format {
	if explicit != "" {
		return Format(strings.ToLower(explicit))
	}
	fd := os.Stdout.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return FormatTable
	}
	return FormatJSON
}

// ParseFormat validates a --format value. The empty string is accepted
// and means "detect".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatWide, FormatJSON, FormatYAML, "":
		return f, nil
	}
	return "", errors.NewValidationError("format", s, "must be one of table, wide, json, yaml")
}

// convertToTableData lays out a struct slice as one row per element and a
// single struct as Property/Value rows. It returns nil for anything else.
func (f *TableFormatter) convertToTableData(data any) *table.Data {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}

	switch {
	case v.Kind() == reflect.Struct:
		headers, fields := columns(v.Type())
		rows := make([][]string, len(fields))
		for i, j := range fields {
			rows[i] = []string{headers[i], cellString(v.Field(j))}
		}
		return &table.Data{Headers: []string{"Property", "Value"}, Rows: rows}

	case v.Kind() == reflect.Slice && v.Len() > 0 && v.Index(0).Kind() == reflect.Struct:
		headers, fields := columns(v.Index(0).Type())
		rows := make([][]string, v.Len())
		for i := range rows {
			elem := v.Index(i)
			rows[i] = make([]string, len(fields))
			for k, j := range fields {
				rows[i][k] = cellString(elem.Field(j))
			}
		}
		return &table.Data{Headers: headers, Rows: rows}
	}
	return nil
}

// columns returns the column names of typ and the indexes of the fields
// they come from.
func columns(typ reflect.Type) ([]string, []int) {
	var names []string
	var fields []int
	for i := 0; i < typ.NumField(); i++ {
		if name, ok := columnName(typ.Field(i)); ok {
			names = append(names, name)
			fields = append(fields, i)
		}
	}
	return names, fields
}

// columnName titles the json tag of field, or uses the field name. Fields
// tagged "-" and unexported fields are skipped.
func columnName(field reflect.StructField) (string, bool) {
	if !field.IsExported() {
		return "", false
	}
	tag, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	switch tag {
	case "-":
		return "", false
	case "":
		return field.Name, true
	}
	return cases.Title(language.English).String(strings.ReplaceAll(tag, "_", " ")), true
}

func cellString(v reflect.Value) string {
	if t, ok := v.Interface().(time.Time); ok {
		return table.FormatTime(t)
	}
	return fmt.Sprintf("%v", v.Interface())
}
