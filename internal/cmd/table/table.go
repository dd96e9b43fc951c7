// Package table provides common table formatting utilities for CLI commands.
package table

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/wxdata/pkg/constants"
	"github.com/agentstation/wxdata/pkg/index"
	"github.com/agentstation/wxdata/pkg/products"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// ProductsToTableData lists registered products with their catalogued file
// counts. counts may be nil when no catalog is loaded.
func ProductsToTableData(descriptors []products.Descriptor, counts map[products.ID]int, showPattern bool) Data {
	headers := []string{"Product", "Files"}
	align := []Align{AlignLeft, AlignRight}
	if showPattern {
		headers = append(headers, "Pattern")
		align = append(align, AlignLeft)
	}

	rows := make([][]string, 0, len(descriptors))
	for _, d := range descriptors {
		files := "-"
		if counts != nil {
			files = strconv.Itoa(counts[d.ID])
		}
		row := []string{string(d.ID), files}
		if showPattern {
			row = append(row, d.Pattern.String())
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// RecordsToTableData lists records with their position in the product.
// Paths are shown relative to base unless showFullPath is set.
func RecordsToTableData(records []index.Record, positions []int, base string, showFullPath bool) Data {
	headers := []string{"#", "Start", "End", "Duration", "Path"}
	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		path := rec.Path
		if !showFullPath {
			path = RelativePath(base, rec.Path)
		}
		rows = append(rows, []string{
			strconv.Itoa(positions[i]),
			FormatTime(rec.StartTime),
			FormatTime(rec.EndTime),
			FormatDuration(rec.EndTime.Sub(rec.StartTime)),
			path,
		})
	}
	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignRight, AlignLeft},
	}
}

// SummaryToTableData lists per-product counts and coverage.
func SummaryToTableData(summary []index.ProductSummary) Data {
	rows := make([][]string, 0, len(summary))
	for _, s := range summary {
		rows = append(rows, []string{
			string(s.ID),
			strconv.Itoa(s.Files),
			FormatTime(s.StartTime),
			FormatTime(s.EndTime),
		})
	}
	return Data{
		Headers:         []string{"Product", "Files", "First Start", "Last End"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignLeft, AlignLeft},
	}
}

// StatsToTableData converts scan statistics to a key-value table.
func StatsToTableData(stats *index.ScanStats) Data {
	rows := [][]string{
		{"Root", stats.Root},
		{"Candidates", strconv.Itoa(stats.Candidates)},
		{"Ignored", strconv.Itoa(stats.Ignored)},
		{"Indexed", strconv.Itoa(stats.Indexed)},
		{"Unclassified", strconv.Itoa(stats.Unclassified)},
		{"Failed", strconv.Itoa(stats.Failed)},
		{"Duration", FormatDuration(stats.Duration)},
	}
	return Data{Headers: []string{"Property", "Value"}, Rows: rows}
}

// FailuresToTableData lists the files skipped during a scan.
func FailuresToTableData(failures []index.Failure, base string) Data {
	rows := make([][]string, 0, len(failures))
	for _, f := range failures {
		product := string(f.Product)
		if product == "" {
			product = "-"
		}
		rows = append(rows, []string{RelativePath(base, f.Path), product, f.Message})
	}
	return Data{Headers: []string{"Path", "Product", "Error"}, Rows: rows}
}

// FormatTime formats a time in UTC, or "-" for the zero time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(constants.TimeFormatHuman)
}

// FormatDuration rounds d for display.
func FormatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		return d.Round(time.Minute).String()
	case d >= time.Second:
		return d.Round(time.Second).String()
	default:
		return d.Round(time.Millisecond).String()
	}
}

// RelativePath shortens path relative to base when path lies below it.
func RelativePath(base, path string) string {
	if base == "" {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
