package output

import (
	"io"

	"github.com/agentstation/wxdata/internal/cmd/table"
)

// Write renders data in the given format. Table formats render tableData;
// the structured formats render raw so that JSON and YAML output keeps
// every field.
func Write(w io.Writer, format Format, tableData table.Data, raw any) error {
	formatter := NewFormatter(format)
	if format.IsTable() {
		return formatter.Format(w, tableData)
	}
	return formatter.Format(w, raw)
}
