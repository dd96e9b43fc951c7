package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/wxdata/internal/cmd/table"
)

type row struct {
	ID      string    `json:"id"`
	Files   int       `json:"file_count"`
	Start   time.Time `json:"start_time"`
	Private string    `json:"-"`
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "JSON", "yaml", "wide", ""} {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, Format(strings.ToLower(s)), f)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	data := table.Data{Headers: []string{"Product", "Files"}, Rows: [][]string{{"CloudSat_2b_GeoProf", "42"}}}
	raw := []row{{ID: "CloudSat_2b_GeoProf", Files: 42}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTable, data, raw))
	assert.Contains(t, buf.String(), "CloudSat_2b_GeoProf")
	assert.Contains(t, buf.String(), "42")

	buf.Reset()
	require.NoError(t, Write(&buf, FormatJSON, data, raw))
	assert.Contains(t, buf.String(), `"file_count": 42`)
	assert.NotContains(t, buf.String(), "Private")

	buf.Reset()
	require.NoError(t, Write(&buf, FormatYAML, data, raw))
	assert.Contains(t, buf.String(), "file_count: 42")
}

func TestConvertToTableData(t *testing.T) {
	f := &TableFormatter{}
	start := time.Date(2008, 2, 1, 10, 30, 0, 0, time.UTC)

	data := f.convertToTableData([]row{{ID: "a", Files: 1, Start: start, Private: "x"}})
	require.NotNil(t, data)
	assert.Equal(t, []string{"Id", "File Count", "Start Time"}, data.Headers)
	assert.Equal(t, [][]string{{"a", "1", "2008-02-01 10:30:00"}}, data.Rows)

	single := f.convertToTableData(&row{ID: "b"})
	require.NotNil(t, single)
	assert.Equal(t, []string{"Property", "Value"}, single.Headers)
	assert.Equal(t, []string{"Id", "b"}, single.Rows[0])

	assert.Nil(t, f.convertToTableData(42))
}
