package persistence_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/wxdata/internal/persistence"
	"github.com/agentstation/wxdata/pkg/constants"
	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/save"
)

func sampleDocument() *persistence.Document {
	t0 := time.Date(2008, 2, 1, 10, 30, 0, 0, time.UTC)
	return &persistence.Document{
		Version:     constants.SchemaVersion,
		GeneratedAt: utc.New(time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)),
		Products: []persistence.Product{
			{
				ID: "CloudSat_2b_GeoProf",
				Files: []persistence.File{
					{Path: "2008/032/a.hdf", StartTime: t0, EndTime: t0.Add(99*time.Minute + 500*time.Millisecond)},
					{Path: "2008/032/b.zip", StartTime: t0.Add(99 * time.Minute), EndTime: t0.Add(198 * time.Minute)},
				},
			},
			{
				ID:    "DardarCloud",
				Files: []persistence.File{{Path: "../dardar/c.hdf", StartTime: t0, EndTime: t0}},
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	want := sampleDocument()

	for _, tc := range []struct {
		file   string
		format save.Format
	}{
		{"catalog.yaml", save.FormatAuto},
		{"catalog.json", save.FormatAuto},
		{"catalog.db", save.FormatAuto},
		{"catalog.index", save.FormatSQLite},
		{"catalog.dat", save.FormatJSON},
	} {
		t.Run(tc.file, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.file)
			require.NoError(t, persistence.Write(ctx, path, want, tc.format))
			assert.NoFileExists(t, path+".tmp")

			got, format, err := persistence.Read(ctx, path)
			require.NoError(t, err)

			expected := tc.format
			if expected == save.FormatAuto {
				expected = save.FormatFromPath(tc.file)
			}
			assert.Equal(t, expected, format)
			assert.True(t, want.GeneratedAt.Time.Equal(got.GeneratedAt.Time))
			if diff := cmp.Diff(want.Products, got.Products); diff != "" {
				t.Errorf("products mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, 3, got.Len())
		})
	}
}

func TestWriteReplacesExistingFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "catalog.db")

	doc := sampleDocument()
	require.NoError(t, persistence.Write(ctx, path, doc, save.FormatAuto))

	doc.Products = doc.Products[:1]
	require.NoError(t, persistence.Write(ctx, path, doc, save.FormatAuto))

	got, _, err := persistence.Read(ctx, path)
	require.NoError(t, err)
	require.Len(t, got.Products, 1)
	assert.Equal(t, "CloudSat_2b_GeoProf", got.Products[0].ID)
}

func TestEmptyProductSurvivesSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.sqlite")

	doc := persistence.NewDocument()
	doc.Products = []persistence.Product{{ID: "Empty"}}
	require.NoError(t, persistence.Write(ctx, path, doc, save.FormatAuto))

	got, _, err := persistence.Read(ctx, path)
	require.NoError(t, err)
	require.Len(t, got.Products, 1)
	assert.Empty(t, got.Products[0].Files)
}

func TestSniff(t *testing.T) {
	assert.Equal(t, save.FormatSQLite, persistence.Sniff([]byte("SQLite format 3\x00rest")))
	assert.Equal(t, save.FormatJSON, persistence.Sniff([]byte("\n  {\"version\": 1}")))
	assert.Equal(t, save.FormatYAML, persistence.Sniff([]byte("version: 1\n")))
	assert.Equal(t, save.FormatYAML, persistence.Sniff(nil))
}

func TestReadRejectsInvalidDocuments(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		check   func(error) bool
	}{
		{"wrong version", "version: 2\nproducts: []\n", errors.IsValidationError},
		{"missing version", "products: []\n", errors.IsValidationError},
		{"empty", "", isParseError},
		{"garbage yaml", "version: [1\n", isParseError},
		{"garbage json", "{\"version\": ", isParseError},
		{"duplicate product", "version: 1\nproducts:\n  - id: A\n  - id: A\n", errors.IsValidationError},
		{"missing id", "version: 1\nproducts:\n  - files: []\n", errors.IsValidationError},
		{"missing times", "version: 1\nproducts:\n  - id: A\n    files:\n      - path: a.hdf\n", errors.IsValidationError},
		{"reversed times", `{"version":1,"products":[{"id":"A","files":[{"path":"a","start_time":"2008-02-01T11:00:00Z","end_time":"2008-02-01T10:00:00Z"}]}]}`, errors.IsValidationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), constants.FilePermissions))
			_, _, err := persistence.Read(ctx, path)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error type: %v", err)
		})
	}

	_, _, err := persistence.Read(ctx, filepath.Join(dir, "missing.yaml"))
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func isParseError(err error) bool {
	var pe *errors.ParseError
	return errors.As(err, &pe)
}

func TestMarshalYAMLLayout(t *testing.T) {
	data, err := persistence.Marshal(sampleDocument(), save.FormatYAML)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "version: 1")
	assert.Contains(t, out, "generated_at:")
	assert.Contains(t, out, "- id: CloudSat_2b_GeoProf")
	assert.Contains(t, out, "path: 2008/032/a.hdf")
	assert.Contains(t, out, "start_time: 2008-02-01T10:30:00Z")

	_, err = persistence.Marshal(sampleDocument(), save.FormatSQLite)
	assert.True(t, errors.IsValidationError(err))
}
