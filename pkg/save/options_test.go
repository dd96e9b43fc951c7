package save_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/save"
)

func TestFormatFromPath(t *testing.T) {
	tests := map[string]save.Format{
		"index.json":       save.FormatJSON,
		"INDEX.JSON":       save.FormatJSON,
		"index.db":         save.FormatSQLite,
		"index.sqlite":     save.FormatSQLite,
		"index.sqlite3":    save.FormatSQLite,
		"index.yaml":       save.FormatYAML,
		"2b_geoprof.index": save.FormatYAML,
		"index":            save.FormatYAML,
	}
	for path, want := range tests {
		assert.Equal(t, want, save.FormatFromPath(path), path)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]save.Format{
		"":        save.FormatAuto,
		"YAML":    save.FormatYAML,
		"yml":     save.FormatYAML,
		"json":    save.FormatJSON,
		"sqlite3": save.FormatSQLite,
	} {
		got, err := save.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := save.ParseFormat("pickle")
	assert.True(t, errors.IsValidationError(err))
}

func TestOptions(t *testing.T) {
	opts := save.Defaults()
	assert.Equal(t, save.FormatAuto, opts.Format())
	assert.Equal(t, save.FormatSQLite, opts.Resolve("a.db"))

	applied := opts.Apply(save.WithFormat(save.FormatJSON))
	assert.Equal(t, save.FormatJSON, applied.Format())
	assert.Equal(t, save.FormatJSON, applied.Resolve("a.db"))

	assert.True(t, save.FormatSQLite.IsValid())
	assert.False(t, save.Format(42).IsValid())
	assert.Equal(t, "unknown", save.Format(42).String())
	assert.Equal(t, "sqlite", save.FormatSQLite.String())
}
