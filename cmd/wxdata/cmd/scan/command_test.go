package scan

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/wxdata"
	"github.com/agentstation/wxdata/internal/appcontext"
	"github.com/agentstation/wxdata/pkg/constants"
	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/index"
	"github.com/agentstation/wxdata/pkg/products"
)

type spanReader struct{ start, end time.Time }

func (r spanReader) StartTime() (time.Time, error) { return r.start, nil }
func (r spanReader) EndTime() (time.Time, error)   { return r.end, nil }
func (r spanReader) Get(string) (any, error)       { return nil, errors.ErrNotFound }
func (r spanReader) Attributes() []string          { return nil }
func (r spanReader) Close() error                  { return nil }

func openSpan(path string) (products.Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var from, to int64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(data)), "%d %d", &from, &to); err != nil {
		return nil, err
	}
	return spanReader{start: time.Unix(from, 0).UTC(), end: time.Unix(to, 0).UTC()}, nil
}

func testApp(t *testing.T, format string) *appcontext.Mock {
	t.Helper()
	r := products.NewRegistry()
	r.MustRegister("Granules", `granule_\d+`, openSpan)
	scratch := t.TempDir()
	return &appcontext.Mock{
		ClientWithOptionsFunc: func(opts ...wxdata.Option) (wxdata.Client, error) {
			base := []wxdata.Option{wxdata.WithRegistry(r), wxdata.WithScratchDir(scratch)}
			return wxdata.New(append(base, opts...)...)
		},
		OutputFormatFunc: func() string { return format },
	}
}

func tree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range map[string]string{
		"granule_1": "0 60",
		"granule_2": "60 120",
		"granule_9": "broken",
		"other.dat": "",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}
	return root
}

func execute(t *testing.T, app AppContext, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand(app)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCatalogPath(t *testing.T) {
	tests := []struct {
		name       string
		out        string
		configured string
		want       string
	}{
		{name: "flag", out: "a.db", configured: "b.yaml", want: "a.db"},
		{name: "configured", configured: "b.yaml", want: "b.yaml"},
		{name: "default", want: filepath.Join("/data", constants.DefaultCatalogFile)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, catalogPath(tt.out, tt.configured, "/data"))
		})
	}
}

func TestIndexTable(t *testing.T) {
	root := tree(t)

	out, err := execute(t, testApp(t, "table"), root, "--no-progress", "--failures")
	require.NoError(t, err)

	assert.Contains(t, out, "Granules")
	assert.Contains(t, out, "granule_9")
	assert.FileExists(t, filepath.Join(root, constants.DefaultCatalogFile))

	idx, err := index.Load(filepath.Join(root, constants.DefaultCatalogFile),
		index.WithRegistry(func() *products.Registry {
			r := products.NewRegistry()
			r.MustRegister("Granules", `granule_\d+`, openSpan)
			return r
		}()))
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())
}

func TestIndexProgress(t *testing.T) {
	root := tree(t)
	cmd := NewCommand(testApp(t, "json"))
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{root, "--out", filepath.Join(t.TempDir(), "c.json")})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, errOut.String(), "indexing")
}

func TestIndexInvalidFlags(t *testing.T) {
	root := tree(t)

	_, err := execute(t, testApp(t, "table"), root, "--workers", "-1")
	assert.True(t, errors.IsValidationError(err))

	_, err = execute(t, testApp(t, "table"), root, "--store-format", "csv")
	assert.True(t, errors.IsValidationError(err))

	_, err = execute(t, testApp(t, "table"))
	assert.Error(t, err)
}
