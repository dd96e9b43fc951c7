package index_test

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agentstation/wxdata/pkg/constants"
	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/products"
)

const (
	productA products.ID = "ProductA"
	productB products.ID = "ProductB"
	productC products.ID = "ProductC"
)

var t0 = time.Date(2008, 2, 1, 0, 0, 0, 0, time.UTC)

// textReader reads "START END" RFC 3339 pairs from plain files.
type textReader struct {
	path       string
	start, end time.Time
}

func (r *textReader) StartTime() (time.Time, error) { return r.start, nil }
func (r *textReader) EndTime() (time.Time, error)   { return r.end, nil }
func (r *textReader) Attributes() []string          { return []string{"path"} }
func (r *textReader) Close() error                  { return nil }

func (r *textReader) Get(name string) (any, error) {
	if name == "path" {
		return r.path, nil
	}
	return nil, errors.NewNotFoundError("attribute", name)
}

func openText(path string) (products.Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(string(data))
	if len(fields) != 2 {
		return nil, fmt.Errorf("want two timestamps, got %q", data)
	}
	start, err := time.Parse(time.RFC3339, fields[0])
	if err != nil {
		return nil, err
	}
	end, err := time.Parse(time.RFC3339, fields[1])
	if err != nil {
		return nil, err
	}
	return &textReader{path: path, start: start, end: end}, nil
}

func testRegistry() *products.Registry {
	r := products.NewRegistry()
	r.MustRegister(productA, `A_\d+`, openText)
	r.MustRegister(productB, `B_\d+`, openText)
	r.MustRegister(productC, `C_\d+`, openText)
	return r
}

// span returns the file content for a granule covering [t0+from, t0+to) hours.
func span(from, to int) string {
	return fmt.Sprintf("%s %s\n",
		t0.Add(time.Duration(from)*time.Hour).Format(time.RFC3339),
		t0.Add(time.Duration(to)*time.Hour).Format(time.RFC3339))
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), constants.DirPermissions))
		if strings.HasSuffix(name, ".zip") {
			writeZip(t, path, strings.TrimSuffix(filepath.Base(name), ".zip")+".txt", content)
			continue
		}
		require.NoError(t, os.WriteFile(path, []byte(content), constants.FilePermissions))
	}
}

func writeZip(t *testing.T, path, member, content string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(member)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), constants.FilePermissions))
}

// standardTree has four A granules (one zipped, one broken), two B
// granules and two unrelated files.
func standardTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"2008/032/A_001.txt": span(0, 2),
		"2008/032/A_002.txt": span(2, 4),
		"2008/032/A_003.zip": span(4, 6),
		"2008/032/A_004.txt": "corrupt",
		"2008/033/A_005.txt": span(24, 26),
		"dardar/B_001.txt":   span(1, 3),
		"dardar/B_002.txt":   span(3, 5),
		"readme.txt":         "not a granule",
		"2008/notes.md":      "# notes",
	})
	return root
}

type recordingProgress struct {
	mu       sync.Mutex
	total    int
	advanced []string
	finished bool
}

func (p *recordingProgress) Start(total int) { p.total = total }
func (p *recordingProgress) Finish()         { p.finished = true }

func (p *recordingProgress) Advance(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advanced = append(p.advanced, path)
}
