package wxdata_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/wxdata"
	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/index"
	"github.com/agentstation/wxdata/pkg/logging"
	"github.com/agentstation/wxdata/pkg/products"
)

const (
	orbits products.ID = "Orbits"
	swaths products.ID = "Swaths"
)

var epoch = time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

type stubReader struct{ start, end time.Time }

func (r stubReader) StartTime() (time.Time, error) { return r.start, nil }
func (r stubReader) EndTime() (time.Time, error)   { return r.end, nil }
func (r stubReader) Get(string) (any, error)       { return nil, errors.ErrNotFound }
func (r stubReader) Attributes() []string          { return nil }
func (r stubReader) Close() error                  { return nil }

// openHours reads a file holding the start and end as hours after epoch.
func openHours(path string) (products.Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var from, to int
	if _, err := fmt.Sscanf(strings.TrimSpace(string(data)), "%d %d", &from, &to); err != nil {
		return nil, err
	}
	return stubReader{
		start: epoch.Add(time.Duration(from) * time.Hour),
		end:   epoch.Add(time.Duration(to) * time.Hour),
	}, nil
}

func registry() *products.Registry {
	r := products.NewRegistry()
	r.MustRegister(orbits, `orbit_\d+`, openHours)
	r.MustRegister(swaths, `swath_\d+`, openHours)
	return r
}

func write(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func newClient(t *testing.T, opts ...wxdata.Option) wxdata.Client {
	t.Helper()
	opts = append([]wxdata.Option{
		wxdata.WithRegistry(registry()),
		wxdata.WithScratchDir(t.TempDir()),
		wxdata.WithLogger(logging.NewTestLogger(t).Logger),
	}, opts...)
	c, err := wxdata.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

type events struct {
	mu      sync.Mutex
	added   map[products.ID]int
	removed []products.ID
	scans   int
}

func watch(c wxdata.Client) *events {
	e := &events{added: make(map[products.ID]int)}
	c.OnProductAdded(func(id products.ID, files int) {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.added[id] = files
	})
	c.OnProductRemoved(func(id products.ID) {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.removed = append(e.removed, id)
	})
	c.OnScanComplete(func(*index.ScanStats) {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.scans++
	})
	return e
}

func TestNewDefaults(t *testing.T) {
	c, err := wxdata.New(wxdata.WithScratchDir(t.TempDir()))
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, 0, c.Index().Len())
	assert.NotZero(t, c.Index().Registry().Len(), "built-in products are registered by default")
	assert.Empty(t, c.Roots())
}

func TestNewInvalidOptions(t *testing.T) {
	for name, opt := range map[string]wxdata.Option{
		"workers":  wxdata.WithWorkers(0),
		"interval": wxdata.WithAutoRescanInterval(-time.Second),
		"catalog":  wxdata.WithCatalog(""),
		"registry": wxdata.WithRegistry(nil),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := wxdata.New(opt)
			assert.True(t, errors.IsValidationError(err), "got %v", err)
		})
	}
}

func TestGenerateFiresHooks(t *testing.T) {
	root := t.TempDir()
	write(t, root, map[string]string{
		"orbit_1.dat": "0 1",
		"orbit_2.dat": "1 2",
		"swath_1.dat": "0 3",
		"notes.txt":   "n/a",
	})

	c := newClient(t, wxdata.WithWorkers(2))
	e := watch(c)

	stats, err := c.Generate(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Indexed)
	assert.Equal(t, map[products.ID]int{orbits: 2, swaths: 1}, e.added)
	assert.Equal(t, 1, e.scans)
	assert.Equal(t, []string{root}, c.Roots())

	// scanning the same root again adds records but no new products
	e.added = map[products.ID]int{}
	_, err = c.Generate(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, e.added)
	assert.Equal(t, []string{root}, c.Roots())
	assert.Equal(t, 4, c.Index().Count(orbits))
}

func TestRescan(t *testing.T) {
	c := newClient(t)

	_, err := c.Rescan(context.Background())
	assert.True(t, errors.IsValidationError(err))

	root := t.TempDir()
	write(t, root, map[string]string{"orbit_1.dat": "0 1", "swath_1.dat": "0 1"})
	_, err = c.Generate(context.Background(), root)
	require.NoError(t, err)
	e := watch(c)

	require.NoError(t, os.Remove(filepath.Join(root, "swath_1.dat")))
	write(t, root, map[string]string{"orbit_2.dat": "1 2"})

	stats, err := c.Rescan(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 2, c.Index().Count(orbits))
	assert.False(t, c.Index().Has(swaths))
	assert.Equal(t, []products.ID{swaths}, e.removed)
	assert.Empty(t, e.added)
}

func TestRescanKeepsIndexOnFailure(t *testing.T) {
	c := newClient(t)
	root := t.TempDir()
	write(t, root, map[string]string{"orbit_1.dat": "0 1"})
	_, err := c.Generate(context.Background(), root)
	require.NoError(t, err)
	before := c.Index()

	require.NoError(t, os.RemoveAll(root))
	_, err = c.Rescan(context.Background())
	require.Error(t, err)
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
	assert.Same(t, before, c.Index())
}

func TestStoreAndLoad(t *testing.T) {
	root := t.TempDir()
	write(t, root, map[string]string{"orbit_1.dat": "0 1", "sub/swath_1.dat": "2 3"})
	catalog := filepath.Join(root, "wxdata.index.json")

	c := newClient(t)
	_, err := c.Generate(context.Background(), root)
	require.NoError(t, err)
	require.NoError(t, c.Store(context.Background(), catalog))

	other := newClient(t, wxdata.WithCatalog(catalog))
	assert.Equal(t, []products.ID{orbits, swaths}, other.Index().Products())
	files, err := other.Index().Files(swaths)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "sub", "swath_1.dat"), files[0].Path)

	e := watch(other)
	require.Error(t, other.Load(context.Background(), filepath.Join(root, "missing.yaml")))
	assert.Equal(t, 2, other.Index().Len(), "failed load keeps the current index")

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, newClient(t).Store(context.Background(), empty))
	require.NoError(t, other.Load(context.Background(), empty))
	assert.Equal(t, 0, other.Index().Len())
	assert.ElementsMatch(t, []products.ID{orbits, swaths}, e.removed)
}

func TestNewMissingCatalog(t *testing.T) {
	_, err := wxdata.New(
		wxdata.WithScratchDir(t.TempDir()),
		wxdata.WithCatalog(filepath.Join(t.TempDir(), "nope.yaml")),
	)
	var resErr *errors.ResourceError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "load", resErr.Operation)
}

func TestAutoRescan(t *testing.T) {
	root := t.TempDir()
	write(t, root, map[string]string{"orbit_1.dat": "0 1"})

	c := newClient(t, wxdata.WithAutoRescan(true), wxdata.WithAutoRescanInterval(10*time.Millisecond))
	_, err := c.Generate(context.Background(), root)
	require.NoError(t, err)

	write(t, root, map[string]string{"orbit_2.dat": "1 2"})
	assert.Eventually(t, func() bool {
		return c.Index().Count(orbits) == 2
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, c.AutoRescanOff())
	require.NoError(t, c.AutoRescanOff())
}

func TestClose(t *testing.T) {
	c, err := wxdata.New(wxdata.WithScratchDir(t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestRescanWaitsForRunningGenerate(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	write(t, first, map[string]string{"orbit_1.dat": "0 1"})
	write(t, second, map[string]string{"swath_1.dat": "1 2"})

	// readers of the second tree block until release is closed
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	gated := func(path string) (products.Reader, error) {
		if strings.HasPrefix(path, second) {
			once.Do(func() { close(entered) })
			<-release
		}
		return openHours(path)
	}
	r := products.NewRegistry()
	r.MustRegister(orbits, `orbit_\d+`, openHours)
	r.MustRegister(swaths, `swath_\d+`, gated)

	c := newClient(t, wxdata.WithRegistry(r))
	_, err := c.Generate(context.Background(), first)
	require.NoError(t, err)

	generated := make(chan error, 1)
	go func() {
		_, err := c.Generate(context.Background(), second)
		generated <- err
	}()
	<-entered

	rescanned := make(chan error, 1)
	go func() {
		_, err := c.Rescan(context.Background())
		rescanned <- err
	}()

	select {
	case err := <-rescanned:
		t.Fatalf("Rescan returned while Generate was running: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-generated)
	require.NoError(t, <-rescanned)

	assert.Equal(t, []string{first, second}, c.Roots())
	assert.Equal(t, []products.ID{orbits, swaths}, c.Index().Products())
	assert.Equal(t, 1, c.Index().Count(swaths))
}
