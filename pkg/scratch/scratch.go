// Package scratch manages the temporary area where archive members are
// extracted while a data file is being read.
//
// A Manager owns one private directory, created on first use and removed by
// Close. Each extracted file lives in its own uniquely named subdirectory and
// is represented by an Artifact that the creating operation must Release.
package scratch

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/wxdata/pkg/constants"
	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/logging"
)

// Manager hands out scratch files. It is safe for concurrent use.
type Manager struct {
	mu     sync.Mutex
	parent string
	dir    string
	live   map[string]*Artifact
	closed bool
	logger *zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithParent places the scratch directory under parent instead of the
// system temporary directory.
func WithParent(parent string) Option {
	return func(m *Manager) {
		m.parent = parent
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager returns a Manager. No directory is created until the first
// call to Create.
func NewManager(opts ...Option) *Manager {
	m := &Manager{live: make(map[string]*Artifact)}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.OrDefault(m.logger)
	return m
}

// Dir returns the scratch directory, creating it if needed.
func (m *Manager) Dir() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureDir()
}

func (m *Manager) ensureDir() (string, error) {
	if m.closed {
		return "", errors.NewResourceError("create", "scratch directory", "", os.ErrClosed)
	}
	if m.dir != "" {
		return m.dir, nil
	}
	if m.parent != "" {
		if err := os.MkdirAll(m.parent, constants.DirPermissions); err != nil {
			return "", errors.WrapIO("create", m.parent, err)
		}
	}
	dir, err := os.MkdirTemp(m.parent, constants.ScratchDirPattern)
	if err != nil {
		return "", errors.WrapIO("create", m.parent, err)
	}
	m.dir = dir
	m.logger.Debug().Str("dir", dir).Msg("Created scratch directory")
	return dir, nil
}

// Create makes a new empty file called name inside a fresh subdirectory and
// returns it open for writing together with its Artifact. Only the base of
// name is used. The caller closes the file and releases the artifact.
func (m *Manager) Create(name string) (*Artifact, *os.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir, err := m.ensureDir()
	if err != nil {
		return nil, nil, err
	}

	id := uuid.NewString()
	sub := filepath.Join(dir, id)
	if err := os.Mkdir(sub, constants.ScratchDirPermissions); err != nil {
		return nil, nil, errors.WrapIO("create", sub, err)
	}

	path := filepath.Join(sub, safeName(name))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		_ = os.RemoveAll(sub)
		return nil, nil, errors.WrapIO("create", path, err)
	}

	a := &Artifact{id: id, path: path, dir: sub, owner: m}
	m.live[id] = a
	return a, f, nil
}

// Live returns the number of artifacts not yet released.
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Close removes the scratch directory and everything still inside it.
// Further calls to Create fail. Close is idempotent.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	if n := len(m.live); n > 0 {
		m.logger.Warn().Int("artifacts", n).Msg("Closing scratch area with unreleased artifacts")
	}
	m.live = make(map[string]*Artifact)
	if m.dir == "" {
		return nil
	}
	dir := m.dir
	m.dir = ""
	if err := os.RemoveAll(dir); err != nil {
		return errors.WrapIO("delete", dir, err)
	}
	m.logger.Debug().Str("dir", dir).Msg("Removed scratch directory")
	return nil
}

func (m *Manager) forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.live, id)
}

func safeName(name string) string {
	base := filepath.Base(filepath.Clean("/" + filepath.FromSlash(name)))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "member"
	}
	return base
}

// Artifact is an extracted file exclusively owned by the operation that
// created it.
type Artifact struct {
	id    string
	path  string
	dir   string
	owner *Manager
	once  sync.Once
	err   error
}

// Path returns the location of the extracted file.
func (a *Artifact) Path() string {
	return a.path
}

// Release deletes the extracted file. It is safe to call more than once and
// on a nil Artifact.
func (a *Artifact) Release() error {
	if a == nil {
		return nil
	}
	a.once.Do(func() {
		if err := os.RemoveAll(a.dir); err != nil {
			a.err = errors.WrapIO("delete", a.dir, err)
		}
		a.owner.forget(a.id)
	})
	return a.err
}
