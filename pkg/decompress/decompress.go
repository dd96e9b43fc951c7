// Package decompress makes archived data files readable by product readers.
//
// Resolve passes ordinary files through untouched. Files in a supported
// container (.zip, .gz, matched case-insensitively) have their first member
// extracted into the scratch area and the caller receives the extracted path
// together with the Artifact that owns it. Only the first member of a
// multi-member archive is ever used.
package decompress

import (
	"archive/zip"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/logging"
	"github.com/agentstation/wxdata/pkg/scratch"
)

// Format is a supported archive container.
type Format string

// Supported archive formats.
const (
	FormatNone Format = ""
	FormatZip  Format = "zip"
	FormatGzip Format = "gzip"
)

// Detect returns the archive format implied by the extension of path.
func Detect(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return FormatZip
	case ".gz":
		return FormatGzip
	}
	return FormatNone
}

// IsArchive reports whether path names a supported archive.
func IsArchive(path string) bool {
	return Detect(path) != FormatNone
}

// Resolver extracts archive members into a scratch area.
type Resolver struct {
	scratch *scratch.Manager
	logger  *zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver returns a Resolver extracting into m.
func NewResolver(m *scratch.Manager, opts ...Option) *Resolver {
	r := &Resolver{scratch: m}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrDefault(r.logger)
	return r
}

// Resolve returns a path a reader can open. For archives the returned
// artifact is non-nil and must be released once the file is no longer read.
// Malformed or empty archives fail with an *errors.ArchiveError.
func (r *Resolver) Resolve(path string) (string, *scratch.Artifact, error) {
	var (
		art *scratch.Artifact
		err error
	)
	switch Detect(path) {
	case FormatZip:
		art, err = r.extractZip(path)
	case FormatGzip:
		art, err = r.extractGzip(path)
	default:
		return path, nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	r.logger.Debug().Str("archive", path).Str("member", art.Path()).Msg("Extracted archive member")
	return art.Path(), art, nil
}

func (r *Resolver) extractZip(path string) (*scratch.Artifact, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapIO("open", path, err)
		}
		return nil, errors.NewArchiveError(string(FormatZip), path, "cannot read archive", err)
	}
	defer zr.Close()

	if len(zr.File) == 0 {
		return nil, errors.NewArchiveError(string(FormatZip), path, "archive has no members", nil)
	}
	member := zr.File[0]
	if member.FileInfo().IsDir() {
		return nil, errors.NewArchiveError(string(FormatZip), path, "first member "+member.Name+" is a directory", nil)
	}

	rc, err := member.Open()
	if err != nil {
		return nil, errors.NewArchiveError(string(FormatZip), path, "cannot open member "+member.Name, err)
	}
	defer rc.Close()

	return r.write(FormatZip, path, member.Name, rc)
}

func (r *Resolver) extractGzip(path string) (*scratch.Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, errors.NewArchiveError(string(FormatGzip), path, "cannot read archive", err)
	}
	defer gz.Close()
	gz.Multistream(false)

	name := gz.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return r.write(FormatGzip, path, name, gz)
}

func (r *Resolver) write(format Format, archive, name string, src io.Reader) (*scratch.Artifact, error) {
	art, dst, err := r.scratch.Create(name)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = art.Release()
		return nil, errors.NewArchiveError(string(format), archive, "cannot extract "+name, err)
	}
	if err := dst.Close(); err != nil {
		_ = art.Release()
		return nil, errors.WrapIO("write", art.Path(), err)
	}
	return art, nil
}
