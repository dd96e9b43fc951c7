package index

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/sourcegraph/conc/pool"

	"github.com/agentstation/wxdata/pkg/constants"
	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/logging"
	"github.com/agentstation/wxdata/pkg/products"
)

// Progress receives scan progress. Start is called once with the number of
// candidate files, Advance after each file, Finish when the scan ends.
// Calls are serialized by the index.
type Progress interface {
	Start(total int)
	Advance(path string)
	Finish()
}

// Failure is a file whose metadata could not be extracted.
type Failure struct {
	Path    string      `json:"path" yaml:"path"`
	Product products.ID `json:"product,omitempty" yaml:"product,omitempty"`
	Err     error       `json:"-" yaml:"-"`
	Message string      `json:"error" yaml:"error"`
}

// ScanStats summarizes one call to Generate.
type ScanStats struct {
	Root         string              `json:"root" yaml:"root"`
	Candidates   int                 `json:"candidates" yaml:"candidates"`
	Ignored      int                 `json:"ignored" yaml:"ignored"`
	Indexed      int                 `json:"indexed" yaml:"indexed"`
	Unclassified int                 `json:"unclassified" yaml:"unclassified"`
	Failed       int                 `json:"failed" yaml:"failed"`
	ByProduct    map[products.ID]int `json:"by_product" yaml:"by_product"`
	Failures     []Failure           `json:"failures,omitempty" yaml:"failures,omitempty"`
	Duration     time.Duration       `json:"duration" yaml:"duration"`
}

type scanResult struct {
	done bool
	rec  Record
	err  error
}

// Generate scans the tree under root and appends a record for every
// classified file whose metadata can be read. Files are visited in lexical
// order and records are appended in that order whatever the number of
// workers. Unclassified files are skipped; files that fail extraction are
// skipped, logged and reported in the returned stats. Only a failure to walk
// root itself aborts the scan. A leading ~ in root is expanded.
//
// When ctx is canceled the records read so far are kept and an error
// matching errors.ErrCanceled is returned along with the stats.
func (idx *Index) Generate(ctx context.Context, root string) (*ScanStats, error) {
	began := time.Now()

	root, err := expandPath(root)
	if err != nil {
		return nil, err
	}
	log := idx.logger.With().Str("root", root).Logger()
	ctx = logging.WithLogger(ctx, &log)

	matcher, err := idx.ignoreMatcher(root)
	if err != nil {
		return nil, err
	}

	stats := &ScanStats{Root: root, ByProduct: make(map[products.ID]int)}
	paths, err := idx.collect(ctx, root, matcher, stats)
	if err != nil {
		return nil, err
	}
	stats.Candidates = len(paths)
	log.Info().Int("files", len(paths)).Int("ignored", stats.Ignored).Int("workers", idx.workers).Msg("Found files")

	progress := newSerialProgress(idx.progress)
	progress.Start(len(paths))
	results := idx.process(ctx, paths, progress)
	progress.Finish()

	idx.merge(ctx, results, stats)
	stats.Duration = time.Since(began)

	log.Info().
		Int("indexed", stats.Indexed).
		Int("unclassified", stats.Unclassified).
		Int("failed", stats.Failed).
		Dur("duration", stats.Duration).
		Msg("Scan complete")

	if ctx.Err() != nil {
		return stats, errors.Join(errors.ErrCanceled, ctx.Err())
	}
	return stats, nil
}

// collect walks root in lexical order and returns the regular files not
// excluded by the ignore rules.
func (idx *Index) collect(ctx context.Context, root string, matcher *ignore.GitIgnore, stats *ScanStats) ([]string, error) {
	log := logging.FromContext(ctx)

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Warn().Err(err).Str("path", path).Msg("Skipping unreadable path")
			return nil
		}
		if path == root {
			return nil
		}

		if matcher != nil && matcher.MatchesPath(ignorePath(root, path, d.IsDir())) {
			stats.Ignored++
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, errors.WrapIO("walk", root, err)
	}
	return paths, nil
}

// process builds one record per path. Each worker writes only its own slot.
func (idx *Index) process(ctx context.Context, paths []string, progress Progress) []scanResult {
	results := make([]scanResult, len(paths))

	build := func(i int) {
		if ctx.Err() != nil {
			return
		}
		rec, err := NewRecord(paths[i], idx.registry, idx.resolver)
		results[i] = scanResult{done: true, rec: rec, err: err}
		progress.Advance(paths[i])
	}

	if idx.workers <= 1 {
		for i := range paths {
			if ctx.Err() != nil {
				break
			}
			build(i)
		}
		return results
	}

	p := pool.New().WithMaxGoroutines(idx.workers).WithContext(ctx)
	for i := range paths {
		p.Go(func(context.Context) error {
			build(i)
			return nil
		})
	}
	_ = p.Wait()
	return results
}

// merge appends the results in scan order under a single lock.
func (idx *Index) merge(ctx context.Context, results []scanResult, stats *ScanStats) {
	log := logging.FromContext(ctx)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, r := range results {
		switch {
		case !r.done:
			continue
		case r.err != nil:
			stats.Failed++
			f := Failure{Path: r.rec.Path, Err: r.err, Message: r.err.Error()}
			var ee *errors.ExtractionError
			if errors.As(r.err, &ee) {
				f.Product = products.ID(ee.Product)
			}
			if len(stats.Failures) < constants.MaxReportedFailures {
				stats.Failures = append(stats.Failures, f)
			}
			log.Warn().Err(r.err).Str("path", r.rec.Path).Msg("Skipping file")
		case !r.rec.Classified():
			stats.Unclassified++
		default:
			idx.appendLocked(r.rec)
			stats.Indexed++
			stats.ByProduct[r.rec.Product]++
			log.Debug().Str("product", string(r.rec.Product)).Str("path", r.rec.Path).Msg("Indexed file")
		}
	}
}

// ignoreMatcher combines the patterns given as options with those of the
// ignore file at root, if any.
func (idx *Index) ignoreMatcher(root string) (*ignore.GitIgnore, error) {
	lines := append([]string(nil), idx.ignore...)

	f, err := os.Open(filepath.Join(root, constants.IgnoreFileName))
	switch {
	case err == nil:
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		f.Close()
		if err := scanner.Err(); err != nil {
			return nil, errors.WrapIO("read", f.Name(), err)
		}
	case !os.IsNotExist(err):
		return nil, errors.WrapIO("open", filepath.Join(root, constants.IgnoreFileName), err)
	}

	if len(lines) == 0 {
		return nil, nil
	}
	return ignore.CompileIgnoreLines(lines...), nil
}

// ignorePath returns path relative to root in slash form, with a trailing
// slash for directories so that "dir/" patterns match them.
func ignorePath(root, path string, dir bool) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	if dir {
		rel += "/"
	}
	return rel
}

// expandPath expands a leading ~ and returns an absolute, cleaned path.
func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.NewConfigError("path", "cannot expand ~", err)
		}
		path = filepath.Join(home, path[1:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.WrapIO("resolve", path, err)
	}
	return abs, nil
}

// serialProgress serializes calls to a Progress and tolerates nil.
type serialProgress struct {
	mu sync.Mutex
	p  Progress
}

func newSerialProgress(p Progress) *serialProgress {
	return &serialProgress{p: p}
}

func (s *serialProgress) Start(total int) {
	if s.p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Start(total)
}

func (s *serialProgress) Advance(path string) {
	if s.p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Advance(path)
}

func (s *serialProgress) Finish() {
	if s.p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Finish()
}
