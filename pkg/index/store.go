package index

import (
	"context"
	"path/filepath"

	"github.com/agentstation/wxdata/internal/persistence"
	"github.com/agentstation/wxdata/pkg/products"
	"github.com/agentstation/wxdata/pkg/save"
)

// Store writes the catalog to path. Record paths are stored relative to the
// directory containing path so the catalog can be moved together with the
// data tree. The format follows save.WithFormat, else the file extension.
// The index itself is not modified.
func (idx *Index) Store(path string, opts ...save.Option) error {
	return idx.StoreContext(context.Background(), path, opts...)
}

// StoreContext is like Store with a context for the database writer.
func (idx *Index) StoreContext(ctx context.Context, path string, opts ...save.Option) error {
	options := save.Defaults().Apply(opts...)

	path, err := expandPath(path)
	if err != nil {
		return err
	}
	doc := idx.document(filepath.Dir(path))
	format := options.Resolve(path)

	if err := persistence.Write(ctx, path, doc, format); err != nil {
		return err
	}
	idx.logger.Info().
		Str("path", path).
		Str("format", format.String()).
		Int("products", len(doc.Products)).
		Int("files", doc.Len()).
		Msg("Stored catalog")
	return nil
}

// document snapshots the catalog with paths relative to base.
func (idx *Index) document(base string) *persistence.Document {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	doc := persistence.NewDocument()
	doc.Products = make([]persistence.Product, 0, len(idx.order))
	for _, id := range idx.order {
		records := idx.files[id]
		p := persistence.Product{ID: string(id), Files: make([]persistence.File, len(records))}
		for i, rec := range records {
			p.Files[i] = persistence.File{
				Path:      relativize(base, rec.Path),
				StartTime: rec.StartTime,
				EndTime:   rec.EndTime,
			}
		}
		doc.Products = append(doc.Products, p)
	}
	return doc
}

// Load reads a catalog written by Store. Relative paths are resolved against
// the directory containing path. The options configure the returned index.
func Load(path string, opts ...Option) (*Index, error) {
	return LoadContext(context.Background(), path, opts...)
}

// LoadContext is like Load with a context for the database reader.
func LoadContext(ctx context.Context, path string, opts ...Option) (*Index, error) {
	path, err := expandPath(path)
	if err != nil {
		return nil, err
	}
	doc, format, err := persistence.Read(ctx, path)
	if err != nil {
		return nil, err
	}

	idx := New(opts...)
	base := filepath.Dir(path)
	for _, p := range doc.Products {
		records := make([]Record, len(p.Files))
		for i, f := range p.Files {
			records[i] = Record{
				Path:      absolutize(base, f.Path),
				Product:   products.ID(p.ID),
				StartTime: f.StartTime,
				EndTime:   f.EndTime,
			}
		}
		if err := idx.Add(records...); err != nil {
			_ = idx.Close()
			return nil, err
		}
	}

	idx.logger.Info().
		Str("path", path).
		Str("format", format.String()).
		Int("products", len(doc.Products)).
		Int("files", doc.Len()).
		Msg("Loaded catalog")
	return idx, nil
}

// relativize returns path relative to base in slash form, or path unchanged
// when no relative form exists.
func relativize(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func absolutize(base, path string) string {
	path = filepath.FromSlash(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
