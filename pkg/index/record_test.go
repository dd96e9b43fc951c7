package index_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/wxdata/pkg/decompress"
	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/index"
	"github.com/agentstation/wxdata/pkg/scratch"
)

func TestNewRecord(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"A_001.txt":  span(0, 2),
		"A_002.zip":  span(2, 3),
		"A_003.txt":  "broken",
		"B_001.txt":  span(5, 4),
		"readme.txt": "hello",
	})

	m := scratch.NewManager(scratch.WithParent(t.TempDir()))
	defer m.Close()
	resolver := decompress.NewResolver(m)
	registry := testRegistry()

	tests := []struct {
		name     string
		file     string
		resolver *decompress.Resolver
		want     index.Record
		wantErr  bool
	}{
		{
			name:     "plain file",
			file:     "A_001.txt",
			resolver: resolver,
			want:     index.Record{Product: productA, StartTime: t0, EndTime: t0.Add(2 * time.Hour)},
		},
		{
			name:     "zipped file",
			file:     "A_002.zip",
			resolver: resolver,
			want:     index.Record{Product: productA, StartTime: t0.Add(2 * time.Hour), EndTime: t0.Add(3 * time.Hour)},
		},
		{
			name:    "zipped file without resolver",
			file:    "A_002.zip",
			wantErr: true,
		},
		{
			name:     "unreadable contents",
			file:     "A_003.txt",
			resolver: resolver,
			wantErr:  true,
		},
		{
			name:     "end before start",
			file:     "B_001.txt",
			resolver: resolver,
			wantErr:  true,
		},
		{
			name:     "unclassified",
			file:     "readme.txt",
			resolver: resolver,
			want:     index.Record{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(root, tt.file)
			rec, err := index.NewRecord(path, registry, tt.resolver)
			assert.Equal(t, path, rec.Path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsExtraction(err))
				assert.False(t, rec.Classified())
				return
			}
			require.NoError(t, err)
			tt.want.Path = path
			assert.Equal(t, tt.want, rec)
		})
	}

	assert.Equal(t, 0, m.Live())
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     index.Record
		wantErr bool
	}{
		{"classified", index.Record{Path: "a", Product: productA, StartTime: t0, EndTime: t0}, false},
		{"unclassified", index.Record{Path: "a"}, false},
		{"no path", index.Record{Product: productA, StartTime: t0, EndTime: t0}, true},
		{"no times", index.Record{Path: "a", Product: productA}, true},
		{"times without product", index.Record{Path: "a", StartTime: t0, EndTime: t0}, true},
		{"reversed", index.Record{Path: "a", Product: productA, StartTime: t0.Add(time.Second), EndTime: t0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr {
				assert.True(t, errors.IsValidationError(err), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRecordString(t *testing.T) {
	assert.Equal(t, "ProductA file: /data/A_001.txt",
		index.Record{Path: "/data/A_001.txt", Product: productA, StartTime: t0, EndTime: t0}.String())
	assert.Equal(t, "unclassified file: /data/readme.txt", index.Record{Path: "/data/readme.txt"}.String())
}
