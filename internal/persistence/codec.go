package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/wxdata/pkg/constants"
	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/save"
)

var sqliteHeader = []byte("SQLite format 3\x00")

// Write stores doc at path in the given format, replacing any existing file.
// The file is written next to its destination and renamed into place.
func Write(ctx context.Context, path string, doc *Document, format save.Format) error {
	if format == save.FormatAuto {
		format = save.FormatFromPath(path)
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}

	tmp := path + ".tmp"
	_ = os.Remove(tmp)

	var err error
	switch format {
	case save.FormatSQLite:
		err = writeSQLite(ctx, tmp, doc)
	case save.FormatJSON, save.FormatYAML:
		var data []byte
		data, err = Marshal(doc, format)
		if err == nil {
			err = errors.WrapIO("write", tmp, os.WriteFile(tmp, data, constants.FilePermissions))
		}
	default:
		err = errors.NewValidationError("format", format.String(), "unsupported catalog format")
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.WrapIO("rename", path, err)
	}
	return nil
}

// Marshal encodes doc as YAML or JSON.
func Marshal(doc *Document, format save.Format) ([]byte, error) {
	switch format {
	case save.FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		return append(data, '\n'), nil
	case save.FormatYAML, save.FormatAuto:
		data, err := yaml.MarshalWithOptions(doc, yaml.IndentSequence(true))
		if err != nil {
			return nil, errors.WrapParse("yaml", "", err)
		}
		return data, nil
	}
	return nil, errors.NewValidationError("format", format.String(), "format cannot be marshaled to bytes")
}

// Read loads and validates the document at path, detecting its format from
// the file content.
func Read(ctx context.Context, path string) (*Document, save.Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, save.FormatAuto, errors.WrapIO("read", path, err)
	}

	format := Sniff(data)
	var doc *Document
	switch format {
	case save.FormatSQLite:
		doc, err = readSQLite(ctx, path)
	default:
		doc, err = Unmarshal(data, format)
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
	}
	if err != nil {
		return nil, format, err
	}
	if err := doc.Validate(); err != nil {
		return nil, format, err
	}
	return doc, format, nil
}

// Sniff returns the encoding of a catalog file from its first bytes.
func Sniff(data []byte) save.Format {
	if bytes.HasPrefix(data, sqliteHeader) {
		return save.FormatSQLite
	}
	if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '{' {
		return save.FormatJSON
	}
	return save.FormatYAML
}

// Unmarshal decodes a YAML or JSON document.
func Unmarshal(data []byte, format save.Format) (*Document, error) {
	doc := &Document{}
	switch format {
	case save.FormatJSON:
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
	default:
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, errors.NewParseError("yaml", "", "empty catalog", nil)
		}
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, errors.WrapParse("yaml", "", err)
		}
	}
	return doc, nil
}
