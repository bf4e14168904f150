// Package snapshot loads and encodes the seed templates a virtual
// filesystem is built from.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"deskfs/internal/logging"
	"deskfs/internal/vfs"

	"github.com/goccy/go-yaml"
)

var (
	logger = logging.GetLogger().WithPrefix("snapshot")
)

// Format identifies a seed file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported snapshot format %q (want json or yaml)", s)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer snapshot format of %s: no extension", path)
	}
	return ParseFormat(ext)
}

// Load reads the seed template stored at path. The result is validated by
// building a throwaway filesystem from it, so a template returned without
// error is always accepted by vfs.New.
func Load(path string) (*vfs.Template, error) {
	logger.Debug("Loading snapshot from: %s", path)

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("snapshot file %s is empty", path)
	}

	tmpl, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file %s: %w", path, err)
	}

	if _, err := vfs.New(tmpl); err != nil {
		return nil, fmt.Errorf("snapshot file %s: %w", path, err)
	}

	logger.Info("Snapshot loaded from %s (%d bytes)", path, len(data))
	return tmpl, nil
}

// Decode parses a template from r.
func Decode(r io.Reader, format Format) (*vfs.Template, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var tmpl vfs.Template
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &tmpl)
	case FormatYAML:
		err = yaml.Unmarshal(data, &tmpl)
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", format)
	}
	if err != nil {
		return nil, err
	}

	if tmpl.Type == "" {
		tmpl.Type = "directory"
	}
	return &tmpl, nil
}

// Encode writes tmpl to w in the requested format.
func Encode(w io.Writer, tmpl *vfs.Template, format Format) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(tmpl, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case FormatYAML:
		data, err = yaml.Marshal(tmpl)
	default:
		return fmt.Errorf("unsupported snapshot format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	logger.Trace("Writing %d bytes of %s snapshot", len(data), format)
	_, err = w.Write(data)
	return err
}
