package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/activitylens/activitylens/pkg/cache"
	"github.com/activitylens/activitylens/pkg/errors"
)

// Format names a scene encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the encoding from a file extension. Anything other
// than .yaml or .yml is JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown scene format %q (want json or yaml)", s)
}

// =============================================================================
// Scene Serialization API
// =============================================================================

// MarshalScene encodes a scene in the given format.
func MarshalScene(s Scene, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteScene(s, &buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteScene encodes a scene to w.
func WriteScene(s Scene, w io.Writer, f Format) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown scene format %q", f)
}

// WriteSceneFile writes a scene to path, choosing the format by extension.
func WriteSceneFile(s Scene, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteScene(s, f, FormatForPath(path))
}

// ReadScene decodes a scene from r.
func ReadScene(r io.Reader, f Format) (Scene, error) {
	var s Scene
	var err error
	switch f {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&s)
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&s)
	default:
		return Scene{}, errors.New(errors.ErrCodeInvalidFormat, "unknown scene format %q", f)
	}
	if err == io.EOF {
		return Scene{}, errors.New(errors.ErrCodeInvalidScene, "empty scene")
	}
	if err != nil {
		return Scene{}, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode %s", f)
	}
	return s, nil
}

// ReadSceneFile reads a scene from path, choosing the format by extension.
func ReadSceneFile(path string) (Scene, error) {
	if err := errors.ValidatePath(path); err != nil {
		return Scene{}, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Scene{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return Scene{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadScene(f, FormatForPath(path))
}

// Hash returns a content hash of the scene's canonical JSON form, used to key
// rendered artifacts.
func Hash(s Scene) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("hash scene: %w", err)
	}
	return cache.Hash(data), nil
}
