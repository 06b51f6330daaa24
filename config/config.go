// Package config loads the per-case orthboundary.yaml settings file.
package config

import (
	"errors"
	"fmt"

	"github.com/notargets/OrthoBoundary/mesh"
	"github.com/notargets/OrthoBoundary/orthogonal"
)

// FileName is the settings file looked up in a case directory
const FileName = "orthboundary.yaml"

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	DegeneratePolicy orthogonal.DegeneratePolicy
	// RegionKinds overrides the kind derived from each region name
	RegionKinds map[string]mesh.Kind
	Log         LogConfig
	Snapshot    SnapshotConfig
}

type LogConfig struct {
	File  string
	Level string
}

type SnapshotConfig struct {
	// Compress writes new snapshot meshes as .neu.xz
	Compress bool
}

// Default returns the settings used when a case has no settings file
func Default() Config {
	return Config{
		DegeneratePolicy: orthogonal.SkipDegenerate,
		RegionKinds:      map[string]mesh.Kind{},
		Log:              LogConfig{Level: "info"},
	}
}

// Error reports a settings file that could not be read or mapped
type Error struct {
	Op    string
	Path  string
	Field string // Optional: offending key
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s (path=%s)", e.Op, ErrInvalidConfig, e.Path)
	if e.Field != "" {
		base += fmt.Sprintf(" field %s", e.Field)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalidConfig
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
