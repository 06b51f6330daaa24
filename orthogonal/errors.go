package orthogonal

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for classification with errors.Is
var (
	ErrConfiguration    = errors.New("configuration error")
	ErrDegenerateNormal = errors.New("degenerate normal")
)

// ConfigurationError reports a region list that resolved to no regions, or
// that could not be parsed. It is raised before any vertex is read
type ConfigurationError struct {
	List     string // "include" or "exclude"
	Patterns []string
	Valid    []string
	Err      error // Optional: pattern compile error
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s regions (%s)", ErrConfiguration, e.List, strings.Join(e.Patterns, " "))
	if e.Err != nil {
		return base + ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s: cannot find any regions matching; valid regions are (%s)",
		base, strings.Join(e.Valid, " "))
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigurationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DegenerateNormalError reports a vertex whose incident face normals sum to
// zero (or to a non-finite vector), so no normal can be estimated
type DegenerateNormalError struct {
	Region string
	Vertex int // Global vertex index, -1 when unknown
	Faces  int // Number of incident faces
}

func (e *DegenerateNormalError) Error() string {
	return fmt.Sprintf("%s: vertex %d on region %s (%d incident faces)",
		ErrDegenerateNormal, e.Vertex, e.Region, e.Faces)
}

func (e *DegenerateNormalError) Is(target error) bool {
	return target == ErrDegenerateNormal
}
