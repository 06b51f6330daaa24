package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/notargets/OrthoBoundary/logger"
	"github.com/notargets/OrthoBoundary/mesh"
	"github.com/notargets/OrthoBoundary/orthogonal"
)

func MapConfig(path string, yc YAMLConfig) (Config, error) {
	cfg := Default()

	policy, err := orthogonal.ParseDegeneratePolicy(yc.DegeneratePolicy)
	if err != nil {
		return Config{}, invalidField(path, "degeneratePolicy", err)
	}
	cfg.DegeneratePolicy = policy

	for name, kind := range yc.RegionKinds {
		k, ok := mesh.LookupKind(kind)
		if !ok {
			return Config{}, invalidField(path, fmt.Sprintf("regionKinds.%s", name),
				fmt.Errorf("unknown region kind %q", kind))
		}
		cfg.RegionKinds[name] = k
	}

	if lvl := strings.TrimSpace(yc.Log.Level); lvl != "" {
		if _, err := logger.ParseLevel(lvl); err != nil {
			return Config{}, invalidField(path, "log.level", err)
		}
		cfg.Log.Level = lvl
	}
	if f := strings.TrimSpace(yc.Log.File); f != "" {
		if !filepath.IsAbs(f) {
			f = filepath.Join(filepath.Dir(path), f)
		}
		cfg.Log.File = f
	}
	cfg.Snapshot.Compress = yc.Snapshot.Compress
	return cfg, nil
}

// ToYAML is the inverse of MapConfig
func ToYAML(cfg Config) YAMLConfig {
	yc := YAMLConfig{
		DegeneratePolicy: cfg.DegeneratePolicy.String(),
		Log:              YAMLLog{File: cfg.Log.File, Level: cfg.Log.Level},
		Snapshot:         YAMLSnapshot{Compress: cfg.Snapshot.Compress},
	}
	if len(cfg.RegionKinds) > 0 {
		yc.RegionKinds = make(map[string]string, len(cfg.RegionKinds))
		for name, k := range cfg.RegionKinds {
			yc.RegionKinds[name] = k.String()
		}
	}
	return yc
}

func invalidField(path, field string, err error) error {
	return &Error{Op: "config.map", Path: path, Field: field, Err: err}
}
