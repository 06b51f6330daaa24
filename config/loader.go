package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a settings file. A missing file yields Default()
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, &Error{Op: "config.load", Path: path, Err: err}
	}

	var dto YAMLConfig
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&dto); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, &Error{Op: "config.load", Path: path, Err: err}
	}
	return MapConfig(path, dto)
}

// Save writes cfg back in its YAML form
func Save(path string, cfg Config) error {
	b, err := yaml.Marshal(ToYAML(cfg))
	if err != nil {
		return &Error{Op: "config.save", Path: path, Err: err}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return &Error{Op: "config.save", Path: path, Err: err}
	}
	return nil
}

// Encode writes cfg in its YAML form
func Encode(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ToYAML(cfg)); err != nil {
		return err
	}
	return enc.Close()
}
