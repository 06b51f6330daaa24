package casestore

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the per-snapshot manifest name
const ManifestFile = "manifest.yaml"

// Manifest records where a snapshot's mesh came from
type Manifest struct {
	RunID    string    `yaml:"runId"`
	Parent   string    `yaml:"parent,omitempty"` // RunID of the snapshot this one was derived from
	Snapshot int       `yaml:"snapshot"`
	Created  time.Time `yaml:"created"`
	MeshFile string    `yaml:"meshFile"`
	Blake3   string    `yaml:"blake3"`
	Command  string    `yaml:"command,omitempty"`
}

func readManifest(path string) (Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return m, nil
}

func marshalManifest(m Manifest) ([]byte, error) {
	return yaml.Marshal(m)
}

// FileBlake3 returns the hex BLAKE3 digest of a file
func FileBlake3(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
