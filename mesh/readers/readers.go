package readers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/notargets/OrthoBoundary/mesh"
	"github.com/ulikunitz/xz"
)

// Format identifies a supported mesh file format
type Format uint8

const (
	GambitNeutral Format = iota
)

func (f Format) String() string {
	switch f {
	case GambitNeutral:
		return "gambit-neutral"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// DetectFormat determines the mesh format and compression from a file name.
// A trailing .xz selects xz compression of the underlying format
func DetectFormat(filename string) (format Format, compressed bool, err error) {
	name := strings.ToLower(filepath.Base(filename))
	if strings.HasSuffix(name, ".xz") {
		compressed = true
		name = strings.TrimSuffix(name, ".xz")
	}
	switch filepath.Ext(name) {
	case ".neu":
		return GambitNeutral, compressed, nil
	}
	return 0, false, fmt.Errorf("unsupported mesh file format: %s", filename)
}

// ReadMeshFile reads a mesh file, choosing the reader from the file extension
func ReadMeshFile(filename string) (*mesh.Mesh, error) {
	format, compressed, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	if !compressed {
		switch format {
		case GambitNeutral:
			return ReadGambitNeutral(filename)
		}
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	xr, err := xz.NewReader(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	m, err := Decode(xr, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

// Decode reads an uncompressed mesh stream of the given format
func Decode(r io.Reader, format Format) (*mesh.Mesh, error) {
	switch format {
	case GambitNeutral:
		return DecodeGambitNeutral(r)
	}
	return nil, fmt.Errorf("no decoder for %v", format)
}

// Encode writes an uncompressed mesh stream of the given format
func Encode(w io.Writer, m *mesh.Mesh, format Format) error {
	switch format {
	case GambitNeutral:
		return EncodeGambitNeutral(w, m)
	}
	return fmt.Errorf("no encoder for %v", format)
}

// EncodeFile writes m to w in the format implied by filename, compressing
// with xz when the name ends in .xz
func EncodeFile(w io.Writer, m *mesh.Mesh, filename string) error {
	format, compressed, err := DetectFormat(filename)
	if err != nil {
		return err
	}
	if !compressed {
		return Encode(w, m, format)
	}
	xw, err := xz.NewWriter(w)
	if err != nil {
		return err
	}
	if err := Encode(xw, m, format); err != nil {
		xw.Close()
		return err
	}
	return xw.Close()
}

// WriteMeshFile writes m to filename, choosing the writer from the extension
func WriteMeshFile(filename string, m *mesh.Mesh) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := EncodeFile(f, m, filename); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
