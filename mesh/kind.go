package mesh

import "strings"

// Kind classifies a region by the physical meaning of its faces
type Kind uint8

const (
	// Ordinary is a physical boundary: walls, inlets, outlets, far-field
	Ordinary Kind = iota
	Periodic      // Cyclic pairing with another region
	Symmetry      // Symmetry plane or wedge
	Degenerate    // Zero-thickness direction, e.g. the front/back of a 2D case
	InterfaceOnly // Coupling interface between domains
)

// String returns the lowercase name of a Kind
func (k Kind) String() string {
	switch k {
	case Ordinary:
		return "ordinary"
	case Periodic:
		return "periodic"
	case Symmetry:
		return "symmetry"
	case Degenerate:
		return "degenerate"
	case InterfaceOnly:
		return "interface"
	}
	return "unknown"
}

// IsPhysical reports whether faces of this kind form a boundary that
// vertices are corrected against
func (k Kind) IsPhysical() bool {
	return k == Ordinary
}

// KindNameMap maps common region type names to a Kind.
// Keys are lowercase for case-insensitive matching
var KindNameMap = map[string]Kind{
	"ordinary": Ordinary,
	"patch":    Ordinary,
	"wall":     Ordinary,

	"periodic":        Periodic,
	"cyclic":          Periodic,
	"cyclicami":       Periodic,
	"processorcyclic": Periodic,

	"symmetry":      Symmetry,
	"symmetryplane": Symmetry,
	"symmetric":     Symmetry,
	"wedge":         Symmetry,

	"degenerate": Degenerate,
	"empty":      Degenerate,

	"interface":     InterfaceOnly,
	"interfaceonly": InterfaceOnly,
	"internal":      InterfaceOnly,
	"processor":     InterfaceOnly,
}

// ParseKind converts a region or type name to a Kind.
// Unknown names are Ordinary
func ParseKind(name string) Kind {
	if k, ok := LookupKind(name); ok {
		return k
	}
	return Ordinary
}

// LookupKind is ParseKind that also reports whether the name was recognised
func LookupKind(name string) (Kind, bool) {
	k, ok := KindNameMap[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}
