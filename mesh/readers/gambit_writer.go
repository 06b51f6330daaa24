package readers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/notargets/OrthoBoundary/mesh"
)

var geometryToGambit = map[mesh.GeometryType]int{
	mesh.Hex:     gambitBrick,
	mesh.Prism:   gambitWedge,
	mesh.Tet:     gambitTetra,
	mesh.Pyramid: gambitPyramid,
}

// WriteGambitNeutral writes m to filename in Gambit neutral format
func WriteGambitNeutral(filename string, m *mesh.Mesh) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := EncodeGambitNeutral(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeGambitNeutral writes m as a Gambit neutral stream. Node and element
// ids are renumbered 1..N in storage order
func EncodeGambitNeutral(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)

	zones := m.Zones
	if len(zones) == 0 {
		all := make([]int, len(m.Cells))
		for i := range all {
			all[i] = i
		}
		zones = []mesh.Zone{{Name: "fluid", Material: 2, Flags: []int{0}, Cells: all}}
	}
	title := m.Title
	if title == "" {
		title = filepath.Base(os.Args[0])
	}

	fmt.Fprintf(bw, "        CONTROL INFO 2.0.0\n")
	fmt.Fprintf(bw, "** GAMBIT NEUTRAL FILE\n")
	fmt.Fprintf(bw, "%s\n", title)
	fmt.Fprintf(bw, "PROGRAM:          OrthoBoundary     VERSION:  2.0.0\n")
	fmt.Fprintf(bw, "%s\n", time.Now().Format("Mon Jan _2 15:04:05 2006"))
	fmt.Fprintf(bw, "     NUMNP     NELEM     NGRPS    NBSETS     NDFCD     NDFVL\n")
	fmt.Fprintf(bw, "%10d%10d%10d%10d%10d%10d\n",
		len(m.Vertices), len(m.Cells), len(zones), len(m.Regions)+len(m.PointSets), 3, 3)
	fmt.Fprintf(bw, "ENDOFSECTION\n")

	fmt.Fprintf(bw, "   NODAL COORDINATES 2.0.0\n")
	for i, v := range m.Vertices {
		fmt.Fprintf(bw, "%10d%25.16e%25.16e%25.16e\n", i+1, v.X, v.Y, v.Z)
	}
	fmt.Fprintf(bw, "ENDOFSECTION\n")

	fmt.Fprintf(bw, "      ELEMENTS/CELLS 2.0.0\n")
	for k, c := range m.Cells {
		ntype, ok := geometryToGambit[c.Type]
		if !ok {
			return fmt.Errorf("cell %d: no Gambit element type for %v", k, c.Type)
		}
		fmt.Fprintf(bw, "%8d %2d %2d ", k+1, ntype, len(c.Vertices))
		for i, v := range c.Vertices {
			if i > 0 && i%7 == 0 {
				fmt.Fprintf(bw, "\n               ")
			}
			fmt.Fprintf(bw, "%8d", v+1)
		}
		fmt.Fprintf(bw, "\n")
	}
	fmt.Fprintf(bw, "ENDOFSECTION\n")

	for g, z := range zones {
		fmt.Fprintf(bw, "       ELEMENT GROUP 2.0.0\n")
		fmt.Fprintf(bw, "GROUP: %10d ELEMENTS: %10d MATERIAL: %10d NFLAGS: %10d\n",
			g+1, len(z.Cells), z.Material, len(z.Flags))
		fmt.Fprintf(bw, "%32s\n", z.Name)
		writeInts(bw, z.Flags, 0, 10)
		writeInts(bw, z.Cells, 1, 10)
		fmt.Fprintf(bw, "ENDOFSECTION\n")
	}

	for _, r := range m.Regions {
		fmt.Fprintf(bw, "       BOUNDARY CONDITIONS 2.0.0\n")
		fmt.Fprintf(bw, "%32s%8d%8d%8d", r.Name, 1, len(r.Faces), 0)
		for _, c := range r.Codes {
			fmt.Fprintf(bw, "%8d", c)
		}
		fmt.Fprintf(bw, "\n")
		for _, ref := range r.Faces {
			fmt.Fprintf(bw, "%10d%5d%5d\n",
				ref.Cell+1, geometryToGambit[m.Cells[ref.Cell].Type], ref.Face+1)
		}
		fmt.Fprintf(bw, "ENDOFSECTION\n")
	}

	for _, ps := range m.PointSets {
		nvalues := 0
		if len(ps.Values) > 0 {
			nvalues = len(ps.Values[0])
		}
		fmt.Fprintf(bw, "       BOUNDARY CONDITIONS 2.0.0\n")
		fmt.Fprintf(bw, "%32s%8d%8d%8d", ps.Name, 0, len(ps.Points), nvalues)
		for _, c := range ps.Codes {
			fmt.Fprintf(bw, "%8d", c)
		}
		fmt.Fprintf(bw, "\n")
		for i, p := range ps.Points {
			fmt.Fprintf(bw, "%10d", p+1)
			for _, v := range ps.Values[i] {
				fmt.Fprintf(bw, "%20.12e", v)
			}
			fmt.Fprintf(bw, "\n")
		}
		fmt.Fprintf(bw, "ENDOFSECTION\n")
	}

	return bw.Flush()
}

func writeInts(w io.Writer, values []int, offset, perLine int) {
	if len(values) == 0 {
		return
	}
	for i, v := range values {
		if i > 0 && i%perLine == 0 {
			fmt.Fprintf(w, "\n")
		}
		fmt.Fprintf(w, "%8d", v+offset)
	}
	fmt.Fprintf(w, "\n")
}
