package readers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/OrthoBoundary/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Gambit element type codes (NTYPE)
const (
	gambitEdge    = 1
	gambitQuad    = 2
	gambitTri     = 3
	gambitBrick   = 4
	gambitWedge   = 5
	gambitTetra   = 6
	gambitPyramid = 7
)

var gambitToGeometry = map[int]mesh.GeometryType{
	gambitBrick:   mesh.Hex,
	gambitWedge:   mesh.Prism,
	gambitTetra:   mesh.Tet,
	gambitPyramid: mesh.Pyramid,
}

// ReadGambitNeutral reads a Gambit neutral (.neu) file
func ReadGambitNeutral(filename string) (*mesh.Mesh, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := DecodeGambitNeutral(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

type gambitScanner struct {
	sc   *bufio.Scanner
	line int
}

func (g *gambitScanner) next() (string, bool) {
	if !g.sc.Scan() {
		return "", false
	}
	g.line++
	return g.sc.Text(), true
}

func (g *gambitScanner) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("line %d: %s", g.line, fmt.Sprintf(format, args...))
}

type gambitDecoder struct {
	gambitScanner

	title      string
	numNodes   int
	numElems   int
	dims       int
	vertices   []r3.Vec
	nodeIndex  map[int]int
	cells      []mesh.Cell
	cellIndex  map[int]int
	zones      []mesh.Zone
	boundaries []mesh.Boundary
	pointSets  []mesh.PointSet
}

// DecodeGambitNeutral parses a Gambit neutral stream. Face boundary conditions
// become regions, node boundary conditions are kept as point sets
func DecodeGambitNeutral(r io.Reader) (*mesh.Mesh, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	d := &gambitDecoder{
		gambitScanner: gambitScanner{sc: sc},
		nodeIndex:     make(map[int]int),
		cellIndex:     make(map[int]int),
		dims:          3,
	}

	if err := d.readHeader(); err != nil {
		return nil, err
	}

	for {
		line, ok := d.next()
		if !ok {
			break
		}
		section := strings.TrimSpace(line)
		var err error
		switch {
		case section == "":
			continue
		case strings.HasPrefix(section, "NODAL COORDINATES"):
			err = d.readNodes()
		case strings.HasPrefix(section, "ELEMENTS/CELLS"):
			err = d.readElements()
		case strings.HasPrefix(section, "ELEMENT GROUP"):
			err = d.readGroup()
		case strings.HasPrefix(section, "BOUNDARY CONDITIONS"):
			err = d.readBoundaryCondition()
		default:
			err = d.skipSection()
		}
		if err != nil {
			return nil, err
		}
	}
	if err := d.sc.Err(); err != nil {
		return nil, err
	}

	if len(d.vertices) != d.numNodes {
		return nil, fmt.Errorf("header declares %d nodes, read %d", d.numNodes, len(d.vertices))
	}
	if len(d.cells) != d.numElems {
		return nil, fmt.Errorf("header declares %d elements, read %d", d.numElems, len(d.cells))
	}

	m, err := mesh.NewMesh(d.vertices, d.cells, d.boundaries)
	if err != nil {
		return nil, err
	}
	m.Title = d.title
	m.Zones = d.zones
	m.PointSets = d.pointSets
	return m, nil
}

func (d *gambitDecoder) readHeader() error {
	for {
		line, ok := d.next()
		if !ok {
			return fmt.Errorf("not a Gambit neutral file: missing NUMNP header")
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "** GAMBIT NEUTRAL FILE") {
			if title, ok := d.next(); ok {
				d.title = strings.TrimSpace(title)
			}
			continue
		}
		if strings.HasPrefix(trimmed, "NUMNP") {
			break
		}
	}

	line, ok := d.next()
	if !ok {
		return d.errorf("missing problem size line")
	}
	counts, err := atoiFields(strings.Fields(line))
	if err != nil || len(counts) < 5 {
		return d.errorf("invalid problem size line %q", line)
	}
	d.numNodes, d.numElems, d.dims = counts[0], counts[1], counts[4]
	if d.dims != 2 && d.dims != 3 {
		return d.errorf("unsupported coordinate dimension NDFCD=%d", d.dims)
	}
	d.vertices = make([]r3.Vec, 0, d.numNodes)
	d.cells = make([]mesh.Cell, 0, d.numElems)
	return d.skipSection()
}

func (d *gambitDecoder) skipSection() error {
	for {
		line, ok := d.next()
		if !ok {
			return d.errorf("unexpected end of file, missing ENDOFSECTION")
		}
		if strings.TrimSpace(line) == "ENDOFSECTION" {
			return nil
		}
	}
}

func (d *gambitDecoder) readNodes() error {
	for {
		line, ok := d.next()
		if !ok {
			return d.errorf("unexpected end of file in NODAL COORDINATES")
		}
		fields := strings.Fields(line)
		if len(fields) == 1 && fields[0] == "ENDOFSECTION" {
			return nil
		}
		if len(fields) < 1+d.dims {
			return d.errorf("invalid node line %q", line)
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return d.errorf("invalid node id %q", fields[0])
		}
		var xyz [3]float64
		for i := 0; i < d.dims; i++ {
			if xyz[i], err = strconv.ParseFloat(fields[1+i], 64); err != nil {
				return d.errorf("invalid coordinate %q for node %d", fields[1+i], id)
			}
		}
		if _, dup := d.nodeIndex[id]; dup {
			return d.errorf("duplicate node id %d", id)
		}
		d.nodeIndex[id] = len(d.vertices)
		d.vertices = append(d.vertices, r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})
	}
}

func (d *gambitDecoder) readElements() error {
	for {
		line, ok := d.next()
		if !ok {
			return d.errorf("unexpected end of file in ELEMENTS/CELLS")
		}
		fields := strings.Fields(line)
		if len(fields) == 1 && fields[0] == "ENDOFSECTION" {
			return nil
		}
		head, err := atoiFields(fields)
		if err != nil || len(head) < 3 {
			return d.errorf("invalid element line %q", line)
		}
		id, ntype, ndp := head[0], head[1], head[2]
		nodes := head[3:]
		for len(nodes) < ndp {
			cont, ok := d.next()
			if !ok {
				return d.errorf("unexpected end of file in element %d", id)
			}
			more, err := atoiFields(strings.Fields(cont))
			if err != nil {
				return d.errorf("invalid element continuation %q", cont)
			}
			nodes = append(nodes, more...)
		}
		if len(nodes) != ndp {
			return d.errorf("element %d declares %d nodes, found %d", id, ndp, len(nodes))
		}

		geom, ok := gambitToGeometry[ntype]
		if !ok {
			return d.errorf("element %d: unsupported element type %d", id, ntype)
		}
		if geom.NumVertices() != ndp {
			return d.errorf("element %d: %v needs %d nodes, got %d", id, geom, geom.NumVertices(), ndp)
		}
		verts := make([]int, ndp)
		for i, n := range nodes {
			idx, ok := d.nodeIndex[n]
			if !ok {
				return d.errorf("element %d references unknown node %d", id, n)
			}
			verts[i] = idx
		}
		if _, dup := d.cellIndex[id]; dup {
			return d.errorf("duplicate element id %d", id)
		}
		d.cellIndex[id] = len(d.cells)
		d.cells = append(d.cells, mesh.Cell{Type: geom, Vertices: verts})
	}
}

// readGroup parses
//
//	GROUP:          1 ELEMENTS:         2 MATERIAL:         2 NFLAGS:          1
//	                           fluid
//	       0
//	         1         2
func (d *gambitDecoder) readGroup() error {
	line, ok := d.next()
	if !ok {
		return d.errorf("unexpected end of file in ELEMENT GROUP")
	}
	fields := strings.Fields(strings.NewReplacer(":", " ").Replace(line))
	if len(fields) < 8 {
		return d.errorf("invalid group header %q", line)
	}
	values, err := atoiFields([]string{fields[1], fields[3], fields[5], fields[7]})
	if err != nil {
		return d.errorf("invalid group header %q", line)
	}
	numElems, material, numFlags := values[1], values[2], values[3]

	name, ok := d.next()
	if !ok {
		return d.errorf("missing group name")
	}
	zone := mesh.Zone{Name: strings.TrimSpace(name), Material: material}

	var ids []int
	for len(zone.Flags) < numFlags || len(ids) < numElems {
		line, ok := d.next()
		if !ok {
			return d.errorf("unexpected end of file in group %s", zone.Name)
		}
		values, err := atoiFields(strings.Fields(line))
		if err != nil {
			return d.errorf("invalid group entry %q", line)
		}
		for _, v := range values {
			if len(zone.Flags) < numFlags {
				zone.Flags = append(zone.Flags, v)
			} else {
				ids = append(ids, v)
			}
		}
	}
	for _, id := range ids {
		idx, ok := d.cellIndex[id]
		if !ok {
			return d.errorf("group %s references unknown element %d", zone.Name, id)
		}
		zone.Cells = append(zone.Cells, idx)
	}
	d.zones = append(d.zones, zone)
	return d.skipSection()
}

// readBoundaryCondition parses one boundary condition set. The header is
// NAME ITYPE NENTRY NVALUES IBCODE1..IBCODE5; ITYPE 1 entries are
// ELEM ELEMTYPE FACE, ITYPE 0 entries are NODE VALUES...
func (d *gambitDecoder) readBoundaryCondition() error {
	line, ok := d.next()
	if !ok {
		return d.errorf("unexpected end of file in BOUNDARY CONDITIONS")
	}
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return d.errorf("invalid boundary condition format %q", line)
	}
	name := fields[0]
	header, err := atoiFields(fields[1:])
	if err != nil {
		return d.errorf("invalid boundary condition format %q", line)
	}
	itype, nentry, nvalues, codes := header[0], header[1], header[2], header[3:]

	switch itype {
	case 1:
		b := mesh.Boundary{Name: name, Kind: mesh.ParseKind(name), Codes: codes}
		for i := 0; i < nentry; i++ {
			entry, ok := d.next()
			if !ok {
				return d.errorf("unexpected end of file in boundary condition %s", name)
			}
			values, err := atoiFields(strings.Fields(entry))
			if err != nil || len(values) < 3 {
				return d.errorf("invalid boundary condition format %q", entry)
			}
			cell, ok := d.cellIndex[values[0]]
			if !ok {
				return d.errorf("boundary condition %s references unknown element %d", name, values[0])
			}
			b.Faces = append(b.Faces, mesh.FaceRef{Cell: cell, Face: values[2] - 1})
		}
		d.boundaries = append(d.boundaries, b)
	case 0:
		ps := mesh.PointSet{Name: name, Codes: codes}
		for i := 0; i < nentry; i++ {
			entry, ok := d.next()
			if !ok {
				return d.errorf("unexpected end of file in boundary condition %s", name)
			}
			f := strings.Fields(entry)
			if len(f) < 1+nvalues {
				return d.errorf("invalid boundary condition format %q", entry)
			}
			node, err := strconv.Atoi(f[0])
			if err != nil {
				return d.errorf("invalid boundary condition format %q", entry)
			}
			idx, ok := d.nodeIndex[node]
			if !ok {
				return d.errorf("boundary condition %s references unknown node %d", name, node)
			}
			vals := make([]float64, nvalues)
			for j := range vals {
				if vals[j], err = strconv.ParseFloat(f[1+j], 64); err != nil {
					return d.errorf("invalid boundary condition format %q", entry)
				}
			}
			ps.Points = append(ps.Points, idx)
			ps.Values = append(ps.Values, vals)
		}
		d.pointSets = append(d.pointSets, ps)
	default:
		return d.errorf("invalid boundary condition ITYPE %d for %s", itype, name)
	}
	return d.skipSection()
}

func atoiFields(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
