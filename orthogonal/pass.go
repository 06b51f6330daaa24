package orthogonal

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/notargets/OrthoBoundary/mesh"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// DegeneratePolicy decides what happens when a vertex normal cannot be estimated
type DegeneratePolicy uint8

const (
	// SkipDegenerate leaves the vertex unchanged and reports it
	SkipDegenerate DegeneratePolicy = iota
	// FailOnDegenerate aborts the pass with a DegenerateNormalError
	FailOnDegenerate
)

func (p DegeneratePolicy) String() string {
	switch p {
	case SkipDegenerate:
		return "skip"
	case FailOnDegenerate:
		return "fail"
	}
	return fmt.Sprintf("DegeneratePolicy(%d)", uint8(p))
}

// ParseDegeneratePolicy parses "skip" or "fail"
func ParseDegeneratePolicy(s string) (DegeneratePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return SkipDegenerate, nil
	case "fail":
		return FailOnDegenerate, nil
	}
	return 0, fmt.Errorf("unknown degenerate normal policy %q, expected skip or fail", s)
}

// SkipReason tells why a vertex was left unchanged
type SkipReason uint8

const (
	SkipExcluded SkipReason = iota
	SkipNoAnchor
	SkipDegenerateNormal
)

func (r SkipReason) String() string {
	switch r {
	case SkipExcluded:
		return "excluded"
	case SkipNoAnchor:
		return "no-anchor"
	case SkipDegenerateNormal:
		return "degenerate-normal"
	}
	return fmt.Sprintf("SkipReason(%d)", uint8(r))
}

// CorrectionRecord describes one corrected vertex
type CorrectionRecord struct {
	Vertex      int
	Region      string
	RegionIndex int
	Input       r3.Vec
	Normal      r3.Vec
	Anchor      int
	AnchorPoint r3.Vec
	Output      r3.Vec
}

// Displacement returns the distance the vertex moved
func (c CorrectionRecord) Displacement() float64 {
	return r3.Norm(r3.Sub(c.Output, c.Input))
}

// Skip records a vertex on an included region that was left unchanged
type Skip struct {
	Vertex int
	Region string
	Reason SkipReason
}

// Result is the outcome of one pass
type Result struct {
	Classification Classification

	// Positions is the full replacement vertex array
	Positions []r3.Vec
	// Records holds one entry per corrected vertex
	Records []CorrectionRecord
	Skips   []Skip
}

// Corrected returns the number of corrected vertices
func (r *Result) Corrected() int {
	return len(r.Records)
}

// Count returns the number of skips with the given reason
func (r *Result) Count(reason SkipReason) int {
	n := 0
	for _, s := range r.Skips {
		if s.Reason == reason {
			n++
		}
	}
	return n
}

// MaxDisplacement returns the largest distance any vertex moved
func (r *Result) MaxDisplacement() float64 {
	var max float64
	for _, rec := range r.Records {
		if d := rec.Displacement(); d > max {
			max = d
		}
	}
	return max
}

// Verify checks every record: the anchor-to-output edge must be parallel to
// the normal and the along-normal distance from the anchor must be unchanged,
// both within tol relative to the edge length
func (r *Result) Verify(tol float64) error {
	for _, rec := range r.Records {
		edge := r3.Sub(rec.Output, rec.AnchorPoint)
		scale := math.Max(1, r3.Norm(edge))
		if dev := r3.Norm(r3.Cross(edge, rec.Normal)); !scalar.EqualWithinAbs(dev, 0, tol*scale) {
			return fmt.Errorf("vertex %d: edge to anchor %d deviates from the normal by %g",
				rec.Vertex, rec.Anchor, dev)
		}
		before := r3.Dot(r3.Sub(rec.Input, rec.AnchorPoint), rec.Normal)
		after := r3.Dot(edge, rec.Normal)
		if !scalar.EqualWithinAbsOrRel(before, after, tol*scale, tol) {
			return fmt.Errorf("vertex %d: distance along the normal changed from %g to %g",
				rec.Vertex, before, after)
		}
		if r.Positions[rec.Vertex] != rec.Output {
			return fmt.Errorf("vertex %d: output array does not hold the recorded position", rec.Vertex)
		}
	}
	return nil
}

// Options configure an Orthogonalizer
type Options struct {
	Policy DegeneratePolicy
	Logger *slog.Logger
}

// Orthogonalizer moves boundary vertices so that the edge to an interior
// anchor vertex is parallel to the estimated surface normal
type Orthogonalizer struct {
	policy DegeneratePolicy
	log    *slog.Logger
}

// New creates an Orthogonalizer
func New(opts Options) *Orthogonalizer {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Orthogonalizer{policy: opts.Policy, log: log}
}

// Run performs a single correction pass over the included regions. All reads
// use the original geometry; corrected positions go to a separate array.
// A vertex shared by several included regions keeps the correction from the
// region with the highest region index, so the result does not depend on the
// order of cls.Included
func (o *Orthogonalizer) Run(m *mesh.Mesh, cls Classification) (*Result, error) {
	markers := MarkVertices(m, cls.Excluded)
	o.log.Debug("Marked vertices", "boundary", markers.OnBoundary.Len(), "excluded", markers.OnExclude.Sorted())

	res := &Result{Classification: cls, Positions: make([]r3.Vec, m.NumVertices())}
	copy(res.Positions, m.Vertices)
	owner := make(map[int]int) // vertex → index into res.Records

	for _, ri := range cls.Included {
		r := m.Regions[ri]
		o.log.Info("Adjusting points on region", "region", r.Name, "kind", r.Kind.String(), "points", r.NumPoints())

		for local, v := range r.MeshPoints {
			if markers.OnExclude.Contains(v) {
				o.log.Debug("Skipping point on excluded region", "vertex", v)
				res.Skips = append(res.Skips, Skip{Vertex: v, Region: r.Name, Reason: SkipExcluded})
				continue
			}

			anchor, ok := FindAnchor(m, v, markers.OnBoundary)
			if !ok {
				o.log.Debug("No internal point found", "vertex", v, "neighbours", m.AdjacentVertices(v))
				res.Skips = append(res.Skips, Skip{Vertex: v, Region: r.Name, Reason: SkipNoAnchor})
				continue
			}

			n, err := EstimateNormal(r, local)
			if err != nil {
				var dne *DegenerateNormalError
				if o.policy == FailOnDegenerate || !errors.As(err, &dne) {
					return nil, err
				}
				o.log.Warn("Skipping point with degenerate normal", "vertex", v, "region", r.Name)
				res.Skips = append(res.Skips, Skip{Vertex: v, Region: r.Name, Reason: SkipDegenerateNormal})
				continue
			}

			rec := CorrectionRecord{
				Vertex:      v,
				Region:      r.Name,
				RegionIndex: ri,
				Input:       m.Position(v),
				Normal:      n,
				Anchor:      anchor,
				AnchorPoint: m.Position(anchor),
			}
			rec.Output = Project(rec.Input, rec.AnchorPoint, n)

			if idx, seen := owner[v]; seen {
				if res.Records[idx].RegionIndex > ri {
					continue
				}
				res.Records[idx] = rec
			} else {
				owner[v] = len(res.Records)
				res.Records = append(res.Records, rec)
			}
			res.Positions[v] = rec.Output
			o.log.Debug("Adjusted point", "vertex", v, "anchor", anchor,
				"from", rec.Input, "to", rec.Output)
		}
	}

	o.log.Info("Pass complete",
		"corrected", res.Corrected(),
		"excluded", res.Count(SkipExcluded),
		"noAnchor", res.Count(SkipNoAnchor),
		"degenerate", res.Count(SkipDegenerateNormal),
		"maxDisplacement", res.MaxDisplacement())
	return res, nil
}

// PositionCommitter applies a complete replacement vertex array to the mesh
// store, either entirely or not at all
type PositionCommitter interface {
	CommitPositions(positions []r3.Vec) error
}

// Orthogonalize classifies the regions, runs one pass and commits the result.
// A nil committer runs the pass without committing
func Orthogonalize(m *mesh.Mesh, included, excluded []string, committer PositionCommitter, opts Options) (*Result, error) {
	cls, err := Classify(m, included, excluded)
	if err != nil {
		return nil, err
	}
	res, err := New(opts).Run(m, cls)
	if err != nil {
		return nil, err
	}
	if committer == nil {
		return res, nil
	}
	if err := committer.CommitPositions(res.Positions); err != nil {
		return res, fmt.Errorf("commit positions: %w", err)
	}
	return res, nil
}
