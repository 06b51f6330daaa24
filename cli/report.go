package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/notargets/OrthoBoundary/mesh"
	"github.com/notargets/OrthoBoundary/orthogonal"
)

func names(m *mesh.Mesh, ids []int) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = m.Regions[id].Name
	}
	return "(" + strings.Join(out, " ") + ")"
}

func printReport(w io.Writer, m *mesh.Mesh, res *orthogonal.Result, written string) {
	cls := res.Classification
	fmt.Fprintf(w, "Regions:          %s\n", names(m, cls.Included))
	fmt.Fprintf(w, "Excluded:         %s\n", names(m, cls.Excluded))

	perRegion := map[string]int{}
	for _, rec := range res.Records {
		perRegion[rec.Region]++
	}
	for _, id := range cls.Included {
		name := m.Regions[id].Name
		fmt.Fprintf(w, "  %-16s%d of %d points corrected\n", name, perRegion[name], m.Regions[id].NumPoints())
	}

	fmt.Fprintf(w, "Corrected:        %d\n", res.Corrected())
	fmt.Fprintf(w, "Skipped:          excluded=%d no-anchor=%d degenerate=%d\n",
		res.Count(orthogonal.SkipExcluded),
		res.Count(orthogonal.SkipNoAnchor),
		res.Count(orthogonal.SkipDegenerateNormal))
	fmt.Fprintf(w, "Max displacement: %g\n", res.MaxDisplacement())
	fmt.Fprintf(w, "Written:          %s\n", written)
}
