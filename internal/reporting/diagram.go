package reporting

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
	"github.com/xkilldash9x/solarsec-cli/internal/stride"
)

const (
	laneWidth   = 210
	nodeWidth   = 170
	nodeHeight  = 52
	nodeGap     = 36
	laneHeader  = 44
	diagramPad  = 20
	externalTag = "EXTERNAL"
	glyphWidth  = 7
)

type point struct{ x, y int }

func truncate(s string, n int) string {
	if n <= 3 {
		n = 4
	}
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func threatLevel(count int) schemas.RiskLevel {
	switch {
	case count >= 5:
		return schemas.RiskHigh
	case count >= 3:
		return schemas.RiskMedium
	case count >= 1:
		return schemas.RiskLow
	default:
		return schemas.RiskMinimal
	}
}

func attrs(e *etree.Element, kv ...string) *etree.Element {
	for i := 0; i+1 < len(kv); i += 2 {
		e.CreateAttr(kv[i], kv[i+1])
	}
	return e
}

// DataFlowSVG renders the diagram as a standalone SVG document. Components
// are grouped into one lane per trust boundary. Flow endpoints that are not
// components are drawn in an external lane.
func DataFlowSVG(d stride.Diagram) (string, error) {
	known := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		known[n.ID] = true
	}

	var external []string
	seen := map[string]bool{}
	for _, e := range d.Edges {
		for _, id := range []string{e.Source, e.Target} {
			if !known[id] && !seen[id] {
				seen[id] = true
				external = append(external, id)
			}
		}
	}

	type lane struct {
		label string
		ids   []string
		names []string
		count []int
	}
	var lanes []lane
	if len(external) > 0 {
		lanes = append(lanes, lane{label: externalTag, ids: external, names: external, count: make([]int, len(external))})
	}
	for _, b := range d.TrustBoundaries {
		l := lane{label: string(b)}
		for _, n := range d.Nodes {
			if n.TrustBoundary == b {
				name := n.Label
				if name == "" {
					name = n.ID
				}
				l.ids = append(l.ids, n.ID)
				l.names = append(l.names, name)
				l.count = append(l.count, n.ThreatCount)
			}
		}
		if len(l.ids) > 0 {
			lanes = append(lanes, l)
		}
	}

	rows := 1
	for _, l := range lanes {
		rows = max(rows, len(l.ids))
	}
	width := diagramPad*2 + max(1, len(lanes))*laneWidth
	height := diagramPad*2 + laneHeader + rows*(nodeHeight+nodeGap)

	doc := etree.NewDocument()
	svg := attrs(doc.CreateElement("svg"),
		"xmlns", "http://www.w3.org/2000/svg",
		"width", strconv.Itoa(width),
		"height", strconv.Itoa(height),
		"viewBox", fmt.Sprintf("0 0 %d %d", width, height),
		"font-family", "sans-serif",
		"font-size", "12")

	marker := attrs(svg.CreateElement("defs").CreateElement("marker"),
		"id", "arrow", "viewBox", "0 0 10 10", "refX", "10", "refY", "5",
		"markerWidth", "8", "markerHeight", "8", "orient", "auto-start-reverse")
	attrs(marker.CreateElement("path"), "d", "M 0 0 L 10 5 L 0 10 z", "fill", "#555555")

	centers := make(map[string]point)
	for i, l := range lanes {
		x := diagramPad + i*laneWidth
		attrs(svg.CreateElement("rect"),
			"class", "trust-boundary",
			"x", strconv.Itoa(x+4), "y", strconv.Itoa(diagramPad),
			"width", strconv.Itoa(laneWidth-8), "height", strconv.Itoa(height-2*diagramPad),
			"fill", "#f7f7f7", "stroke", "#bbbbbb", "stroke-dasharray", "6 4")
		attrs(svg.CreateElement("text"),
			"x", strconv.Itoa(x+laneWidth/2), "y", strconv.Itoa(diagramPad+24),
			"text-anchor", "middle", "font-weight", "bold").SetText(l.label)
		for j, id := range l.ids {
			top := diagramPad + laneHeader + j*(nodeHeight+nodeGap) + nodeGap/2
			centers[id] = point{x + laneWidth/2, top + nodeHeight/2}
		}
	}

	for _, e := range d.Edges {
		from, to := centers[e.Source], centers[e.Target]
		stroke, dash := "#44aa44", ""
		if !e.Encrypted {
			stroke, dash = "#ff4444", "5 3"
		}
		widthPx := "1.5"
		if e.CrossesTrustBoundary {
			widthPx = "3"
		}
		g := attrs(svg.CreateElement("g"), "class", "flow")
		title := e.Label
		if e.Protocol != "" {
			title = fmt.Sprintf("%s (%s)", e.Label, e.Protocol)
		}
		g.CreateElement("title").SetText(title)
		ln := attrs(g.CreateElement("line"),
			"x1", strconv.Itoa(from.x), "y1", strconv.Itoa(from.y),
			"x2", strconv.Itoa(to.x), "y2", strconv.Itoa(to.y),
			"stroke", stroke, "stroke-width", widthPx, "marker-end", "url(#arrow)")
		if dash != "" {
			ln.CreateAttr("stroke-dasharray", dash)
		}
		if e.Protocol != "" {
			attrs(g.CreateElement("text"),
				"x", strconv.Itoa((from.x+to.x)/2), "y", strconv.Itoa((from.y+to.y)/2-4),
				"text-anchor", "middle", "fill", "#555555").SetText(e.Protocol)
		}
	}

	for _, l := range lanes {
		for j, id := range l.ids {
			c := centers[id]
			g := attrs(svg.CreateElement("g"), "class", "node", "id", "node-"+id)
			attrs(g.CreateElement("rect"),
				"x", strconv.Itoa(c.x-nodeWidth/2), "y", strconv.Itoa(c.y-nodeHeight/2),
				"width", strconv.Itoa(nodeWidth), "height", strconv.Itoa(nodeHeight),
				"rx", "6", "fill", RiskHex(threatLevel(l.count[j])), "stroke", "#333333")
			attrs(g.CreateElement("text"),
				"x", strconv.Itoa(c.x), "y", strconv.Itoa(c.y-4), "text-anchor", "middle").
				SetText(truncate(l.names[j], nodeWidth/glyphWidth))
			if l.label != externalTag {
				attrs(g.CreateElement("text"),
					"x", strconv.Itoa(c.x), "y", strconv.Itoa(c.y+14), "text-anchor", "middle", "font-size", "10").
					SetText(fmt.Sprintf("%d threats", l.count[j]))
			}
		}
	}

	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("failed to render data flow diagram: %w", err)
	}
	return out, nil
}
