package reporting

import (
	"fmt"
	"html/template"
	"io"

	"go.uber.org/zap"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
	"github.com/xkilldash9x/solarsec-cli/internal/dread"
	"github.com/xkilldash9x/solarsec-cli/internal/economic"
)

const htmlDocument = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.report_title}}</title>
<style>
body { font-family: sans-serif; margin: 2em auto; max-width: 960px; color: #222; }
header { border-bottom: 3px solid #333; margin-bottom: 1.5em; }
.classification { color: #ff4444; font-weight: bold; letter-spacing: 0.1em; }
.risk { display: inline-block; padding: 0.2em 0.6em; border-radius: 4px; color: #fff; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 0.4em; text-align: left; }
figure { margin: 1.5em 0; }
</style>
</head>
<body>
<header>
<p class="classification">{{.classification}}</p>
<h1>{{.report_title}}</h1>
<p>{{.organization}} &middot; {{.author}} &middot; {{.generated_at}}</p>
<p>Run {{.run_id}}</p>
</header>
{{with .executive_summary}}
<section id="executive-summary">
<h2>Executive Summary</h2>
<p><span class="risk" style="background: {{.RiskColor}}">{{.Summary.OverallRiskLevel}}</span></p>
<p>{{.Narrative}}</p>
<ul>
{{range .Summary.KeyFindings}}<li>{{.}}</li>
{{end}}</ul>
</section>
{{end}}
{{with .technical_details}}
<section id="technical-details">
<h2>Technical Details</h2>
<p>{{.Text}}</p>
<table>
<tr><th>Rank</th><th>Threat</th><th>Weighted Score</th><th>Risk</th></tr>
{{range $i, $p := .Prioritized}}<tr><td>{{inc $i}}</td><td>{{$p.ThreatID}}</td><td>{{printf "%.2f" $p.WeightedScore}}</td><td>{{$p.RiskLevel}}</td></tr>
{{end}}</table>
<table>
<tr><th>Scenario</th><th>Duration (h)</th><th>Affected MW</th><th>Total Impact</th></tr>
{{range .Impacts}}<tr><td>{{.Scenario}}</td><td>{{printf "%.1f" .Hours}}</td><td>{{printf "%.4f" .MW}}</td><td>{{.Total}}</td></tr>
{{end}}</table>
<table>
<tr><th>Requirement</th><th>Status</th><th>Score</th></tr>
{{range .Compliance}}<tr><td>{{.RequirementID}}</td><td>{{.Status}}</td><td>{{printf "%.0f" .ComplianceScore}}</td></tr>
{{end}}</table>
</section>
{{end}}
{{with .visualizations}}
<section id="visualizations">
<h2>Visualizations</h2>
{{if .Diagram}}<figure><figcaption>Data Flow Diagram</figcaption>{{.Diagram}}</figure>{{end}}
{{range .Charts}}<figure><figcaption>{{.Title}}</figcaption><img alt="{{.Title}}" src="{{.Src}}"></figure>
{{end}}
</section>
{{end}}
{{with .recommendations}}
<section id="recommendations">
<h2>Recommendations</h2>
<ol>
{{range .}}<li>{{.}}</li>
{{end}}</ol>
</section>
{{end}}
</body>
</html>
`

var htmlTemplate = template.Must(template.New("report").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(htmlDocument))

type summaryView struct {
	Summary   ExecutiveSummary
	Narrative string
	RiskColor template.CSS
}

type impactRow struct {
	Scenario string
	Hours    float64
	MW       float64
	Total    string
}

type technicalView struct {
	Text        string
	Prioritized []dread.PrioritizedThreat
	Impacts     []impactRow
	Compliance  []schemas.ComplianceAssessment
}

type chartView struct {
	Title string
	Src   template.URL
}

type visualView struct {
	Diagram template.HTML
	Charts  []chartView
}

func technicalSection(b *Bundle) technicalView {
	v := technicalView{
		Text:        TechnicalDetails(b),
		Prioritized: b.Dread.PrioritizedThreats,
		Compliance:  b.Compliance.Assessments(),
	}
	for _, imp := range b.Economic.Impacts {
		v.Impacts = append(v.Impacts, impactRow{
			Scenario: economic.ScenarioTitle(imp.Scenario),
			Hours:    imp.DurationHours,
			MW:       imp.AffectedCapacityMW,
			Total:    economic.FormatAUD(imp.Total()),
		})
	}
	return v
}

func visualSection(b *Bundle, logger *zap.Logger) visualView {
	var v visualView
	if svg, err := DataFlowSVG(b.Diagram); err != nil {
		logger.Error("Failed to render data flow diagram.", zap.Error(err))
	} else {
		v.Diagram = template.HTML(svg)
	}
	for _, c := range Charts(b, logger) {
		v.Charts = append(v.Charts, chartView{Title: c.Title, Src: template.URL("data:image/png;base64," + c.PNG)})
	}
	return v
}

// RenderHTML writes the bundle as a self-contained HTML report. Sections
// disabled in cfg are left out.
func RenderHTML(w io.Writer, b *Bundle, cfg ReportConfiguration, logger *zap.Logger) error {
	data := map[string]any{
		"report_title":   cfg.ReportTitle,
		"organization":   cfg.Organization,
		"author":         cfg.Author,
		"classification": cfg.Classification,
		"generated_at":   b.GeneratedAt.Format("2 January 2006 15:04 MST"),
		"run_id":         b.RunID,
	}
	if cfg.IncludeExecutiveSummary {
		data["executive_summary"] = summaryView{
			Summary:   b.Summary,
			Narrative: b.Summary.Narrative(b.System),
			RiskColor: template.CSS(RiskHex(b.Summary.OverallRiskLevel)),
		}
	}
	if cfg.IncludeTechnicalDetails {
		data["technical_details"] = technicalSection(b)
	}
	if cfg.IncludeVisualizations {
		data["visualizations"] = visualSection(b, logger)
	}
	if cfg.IncludeRecommendations {
		if recs := Recommendations(b); len(recs) > 0 {
			data["recommendations"] = recs
		}
	}

	if err := htmlTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render html report: %w", err)
	}
	return nil
}
