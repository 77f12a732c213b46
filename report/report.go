package report

import (
	"encoding/base64"
	"fmt"
	"html"
	"strings"

	"site-safety-inspection/aggregator"
	"site-safety-inspection/models"
	"site-safety-inspection/parser"
)

const timeLayout = "2006-01-02 15:04:05"

// AlertEmailBody renders the automatic high-risk alert sent to the safety
// manager when a run's site severity is High.
func AlertEmailBody(agg *models.SiteAggregation) string {
	var b strings.Builder

	b.WriteString("HIGH SITE RISK ALERT\n\n")
	fmt.Fprintf(&b, "Site ID: %s\n\n", agg.SiteID)
	fmt.Fprintf(&b, "Weighted Site Risk Score: %.2f\n", agg.WeightedScore)
	fmt.Fprintf(&b, "Site Severity: %s\n\n", agg.SiteSeverity)

	b.WriteString("Most Frequent Hazards:\n")
	for _, hc := range aggregator.FilteredHazards(agg.HazardFrequency) {
		fmt.Fprintf(&b, "- %s: %d images\n", hc.Category, hc.Count)
	}

	fmt.Fprintf(&b, "\nAssessment Time:\n%s\n", agg.InspectionTime.Format(timeLayout))
	b.WriteString("\nThis alert was automatically generated due to high site risk.\n")
	b.WriteString("Immediate review and mitigation is recommended.\n")

	return b.String()
}

// AssessmentEmailBody renders the on-demand assessment summary for a
// user-supplied recipient.
func AssessmentEmailBody(agg *models.SiteAggregation) string {
	var b strings.Builder

	b.WriteString("SITE SAFETY RISK ASSESSMENT\n\n")
	fmt.Fprintf(&b, "SITE ID: %s\n", agg.SiteID)
	fmt.Fprintf(&b, "ASSESSMENT TIME: %s\n\n", agg.InspectionTime.Format(timeLayout))
	fmt.Fprintf(&b, "WEIGHTED SITE RISK SCORE: %.2f\n", agg.WeightedScore)
	fmt.Fprintf(&b, "SITE SEVERITY: %s\n\n", agg.SiteSeverity)

	b.WriteString("MOST FREQUENT HAZARDS:\n")
	for _, hc := range aggregator.FilteredHazards(agg.HazardFrequency) {
		fmt.Fprintf(&b, "- %s: %d images\n", hc.Category, hc.Count)
	}

	b.WriteString("\nTOP 3 PRIORITIZED CORRECTIVE ACTIONS:\n")
	if len(agg.PrioritizedActions) == 0 {
		b.WriteString("- " + parser.NoActionsFallback + "\n")
	} else {
		for _, action := range agg.PrioritizedActions {
			fmt.Fprintf(&b, "- %s\n", action)
		}
	}

	b.WriteString("\nThis assessment was generated automatically from site inspection images.\n")

	return b.String()
}

// HTMLReport renders the self-contained downloadable report: metadata,
// per-image summary table with embedded images, frequency list and
// prioritized actions. images maps image id to the stored bytes; missing
// entries render without a thumbnail.
func HTMLReport(agg *models.SiteAggregation, images map[string][]byte) string {
	var b strings.Builder

	b.WriteString(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8"/>
<title>Site Safety Report</title>
<style>
body { font-family: Arial, sans-serif; margin: 24px; }
table { border-collapse: collapse; width: 100%; margin-top: 12px; }
th, td { border: 1px solid #ccc; padding: 8px; vertical-align: top; }
th { background: #f3f4f6; }
.meta { margin-bottom: 16px; }
.severity { font-weight: bold; }
</style>
</head>
<body>
<h1>Site Safety Report</h1>
`)

	b.WriteString(`<div class="meta">` + "\n")
	fmt.Fprintf(&b, "<p><b>Site ID:</b> %s</p>\n", html.EscapeString(agg.SiteID))
	fmt.Fprintf(&b, "<p><b>Assessment Time:</b> %s</p>\n", agg.InspectionTime.Format(timeLayout))
	fmt.Fprintf(&b, "<p><b>Weighted Site Risk Score:</b> %.2f</p>\n", agg.WeightedScore)
	fmt.Fprintf(&b, "<p><b>Site Severity:</b> <span class=\"severity\">%s</span></p>\n", agg.SiteSeverity)
	b.WriteString("</div>\n")

	b.WriteString("<h2>Image-Level Summary</h2>\n<table>\n")
	b.WriteString("<tr><th>Image</th><th>Risk</th><th>Severity</th><th>Hazards</th></tr>\n")

	for _, f := range agg.Findings {
		b.WriteString("<tr><td>")
		if data, ok := images[f.ImageID]; ok {
			encoded := base64.StdEncoding.EncodeToString(data)
			fmt.Fprintf(&b, "<img src=\"data:image/jpeg;base64,%s\" width=\"160\"/><br/>", encoded)
		}
		fmt.Fprintf(&b, "%s</td><td>%d</td><td>%s</td><td>%s</td></tr>\n",
			html.EscapeString(f.ImageName),
			f.Score,
			f.Severity,
			html.EscapeString(strings.Join(f.HazardCategories, ", ")),
		)
	}
	b.WriteString("</table>\n")

	b.WriteString("<h2>Most Frequent Hazards</h2>\n<ul>\n")
	for _, hc := range aggregator.FilteredHazards(agg.HazardFrequency) {
		fmt.Fprintf(&b, "<li>%s: %d images</li>\n", html.EscapeString(hc.Category), hc.Count)
	}
	b.WriteString("</ul>\n")

	b.WriteString("<h2>Top 3 Prioritized Corrective Actions</h2>\n")
	if len(agg.PrioritizedActions) == 0 {
		b.WriteString("<p>No prioritized corrective actions generated.</p>\n")
	} else {
		b.WriteString("<ul>\n")
		for _, action := range agg.PrioritizedActions {
			fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(action))
		}
		b.WriteString("</ul>\n")
	}

	b.WriteString(`<p style="margin-top:32px; font-size:12px; color:#666;">
This report was automatically generated from site inspection images.
Results are based on visible site conditions and are intended to assist safety inspections.
</p>
</body>
</html>
`)

	return b.String()
}
