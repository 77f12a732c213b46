package aggregator

import (
	"site-safety-inspection/models"
	"site-safety-inspection/parser"
)

// BuildChecklist deduplicates per-image recommended actions into an
// exportable checklist. Findings carrying only the sentinel category are
// skipped. Rows are deduplicated by normalized action text, first-seen
// order preserved, and every row starts with the four operator fields
// blank. An empty result means nothing to export, not an error.
func BuildChecklist(findings []models.ImageFinding) []models.ChecklistRow {
	var rows []models.ChecklistRow
	seen := make(map[string]bool)

	for _, f := range findings {
		if f.IsNoHazard() {
			continue
		}

		for _, action := range parser.NormalizeBullets(f.RecommendedActionsRaw) {
			if seen[action] {
				continue
			}
			seen[action] = true
			rows = append(rows, models.ChecklistRow{CorrectiveAction: action})
		}
	}

	return rows
}
