package aggregator

import (
	"fmt"
	"strings"

	"site-safety-inspection/ai"
	"site-safety-inspection/models"
	"site-safety-inspection/parser"
)

const maxPrioritizedActions = 3

const prioritizedActionsPrompt = `You are a site safety expert.
Based on the following site-wide hazards and observations, generate a prioritized list
of the TOP 3 corrective actions.
Rank them from highest to lowest priority.
Focus on actions that reduce the most risk.

Hazard frequency summary:
%s

Observed corrective actions:
%s

Use this exact format:
- [Action]
- [Action]
- [Action]

Do not include any introductory text. Start directly with the first dash.`

// PrioritizedActions asks the AI backend to rank the top corrective actions
// across the whole run. It only runs when the site has hazards and at least
// one finding contributed action text; otherwise the result is empty, which
// is not an error. The response is normalized and capped at three entries.
func PrioritizedActions(client ai.Client, agg *models.SiteAggregation) ([]string, error) {
	if !agg.SiteHasHazards {
		return nil, nil
	}

	var actionTexts []string
	for _, f := range agg.Findings {
		if f.HasHazard && f.RecommendedActionsRaw != "" {
			actionTexts = append(actionTexts, f.RecommendedActionsRaw)
		}
	}
	allActions := strings.Join(actionTexts, "\n")
	if strings.TrimSpace(allActions) == "" {
		return nil, nil
	}

	var summaryParts []string
	for _, hc := range FilteredHazards(agg.HazardFrequency) {
		summaryParts = append(summaryParts, fmt.Sprintf("%s (%d)", hc.Category, hc.Count))
	}
	hazardSummary := strings.Join(summaryParts, ", ")

	prompt := fmt.Sprintf(prioritizedActionsPrompt, hazardSummary, allActions)
	response, err := client.Complete(prompt, nil)
	if err != nil {
		return nil, models.Backend("prioritized actions", err)
	}

	actions := parser.NormalizeBullets(response)
	if len(actions) > maxPrioritizedActions {
		actions = actions[:maxPrioritizedActions]
	}
	return actions, nil
}
