package parser

import (
	"encoding/json"
	"regexp"
	"strings"

	"site-safety-inspection/models"
)

// AnalysisPayload is the structured analysis returned by the AI backend for
// one hazardous image: four outputs requested together in a single call.
type AnalysisPayload struct {
	RiskScore          string `json:"risk_score"`
	DetectedHazards    string `json:"detected_hazards"`
	RecommendedActions string `json:"recommended_actions"`
	RiskExplanation    string `json:"risk_explanation"`
}

// ExtractJSONFromMarkdown extracts JSON from markdown code blocks. LLMs
// frequently wrap JSON output in ``` fences despite being told not to.
func ExtractJSONFromMarkdown(response string) string {
	startMarker := "```"
	endMarker := "```"

	startIdx := strings.Index(response, startMarker)
	if startIdx == -1 {
		// No code block found, try to find a JSON object directly
		startIdx = strings.Index(response, "{")
		if startIdx == -1 {
			return response
		}
		endIdx := strings.LastIndex(response, "}")
		if endIdx == -1 {
			return response
		}
		return strings.TrimSpace(response[startIdx : endIdx+1])
	}

	endIdx := strings.Index(response[startIdx+len(startMarker):], endMarker)
	if endIdx == -1 {
		return response
	}
	endIdx += startIdx + len(startMarker)

	content := response[startIdx+len(startMarker) : endIdx]

	// Remove the language identifier if present (e.g., "json")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) > 0 && (strings.TrimSpace(lines[0]) == "json" || strings.TrimSpace(lines[0]) == "") {
		content = strings.Join(lines[1:], "\n")
	}

	return strings.TrimSpace(content)
}

// ParseAnalysis parses the backend's structured per-image analysis response.
func ParseAnalysis(response string) (*AnalysisPayload, error) {
	cleaned := strings.TrimSpace(response)
	jsonContent := ExtractJSONFromMarkdown(cleaned)

	var payload AnalysisPayload
	if err := json.Unmarshal([]byte(jsonContent), &payload); err != nil {
		return nil, models.Parse("failed to parse analysis response: " + err.Error())
	}
	if payload.RiskScore == "" {
		return nil, models.Parse("analysis response has no risk_score")
	}
	return &payload, nil
}

var digitRun = regexp.MustCompile(`\d+`)

// ParseScore extracts the risk score as the first run of decimal digits
// found anywhere in the text. The backend occasionally returns non-numeric
// noise; that is a hard per-image failure, never a guessed default.
func ParseScore(text string) (int, error) {
	match := digitRun.FindString(text)
	if match == "" {
		return 0, models.Parse("no digits in risk score text: " + strings.TrimSpace(text))
	}
	score := 0
	for _, r := range match {
		score = score*10 + int(r-'0')
		if score > 10 {
			// Scores are 0-10; longer digit runs clamp since the
			// leading digits are the answer.
			return 10, nil
		}
	}
	return score, nil
}

// CleanExplanation strips escape sequences and quote characters from a
// free-text explanation so it is safe to store and render inline.
func CleanExplanation(text string) string {
	cleaned := strings.ReplaceAll(text, `\n`, " ")
	cleaned = strings.ReplaceAll(cleaned, `"`, "")
	cleaned = strings.ReplaceAll(cleaned, "'", "")
	return strings.TrimSpace(cleaned)
}
