package stubai

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"site-safety-inspection/models"
	"site-safety-inspection/parser"
)

// Client is a deterministic, no-network AI stub intended for CI and local
// end-to-end runs. It returns schema-valid output so parsing, aggregation
// and DB writes exercise the full pipeline.
type Client struct{}

func NewClient() *Client { return &Client{} }

func (c *Client) SourceName() string { return "Stub" }

// hazardous derives a stable hazard verdict from the image bytes so repeated
// runs over the same upload behave identically.
func hazardous(image []byte) bool {
	sum := sha256.Sum256(image)
	return sum[0]%4 != 0
}

func stubScore(image []byte) int {
	sum := sha256.Sum256(image)
	return 1 + int(sum[1]%10)
}

func (c *Client) Filter(question string, image []byte) (bool, error) {
	return hazardous(image), nil
}

func (c *Client) Classify(image []byte, categories []string) (parser.ClassifyResult, error) {
	if !hazardous(image) {
		return parser.StructuredResult([]string{models.NoVisibleHazard}), nil
	}
	sum := sha256.Sum256(image)
	// Pick two stable distinct categories, skipping the sentinel.
	var picked []string
	seen := make(map[string]bool)
	for i := 0; len(picked) < 2 && i < len(categories)*2; i++ {
		cat := categories[int(sum[2+i%8])%len(categories)]
		if cat == models.NoVisibleHazard || seen[cat] {
			continue
		}
		seen[cat] = true
		picked = append(picked, cat)
	}
	return parser.StructuredResult(picked), nil
}

func (c *Client) Complete(prompt string, image []byte) (string, error) {
	if image == nil {
		// Site-level prioritized-action summarization.
		return "- Address the most frequent hazard first\n- Brief the crew on corrective actions\n- Re-inspect within 48 hours", nil
	}

	sum := sha256.Sum256(image)
	short := hex.EncodeToString(sum[:4])
	payload := map[string]any{
		"risk_score":          fmt.Sprintf("%d", stubScore(image)),
		"detected_hazards":    fmt.Sprintf("- **Stub hazard** (%s)\n- Cluttered work area", short),
		"recommended_actions": "- Install guardrails\n- Clear the work area",
		"risk_explanation":    fmt.Sprintf("Deterministic stub explanation for image %s.", short),
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
