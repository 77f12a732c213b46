package models

// NoVisibleHazard is the sentinel category assigned when the pre-filter
// finds nothing actionable. It is counted internally during aggregation but
// must never reach hazard history rows or user-facing frequency lists.
const NoVisibleHazard = "No Visible Hazard"

// PreFilterQuestion is the fixed hazard-presence question asked before any
// full analysis is attempted.
const PreFilterQuestion = "Does this image show any unsafe condition, safety hazard, or situation that could pose a risk to people or property?"

// NoHazardExplanation is stored on findings that were short-circuited by the
// pre-filter.
const NoHazardExplanation = "This image was automatically classified as non-actionable by the AI safety filter. " +
	"No unsafe conditions or hazards were detected."

// HazardCategories is the closed classification vocabulary. The sentinel is
// part of the vocabulary so the classifier has an explicit "nothing" answer.
var HazardCategories = []string{
	"Missing PPE",
	"Fall Risk",
	"Fire or Explosion Hazard",
	"Electrical Hazard",
	"Trip or Slip Hazard",
	"Equipment Safety Issue",
	"Improper Storage",
	"Poor Housekeeping",
	"Inadequate Ventilation",
	"Chemical Exposure",
	"Structural Hazard",
	NoVisibleHazard,
	"Poor Lighting",
	"Ergonomic Hazard",
	"Struck-by Hazard",
	"Caught-in or Between Hazard",
	"Vehicle or Mobile Equipment Hazard",
}

// UploadedImage is one user-supplied inspection photo.
type UploadedImage struct {
	FileName string
	Data     []byte
}

// ImageFinding is the normalized analysis result for one uploaded image.
//
// Invariant: HasHazard == false implies Score == 0 and HazardCategories
// equals exactly [NoVisibleHazard].
type ImageFinding struct {
	ImageID               string   `json:"image_id"`
	ImageName             string   `json:"image_name"`
	HasHazard             bool     `json:"has_hazard"`
	Score                 int      `json:"score"`
	Severity              Severity `json:"severity"`
	HazardCategories      []string `json:"hazard_categories"`
	DetectedHazardsRaw    string   `json:"detected_hazards,omitempty"`
	RecommendedActionsRaw string   `json:"recommended_actions,omitempty"`
	RiskExplanation       string   `json:"risk_explanation"`
}

// NoHazardFinding builds the sentinel finding for an image the pre-filter
// classified as non-actionable.
func NoHazardFinding(imageID, imageName string) ImageFinding {
	return ImageFinding{
		ImageID:          imageID,
		ImageName:        imageName,
		HasHazard:        false,
		Score:            0,
		Severity:         SeverityLow,
		HazardCategories: []string{NoVisibleHazard},
		RiskExplanation:  NoHazardExplanation,
	}
}

// IsNoHazard reports whether the finding carries the sentinel category list.
func (f ImageFinding) IsNoHazard() bool {
	return len(f.HazardCategories) == 1 && f.HazardCategories[0] == NoVisibleHazard
}

// FindingResult is the outcome of analyzing a single image. A failed image
// carries Err and no finding; failures never abort sibling images.
type FindingResult struct {
	ImageName string       `json:"image_name"`
	Finding   ImageFinding `json:"finding,omitempty"`
	Err       error        `json:"-"`
	ErrorText string       `json:"error,omitempty"`
}

// OK reports whether the image was analyzed successfully.
func (r FindingResult) OK() bool {
	return r.Err == nil
}
