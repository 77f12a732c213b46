package analyzer

import (
	"time"

	"site-safety-inspection/ai"
	"site-safety-inspection/metrics"
	"site-safety-inspection/models"
	"site-safety-inspection/parser"
	"site-safety-inspection/storage"

	"github.com/apex/log"
)

const analysisPrompt = `You are a site safety inspector analyzing the attached image.
Return ONLY a single JSON object with exactly these fields:
{
  "risk_score": "<a single integer risk score from 0 to 10>",
  "detected_hazards": "<all specific safety hazards visible, one per line, each starting with a dash. Bold keywords.>",
  "recommended_actions": "<specific corrective actions for the hazards, one per line, each starting with a dash. Bold keywords.>",
  "risk_explanation": "<a concise 1-2 sentence factual explanation of why this image received its risk score, referencing visible conditions>"
}
Do not include any introductory text.`

// Analyzer runs one image at a time through storage and the AI backend.
type Analyzer struct {
	store  *storage.ImageStore
	client ai.Client
}

// New creates an analyzer over the given collaborators.
func New(store *storage.ImageStore, client ai.Client) *Analyzer {
	return &Analyzer{store: store, client: client}
}

// AnalyzeImage stores the image and produces its finding. The pre-filter
// short-circuit is mandatory: a negative filter result makes no further
// backend calls. Errors abort this image only.
func (a *Analyzer) AnalyzeImage(img models.UploadedImage) (models.ImageFinding, error) {
	imageID, err := a.store.Put(img.FileName, img.Data)
	if err != nil {
		return models.ImageFinding{}, err
	}

	hasHazard, err := a.client.Filter(models.PreFilterQuestion, img.Data)
	if err != nil {
		return models.ImageFinding{}, err
	}

	if !hasHazard {
		// Cheap path: no classification or completion cost for clean images.
		return models.NoHazardFinding(imageID, img.FileName), nil
	}

	classifyResult, err := a.client.Classify(img.Data, models.HazardCategories)
	if err != nil {
		return models.ImageFinding{}, err
	}
	labels := parser.ExtractLabels(classifyResult)

	response, err := a.client.Complete(analysisPrompt, img.Data)
	if err != nil {
		return models.ImageFinding{}, err
	}

	payload, err := parser.ParseAnalysis(response)
	if err != nil {
		return models.ImageFinding{}, err
	}

	score, err := parser.ParseScore(payload.RiskScore)
	if err != nil {
		return models.ImageFinding{}, err
	}

	return models.ImageFinding{
		ImageID:               imageID,
		ImageName:             img.FileName,
		HasHazard:             true,
		Score:                 score,
		Severity:              models.SeverityFromScore(float64(score)),
		HazardCategories:      labels,
		DetectedHazardsRaw:    payload.DetectedHazards,
		RecommendedActionsRaw: payload.RecommendedActions,
		RiskExplanation:       parser.CleanExplanation(payload.RiskExplanation),
	}, nil
}

// AnalyzeBatch processes images sequentially in upload order. One failing
// image never blocks or invalidates its siblings; its result carries the
// error for the reporting layer to surface.
func (a *Analyzer) AnalyzeBatch(images []models.UploadedImage) []models.FindingResult {
	results := make([]models.FindingResult, 0, len(images))

	for _, img := range images {
		start := time.Now()
		finding, err := a.AnalyzeImage(img)
		metrics.AnalysisDurationSeconds.Observe(time.Since(start).Seconds())
		result := models.FindingResult{ImageName: img.FileName}
		if err != nil {
			log.WithField("image", img.FileName).Warnf("image analysis failed: %v", err)
			result.Err = err
			result.ErrorText = err.Error()
		} else {
			result.Finding = finding
		}
		results = append(results, result)
	}

	return results
}
