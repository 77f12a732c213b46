package history

import (
	"math"

	"site-safety-inspection/aggregator"
	"site-safety-inspection/database"
	"site-safety-inspection/models"

	"github.com/apex/log"
)

// Tracker appends completed aggregations to the durable history tables and
// computes trend statistics over them.
type Tracker struct {
	db     *database.Database
	window int
}

// NewTracker creates a tracker. window is the moving-average span.
func NewTracker(db *database.Database, window int) *Tracker {
	if window <= 0 {
		window = 3
	}
	return &Tracker{db: db, window: window}
}

// Record appends one risk record plus one hazard record per non-sentinel
// category. Callers invoke it exactly once per completed run; re-rendering
// an existing aggregation must never reach this method.
func (t *Tracker) Record(agg *models.SiteAggregation) error {
	riskRec := &models.RiskHistoryRecord{
		SiteID:            agg.SiteID,
		InspectionTime:    agg.InspectionTime,
		ImageCount:        len(agg.Findings),
		WeightedScore:     math.Round(agg.WeightedScore*100) / 100,
		SiteSeverity:      agg.SiteSeverity,
		HighestImageScore: agg.HighestImageScore,
	}
	if err := t.db.SaveRiskHistory(riskRec); err != nil {
		return err
	}

	// FilteredHazards guarantees the sentinel never reaches history rows.
	for _, hc := range aggregator.FilteredHazards(agg.HazardFrequency) {
		hazardRec := &models.HazardHistoryRecord{
			SiteID:         agg.SiteID,
			InspectionTime: agg.InspectionTime,
			HazardCategory: hc.Category,
			HazardCount:    hc.Count,
		}
		if err := t.db.SaveHazardHistory(hazardRec); err != nil {
			// History is best-effort per row; keep appending the rest.
			log.WithField("site_id", agg.SiteID).Warnf("failed to save hazard history for %q: %v", hc.Category, err)
		}
	}

	return nil
}

// Trend compares the most recent record (the current run) against the one
// before it and computes the moving average over the last window records.
// Requires at least one record; Previous stays nil until two exist.
func (t *Tracker) Trend(siteID string) (*models.TrendSummary, error) {
	records, err := t.db.GetRiskHistory(siteID, t.window)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, models.Validation("no history for site " + siteID)
	}

	summary := &models.TrendSummary{
		Current: records[0],
	}

	if len(records) >= 2 {
		prev := records[1]
		summary.Previous = &prev
		// Delta keeps its sign and is reported to one decimal.
		summary.Delta = math.Round((records[0].WeightedScore-prev.WeightedScore)*10) / 10
	}

	avg, count, err := t.db.GetRecentAverageScore(siteID, t.window)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		summary.MovingAverage = math.Round(avg*100) / 100
		summary.MovingAverageSeverity = models.SeverityFromScore(avg)
	}

	return summary, nil
}

// HazardTotals sums category counts over the site's recent inspections for
// the recurring-hazard view.
func (t *Tracker) HazardTotals(siteID string, lastN int) ([]models.HazardCount, error) {
	return t.db.GetHazardTotals(siteID, lastN)
}
