package models

import "time"

// RiskHistoryRecord is one append-only row of site risk history.
type RiskHistoryRecord struct {
	SiteID            string    `json:"site_id"`
	InspectionTime    time.Time `json:"inspection_time"`
	ImageCount        int       `json:"image_count"`
	WeightedScore     float64   `json:"weighted_score"`
	SiteSeverity      Severity  `json:"site_severity"`
	HighestImageScore int       `json:"highest_image_score"`
}

// HazardHistoryRecord is one append-only per-category frequency row.
type HazardHistoryRecord struct {
	SiteID         string    `json:"site_id"`
	InspectionTime time.Time `json:"inspection_time"`
	HazardCategory string    `json:"hazard_category"`
	HazardCount    int       `json:"hazard_count"`
}

// TrendSummary compares the current run against site history.
type TrendSummary struct {
	Current  RiskHistoryRecord  `json:"current"`
	Previous *RiskHistoryRecord `json:"previous,omitempty"`
	// Delta is current minus previous weighted score, rounded to one
	// decimal. Only meaningful when Previous is set.
	Delta float64 `json:"delta"`
	// MovingAverage is the mean weighted score over the most recent
	// records (up to the configured window), with severity re-derived
	// from that average.
	MovingAverage         float64  `json:"moving_average"`
	MovingAverageSeverity Severity `json:"moving_average_severity"`
}
