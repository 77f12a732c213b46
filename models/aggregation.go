package models

import "time"

// HazardCount is one entry of the site hazard frequency list.
type HazardCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ChecklistRow is one deduplicated corrective action with blank fields the
// operator fills in after export.
type ChecklistRow struct {
	CorrectiveAction  string `json:"corrective_action"`
	Completed         string `json:"completed"`
	ResponsiblePerson string `json:"responsible_person"`
	TargetDate        string `json:"target_date"`
	Remarks           string `json:"remarks"`
}

// SiteAggregation is the site-level result of one analysis run. It owns its
// findings; history records derived from it are independent durable facts.
type SiteAggregation struct {
	SiteID             string         `json:"site_id"`
	InspectionTime     time.Time      `json:"inspection_time"`
	Findings           []ImageFinding `json:"findings"`
	HazardFrequency    map[string]int `json:"hazard_frequency"`
	WeightedScore      float64        `json:"weighted_score"`
	SiteSeverity       Severity       `json:"site_severity"`
	SiteHasHazards     bool           `json:"site_has_hazards"`
	HighestImageScore  int            `json:"highest_image_score"`
	PrioritizedActions []string       `json:"prioritized_actions"`
	Checklist          []ChecklistRow `json:"checklist"`
}
