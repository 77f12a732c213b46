package aggregator

import (
	"sort"
	"time"

	"site-safety-inspection/models"
)

// Aggregate combines one run's findings into a site-level result: hazard
// frequency counts, the severity-weighted site score, site severity and the
// hazard-presence gate for downstream actions.
//
// The finding sequence must be non-empty; an empty run is a precondition
// violation. Only hazardous findings carry weight: a site whose images are
// all clean scores 0 rather than dividing by zero.
func Aggregate(siteID string, findings []models.ImageFinding, inspectionTime time.Time) (*models.SiteAggregation, error) {
	if len(findings) == 0 {
		return nil, models.Validation("no findings to aggregate")
	}

	frequency := make(map[string]int)
	weightedSum := 0.0
	weightTotal := 0
	highest := 0
	hasHazards := false

	for _, f := range findings {
		// The sentinel counts into the working frequency map; reporting
		// and history boundaries exclude it via FilteredHazards.
		for _, category := range f.HazardCategories {
			frequency[category]++
		}

		if f.HasHazard {
			weight := f.Severity.Weight()
			weightedSum += float64(f.Score) * float64(weight)
			weightTotal += weight
			hasHazards = true
		}

		if f.Score > highest {
			highest = f.Score
		}
	}

	weightedScore := 0.0
	if weightTotal > 0 {
		weightedScore = weightedSum / float64(weightTotal)
	}

	return &models.SiteAggregation{
		SiteID:            siteID,
		InspectionTime:    inspectionTime,
		Findings:          findings,
		HazardFrequency:   frequency,
		WeightedScore:     weightedScore,
		SiteSeverity:      models.SeverityFromScore(weightedScore),
		SiteHasHazards:    hasHazards,
		HighestImageScore: highest,
	}, nil
}

// FilteredHazards returns the frequency list with the sentinel category
// removed, sorted by descending count with category name as a deterministic
// tie-break. This is the only view persistence and reporting may use.
func FilteredHazards(frequency map[string]int) []models.HazardCount {
	counts := make([]models.HazardCount, 0, len(frequency))
	for category, count := range frequency {
		if category == models.NoVisibleHazard {
			continue
		}
		counts = append(counts, models.HazardCount{Category: category, Count: count})
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Category < counts[j].Category
	})

	return counts
}
