package database

import (
	"database/sql"
	"fmt"

	"site-safety-inspection/models"
)

// SaveRiskHistory appends one site risk record. Values are always bound as
// parameters; site ids and AI-derived text never reach the statement text.
func (d *Database) SaveRiskHistory(rec *models.RiskHistoryRecord) error {
	query := `
	INSERT INTO site_risk_history
		(site_id, inspection_ts, image_count, weighted_score, site_severity, highest_image_score)
	VALUES (?, ?, ?, ?, ?, ?)`

	_, err := d.db.Exec(query,
		rec.SiteID,
		rec.InspectionTime,
		rec.ImageCount,
		rec.WeightedScore,
		rec.SiteSeverity.String(),
		rec.HighestImageScore,
	)
	if err != nil {
		return fmt.Errorf("failed to save risk history: %w", err)
	}
	return nil
}

// SaveHazardHistory appends one per-category frequency record.
func (d *Database) SaveHazardHistory(rec *models.HazardHistoryRecord) error {
	query := `
	INSERT INTO site_hazard_history
		(site_id, inspection_ts, hazard_category, hazard_count)
	VALUES (?, ?, ?, ?)`

	_, err := d.db.Exec(query,
		rec.SiteID,
		rec.InspectionTime,
		rec.HazardCategory,
		rec.HazardCount,
	)
	if err != nil {
		return fmt.Errorf("failed to save hazard history: %w", err)
	}
	return nil
}

// GetRiskHistory returns up to limit records for the site, most recent
// first. A limit of 0 returns all records.
func (d *Database) GetRiskHistory(siteID string, limit int) ([]models.RiskHistoryRecord, error) {
	query := `
	SELECT site_id, inspection_ts, image_count, weighted_score, site_severity, highest_image_score
	FROM site_risk_history
	WHERE site_id = ?
	ORDER BY inspection_ts DESC, id DESC`

	args := []any{siteID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query risk history: %w", err)
	}
	defer rows.Close()

	var records []models.RiskHistoryRecord
	for rows.Next() {
		var rec models.RiskHistoryRecord
		var severity string
		if err := rows.Scan(
			&rec.SiteID,
			&rec.InspectionTime,
			&rec.ImageCount,
			&rec.WeightedScore,
			&severity,
			&rec.HighestImageScore,
		); err != nil {
			return nil, fmt.Errorf("failed to scan risk history row: %w", err)
		}
		rec.SiteSeverity = models.Severity(severity)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate risk history rows: %w", err)
	}

	return records, nil
}

// GetRecentAverageScore returns the mean weighted score over the most
// recent window records for the site, and how many records contributed.
func (d *Database) GetRecentAverageScore(siteID string, window int) (float64, int, error) {
	query := `
	SELECT AVG(weighted_score), COUNT(*)
	FROM (
		SELECT weighted_score
		FROM site_risk_history
		WHERE site_id = ?
		ORDER BY inspection_ts DESC, id DESC
		LIMIT ?
	) recent`

	var avg sql.NullFloat64
	var count int
	if err := d.db.QueryRow(query, siteID, window).Scan(&avg, &count); err != nil {
		return 0, 0, fmt.Errorf("failed to query recent average: %w", err)
	}
	if !avg.Valid {
		return 0, 0, nil
	}
	return avg.Float64, count, nil
}

// GetHazardTotals sums per-category counts over the site's most recent
// lastN inspections, largest totals first.
func (d *Database) GetHazardTotals(siteID string, lastN int) ([]models.HazardCount, error) {
	query := `
	SELECT hazard_category, SUM(hazard_count) AS total_count
	FROM site_hazard_history
	WHERE site_id = ?
	  AND inspection_ts IN (
		SELECT inspection_ts FROM (
			SELECT DISTINCT inspection_ts
			FROM site_hazard_history
			WHERE site_id = ?
			ORDER BY inspection_ts DESC
			LIMIT ?
		) recent
	  )
	GROUP BY hazard_category
	ORDER BY total_count DESC`

	rows, err := d.db.Query(query, siteID, siteID, lastN)
	if err != nil {
		return nil, fmt.Errorf("failed to query hazard totals: %w", err)
	}
	defer rows.Close()

	var totals []models.HazardCount
	for rows.Next() {
		var hc models.HazardCount
		if err := rows.Scan(&hc.Category, &hc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan hazard total row: %w", err)
		}
		totals = append(totals, hc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hazard total rows: %w", err)
	}

	return totals, nil
}
