package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"site-safety-inspection/models"
)

func sampleAggregation() *models.SiteAggregation {
	return &models.SiteAggregation{
		SiteID:         "SITE-A",
		InspectionTime: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Findings: []models.ImageFinding{
			{
				ImageID:          "IMG_11111111",
				ImageName:        "scaffold.jpg",
				HasHazard:        true,
				Score:            8,
				Severity:         models.SeverityHigh,
				HazardCategories: []string{"Fall Risk"},
			},
			models.NoHazardFinding("IMG_22222222", "yard.jpg"),
		},
		HazardFrequency: map[string]int{
			"Fall Risk":            1,
			models.NoVisibleHazard: 1,
		},
		WeightedScore:      8.0,
		SiteSeverity:       models.SeverityHigh,
		SiteHasHazards:     true,
		HighestImageScore:  8,
		PrioritizedActions: []string{"Install guardrails", "Brief the crew"},
	}
}

func TestAlertEmailBody(t *testing.T) {
	body := AlertEmailBody(sampleAggregation())

	assert.Contains(t, body, "HIGH SITE RISK ALERT")
	assert.Contains(t, body, "Site ID: SITE-A")
	assert.Contains(t, body, "Weighted Site Risk Score: 8.00")
	assert.Contains(t, body, "Site Severity: High")
	assert.Contains(t, body, "- Fall Risk: 1 images")
	assert.NotContains(t, body, models.NoVisibleHazard, "sentinel must not appear in alert bodies")
}

func TestAssessmentEmailBodyFallback(t *testing.T) {
	agg := sampleAggregation()
	agg.PrioritizedActions = nil

	body := AssessmentEmailBody(agg)
	assert.Contains(t, body, "No actions identified.")
}

func TestHTMLReport(t *testing.T) {
	agg := sampleAggregation()
	images := map[string][]byte{
		"IMG_11111111": []byte("fake-jpeg-bytes"),
	}

	doc := HTMLReport(agg, images)

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, "SITE-A")
	assert.Contains(t, doc, "data:image/jpeg;base64,")
	assert.Contains(t, doc, "scaffold.jpg")
	assert.Contains(t, doc, "<li>Fall Risk: 1 images</li>")
	assert.Contains(t, doc, "<li>Install guardrails</li>")
	// yard.jpg has no stored bytes: row renders without a thumbnail.
	assert.Contains(t, doc, "yard.jpg")
}

func TestChecklistXLSX(t *testing.T) {
	rows := []models.ChecklistRow{
		{CorrectiveAction: "Install guardrails"},
		{CorrectiveAction: "Clear the walkway"},
	}

	data, err := ChecklistXLSX(rows)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Corrective Actions", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Corrective Action", header)

	first, err := f.GetCellValue("Corrective Actions", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Install guardrails", first)

	second, err := f.GetCellValue("Corrective Actions", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Clear the walkway", second)

	completed, err := f.GetCellValue("Corrective Actions", "B2")
	require.NoError(t, err)
	assert.Equal(t, "", completed, "operator fields start blank")
}

func TestChecklistXLSXEmptyRows(t *testing.T) {
	data, err := ChecklistXLSX(nil)
	require.NoError(t, err)
	require.NotEmpty(t, data, "empty checklist still yields a template workbook")
}
