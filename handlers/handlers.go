package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"site-safety-inspection/models"
	"site-safety-inspection/service"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// hazardWindow is how many recent inspections feed the recurring-hazard
// totals on the history endpoint.
const hazardWindow = 10

// Handlers represents the HTTP handlers
type Handlers struct {
	service *service.Service
}

// NewHandlers creates new HTTP handlers
func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{service: svc}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "site-safety-inspection",
	})
}

// Analyze accepts a multipart form with a site_id field and one or more
// image files, runs the inspection and returns the aggregation plus the
// per-image outcomes.
func (h *Handlers) Analyze(c *gin.Context) {
	siteID := c.PostForm("site_id")

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	var images []models.UploadedImage
	for _, fh := range form.File["images"] {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Failed to open uploaded file %s", fh.Filename),
			})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Failed to read uploaded file %s", fh.Filename),
			})
			return
		}
		images = append(images, models.UploadedImage{FileName: fh.Filename, Data: data})
	}

	agg, results, err := h.service.RunAnalysis(siteID, images)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"aggregation": agg,
		"images":      imageOutcomes(results),
	})
}

// Results returns the current session without re-running anything.
func (h *Handlers) Results(c *gin.Context) {
	agg, results, err := h.service.Results()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"aggregation": agg,
		"images":      imageOutcomes(results),
	})
}

// Report serves the downloadable HTML inspection report.
func (h *Handlers) Report(c *gin.Context) {
	html, err := h.service.RenderReport()
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="site_risk_report.html"`)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// Checklist serves the corrective-action checklist workbook.
func (h *Handlers) Checklist(c *gin.Context) {
	data, err := h.service.ChecklistExport()
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="corrective_action_checklist.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

type emailRequest struct {
	Recipient string `json:"recipient" binding:"required"`
}

// Email sends the current assessment summary to the requested recipient.
func (h *Handlers) Email(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recipient is required"})
		return
	}

	if err := h.service.SendAssessment(req.Recipient); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "sent", "recipient": req.Recipient})
}

// History returns the risk records, trend summary and hazard totals for a
// site. A site without history gets 404.
func (h *Handlers) History(c *gin.Context) {
	siteID := c.Param("site_id")

	limit := 50
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	records, err := h.service.RiskHistory(siteID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No history for site"})
		return
	}

	trend, err := h.service.Trend(siteID)
	if err != nil {
		respondError(c, err)
		return
	}

	// The recurring-hazard chart always covers the most recent inspections;
	// the record-list limit does not stretch or shrink its window.
	hazards, err := h.service.HazardTotals(siteID, hazardWindow)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"site_id": siteID,
		"records": records,
		"trend":   trend,
		"hazards": hazards,
	})
}

// Reset discards the current inspection session.
func (h *Handlers) Reset(c *gin.Context) {
	h.service.ResetSession()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

type imageOutcome struct {
	ImageName string               `json:"image_name"`
	Finding   *models.ImageFinding `json:"finding,omitempty"`
	Error     string               `json:"error,omitempty"`
}

func imageOutcomes(results []models.FindingResult) []imageOutcome {
	outcomes := make([]imageOutcome, 0, len(results))
	for _, r := range results {
		o := imageOutcome{ImageName: r.ImageName}
		if r.OK() {
			finding := r.Finding
			o.Finding = &finding
		} else {
			o.Error = r.ErrorText
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

func respondError(c *gin.Context, err error) {
	if models.IsValidation(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Errorf("Request failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
