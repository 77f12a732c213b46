package service

import (
	"fmt"
	"sync"
	"time"

	"site-safety-inspection/aggregator"
	"site-safety-inspection/ai"
	"site-safety-inspection/analyzer"
	"site-safety-inspection/config"
	"site-safety-inspection/database"
	"site-safety-inspection/history"
	"site-safety-inspection/metrics"
	"site-safety-inspection/models"
	"site-safety-inspection/report"
	"site-safety-inspection/storage"

	"github.com/apex/log"
)

// EmailSender delivers notification e-mails.
type EmailSender interface {
	Send(to, subject, body string) error
}

// EventPublisher emits completed inspection summaries to downstream consumers.
type EventPublisher interface {
	Publish(message interface{}) error
	Close() error
}

// InspectionEvent is the message published after each completed run.
type InspectionEvent struct {
	SiteID         string              `json:"site_id"`
	InspectionTime time.Time           `json:"inspection_time"`
	WeightedScore  float64             `json:"weighted_score"`
	SiteSeverity   models.Severity     `json:"site_severity"`
	ImageCount     int                 `json:"image_count"`
	FailedImages   int                 `json:"failed_images"`
	Hazards        []models.HazardCount `json:"hazards"`
}

// Service owns one inspection session: the findings of the most recent run,
// its aggregation, and the alert latch. Runs replace the findings and
// aggregation; the latch is session state and survives runs until
// ResetSession. Reads never mutate any of it.
type Service struct {
	config    *config.Config
	db        *database.Database
	store     *storage.ImageStore
	client    ai.Client
	analyzer  *analyzer.Analyzer
	tracker   *history.Tracker
	sender    EmailSender
	publisher EventPublisher
	zone      *time.Location

	mu          sync.Mutex
	findings    []models.FindingResult
	aggregation *models.SiteAggregation
	alertSent   bool
}

// NewService creates a new inspection service. publisher may be nil when
// RabbitMQ is unavailable; runs then skip the event publish.
func NewService(cfg *config.Config, db *database.Database, client ai.Client, sender EmailSender, publisher EventPublisher) *Service {
	store := storage.NewImageStore(db.GetDB())
	zone := time.FixedZone(fmt.Sprintf("UTC%+d", cfg.TZOffsetHours), cfg.TZOffsetHours*3600)

	log.Infof("Inspection AI provider=%s", client.SourceName())

	return &Service{
		config:    cfg,
		db:        db,
		store:     store,
		client:    client,
		analyzer:  analyzer.New(store, client),
		tracker:   history.NewTracker(db, cfg.HistoryWindow),
		sender:    sender,
		publisher: publisher,
		zone:      zone,
	}
}

// RunAnalysis analyzes one batch of site photos and replaces the current
// session with the outcome. Per-image analysis failures do not abort the
// run; the aggregation covers the successful findings only. The run fails
// outright when the inputs are invalid or no image could be analyzed.
func (s *Service) RunAnalysis(siteID string, images []models.UploadedImage) (*models.SiteAggregation, []models.FindingResult, error) {
	if siteID == "" {
		return nil, nil, models.Validation("site id is required")
	}
	if len(images) == 0 {
		return nil, nil, models.Validation("at least one image is required")
	}
	for _, img := range images {
		if len(img.Data) == 0 {
			return nil, nil, models.Validation(fmt.Sprintf("image %q is empty", img.FileName))
		}
	}

	results := s.analyzer.AnalyzeBatch(images)

	var succeeded []models.ImageFinding
	failed := 0
	for _, r := range results {
		switch {
		case !r.OK():
			failed++
			metrics.ImagesAnalyzedTotal.WithLabelValues("error").Inc()
		case r.Finding.IsNoHazard():
			succeeded = append(succeeded, r.Finding)
			metrics.ImagesAnalyzedTotal.WithLabelValues("no_hazard").Inc()
		default:
			succeeded = append(succeeded, r.Finding)
			metrics.ImagesAnalyzedTotal.WithLabelValues("hazard").Inc()
		}
	}
	agg, err := aggregator.Aggregate(siteID, succeeded, time.Now().In(s.zone))
	if err != nil {
		metrics.InspectionRunsTotal.WithLabelValues("error").Inc()
		return nil, results, models.Validation("no image could be analyzed")
	}

	actions, err := aggregator.PrioritizedActions(s.client, agg)
	if err != nil {
		log.Warnf("Failed to generate prioritized actions for site %s: %v", siteID, err)
	} else {
		agg.PrioritizedActions = actions
	}
	agg.Checklist = aggregator.BuildChecklist(agg.Findings)

	if err := s.tracker.Record(agg); err != nil {
		log.Warnf("Failed to record history for site %s: %v", siteID, err)
	}

	// The alert latch deliberately survives new runs: it belongs to the
	// session and only ResetSession clears it.
	s.mu.Lock()
	s.findings = results
	s.aggregation = agg
	alertNeeded := agg.SiteSeverity == models.SeverityHigh
	s.mu.Unlock()

	if alertNeeded {
		s.sendHighRiskAlert(agg)
	}

	s.publishInspection(agg, len(results), failed)

	metrics.InspectionRunsTotal.WithLabelValues("ok").Inc()
	metrics.SiteWeightedScore.WithLabelValues(siteID).Set(agg.WeightedScore)
	log.Infof("Inspection run for site %s: %d images, %d failed, weighted score %.2f (%s)",
		siteID, len(results), failed, agg.WeightedScore, agg.SiteSeverity)

	return agg, results, nil
}

// Results returns the current session without mutating it. Re-reading never
// re-appends findings, re-records history or re-sends alerts.
func (s *Service) Results() (*models.SiteAggregation, []models.FindingResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.aggregation == nil {
		return nil, nil, models.Validation("no analysis has been run")
	}
	return s.aggregation, s.findings, nil
}

// SendAssessment e-mails the current aggregation summary to recipient.
func (s *Service) SendAssessment(recipient string) error {
	if recipient == "" {
		return models.Validation("recipient address is required")
	}

	s.mu.Lock()
	agg := s.aggregation
	s.mu.Unlock()
	if agg == nil {
		return models.Validation("no analysis has been run")
	}

	subject := fmt.Sprintf("Site Safety Risk Assessment - Site %s", agg.SiteID)
	if err := s.sender.Send(recipient, subject, report.AssessmentEmailBody(agg)); err != nil {
		metrics.EmailsSentTotal.WithLabelValues("assessment", "error").Inc()
		return err
	}
	metrics.EmailsSentTotal.WithLabelValues("assessment", "ok").Inc()
	return nil
}

// RenderReport renders the downloadable HTML report for the current session,
// embedding the stored image bytes.
func (s *Service) RenderReport() (string, error) {
	agg, _, err := s.Results()
	if err != nil {
		return "", err
	}

	images := make(map[string][]byte)
	for _, f := range agg.Findings {
		data, err := s.store.Get(f.ImageID)
		if err != nil {
			log.Warnf("Failed to load image %s for report: %v", f.ImageID, err)
			continue
		}
		images[f.ImageID] = data
	}
	return report.HTMLReport(agg, images), nil
}

// ChecklistExport renders the corrective-action checklist workbook for the
// current session.
func (s *Service) ChecklistExport() ([]byte, error) {
	agg, _, err := s.Results()
	if err != nil {
		return nil, err
	}
	return report.ChecklistXLSX(agg.Checklist)
}

// Trend returns the risk trend summary for siteID.
func (s *Service) Trend(siteID string) (*models.TrendSummary, error) {
	return s.tracker.Trend(siteID)
}

// RiskHistory returns up to limit most recent risk records for siteID.
func (s *Service) RiskHistory(siteID string, limit int) ([]models.RiskHistoryRecord, error) {
	return s.db.GetRiskHistory(siteID, limit)
}

// HazardTotals returns per-category hazard counts over the lastN inspections.
func (s *Service) HazardTotals(siteID string, lastN int) ([]models.HazardCount, error) {
	return s.tracker.HazardTotals(siteID, lastN)
}

// ResetSession discards the current findings, aggregation and alert latch.
func (s *Service) ResetSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findings = nil
	s.aggregation = nil
	s.alertSent = false
}

// Stop releases held connections.
func (s *Service) Stop() {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			log.Warnf("Failed to close publisher: %v", err)
		}
	}
}

// sendHighRiskAlert notifies the safety manager at most once per session.
func (s *Service) sendHighRiskAlert(agg *models.SiteAggregation) {
	s.mu.Lock()
	if s.alertSent {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if s.config.SafetyManagerEmail == "" {
		log.Warn("High site risk but no safety manager email configured, skipping alert")
		return
	}

	subject := fmt.Sprintf("HIGH RISK ALERT - Site %s", agg.SiteID)
	if err := s.sender.Send(s.config.SafetyManagerEmail, subject, report.AlertEmailBody(agg)); err != nil {
		metrics.EmailsSentTotal.WithLabelValues("alert", "error").Inc()
		log.Errorf("Failed to send high risk alert for site %s: %v", agg.SiteID, err)
		return
	}
	metrics.EmailsSentTotal.WithLabelValues("alert", "ok").Inc()
	log.Infof("High risk alert sent to %s for site %s", s.config.SafetyManagerEmail, agg.SiteID)

	s.mu.Lock()
	s.alertSent = true
	s.mu.Unlock()
}

// publishInspection emits the run summary when a publisher is configured.
func (s *Service) publishInspection(agg *models.SiteAggregation, total, failed int) {
	if s.publisher == nil {
		log.Debug("Publisher not available, skipping inspection event")
		return
	}

	event := InspectionEvent{
		SiteID:         agg.SiteID,
		InspectionTime: agg.InspectionTime,
		WeightedScore:  agg.WeightedScore,
		SiteSeverity:   agg.SiteSeverity,
		ImageCount:     total,
		FailedImages:   failed,
		Hazards:        aggregator.FilteredHazards(agg.HazardFrequency),
	}
	if err := s.publisher.Publish(event); err != nil {
		metrics.PublishErrorTotal.Inc()
		log.Errorf("Failed to publish inspection event for site %s: %v", agg.SiteID, err)
		return
	}
	log.Infof("Published inspection event for site %s", agg.SiteID)
}
