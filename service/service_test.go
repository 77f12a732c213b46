package service

import (
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-safety-inspection/config"
	"site-safety-inspection/database"
	"site-safety-inspection/models"
	"site-safety-inspection/parser"
)

// fakeAIClient answers filter questions in call order and returns the same
// analysis payload for every hazardous image. A Complete call without image
// bytes is the site-level prioritization prompt.
type fakeAIClient struct {
	filterAnswers []bool
	filterCalls   int
	analysisJSON  string
	siteActions   string
}

func (f *fakeAIClient) Filter(question string, image []byte) (bool, error) {
	f.filterCalls++
	return f.filterAnswers[f.filterCalls-1], nil
}

func (f *fakeAIClient) Classify(image []byte, categories []string) (parser.ClassifyResult, error) {
	return parser.StructuredResult([]string{"Fall Risk"}), nil
}

func (f *fakeAIClient) Complete(prompt string, image []byte) (string, error) {
	if image == nil {
		return f.siteActions, nil
	}
	return f.analysisJSON, nil
}

func (f *fakeAIClient) SourceName() string { return "fake" }

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeSender struct {
	sent []sentMail
}

func (f *fakeSender) Send(to, subject, body string) error {
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fakePublisher struct {
	events []interface{}
}

func (f *fakePublisher) Publish(message interface{}) error {
	f.events = append(f.events, message)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		SafetyManagerEmail: "manager@example.com",
		HistoryWindow:      3,
		TZOffsetHours:      8,
	}
}

func setupService(t *testing.T, client *fakeAIClient) (*Service, sqlmock.Sqlmock, *fakeSender, *fakePublisher, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sender := &fakeSender{}
	publisher := &fakePublisher{}
	svc := NewService(testConfig(), database.NewDatabaseFromConn(db), client, sender, publisher)
	return svc, mock, sender, publisher, func() { db.Close() }
}

const highRiskJSON = `{
	"risk_score": "8",
	"detected_hazards": "- Unguarded scaffold edge",
	"recommended_actions": "- Install guardrails\n- Cordon off the area",
	"risk_explanation": "Workers are exposed to a fall from height."
}`

func TestRunAnalysisHighRiskSendsOneAlert(t *testing.T) {
	// Three images, pre-filter clears two and flags one at score 8: clean
	// images carry no weight, so the site scores 8.0 High and exactly one
	// automatic alert goes out.
	client := &fakeAIClient{
		filterAnswers: []bool{false, false, true},
		analysisJSON:  highRiskJSON,
		siteActions:   "- Install guardrails\n- Cordon off the area\n- Brief the crew\n- Audit scaffolding",
	}
	svc, mock, sender, publisher, cleanup := setupService(t, client)
	defer cleanup()

	for i := 0; i < 3; i++ {
		mock.ExpectExec("REPLACE INTO inspection_images").WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectExec("INSERT INTO site_risk_history").
		WithArgs("SITE-7", sqlmock.AnyArg(), 3, 8.0, "High", 8).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO site_hazard_history").
		WithArgs("SITE-7", sqlmock.AnyArg(), "Fall Risk", 1).
		WillReturnResult(sqlmock.NewResult(1, 1))

	images := []models.UploadedImage{
		{FileName: "walkway.jpg", Data: []byte("a")},
		{FileName: "storage.jpg", Data: []byte("b")},
		{FileName: "scaffold.jpg", Data: []byte("c")},
	}

	agg, results, err := svc.RunAnalysis("SITE-7", images)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.InDelta(t, 8.0, agg.WeightedScore, 1e-9)
	assert.Equal(t, models.SeverityHigh, agg.SiteSeverity)
	assert.True(t, agg.SiteHasHazards)
	assert.Len(t, agg.PrioritizedActions, 3, "prioritized actions are capped at three")
	require.NotEmpty(t, agg.Checklist)
	assert.Equal(t, "Install guardrails", agg.Checklist[0].CorrectiveAction)

	// Exactly one automatic alert, to the configured safety manager.
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "manager@example.com", sender.sent[0].to)
	assert.Contains(t, sender.sent[0].subject, "SITE-7")
	assert.Contains(t, sender.sent[0].body, "HIGH SITE RISK ALERT")

	// One inspection event published per run.
	require.Len(t, publisher.events, 1)
	event, ok := publisher.events[0].(InspectionEvent)
	require.True(t, ok)
	assert.Equal(t, "SITE-7", event.SiteID)
	assert.InDelta(t, 8.0, event.WeightedScore, 1e-9)
	assert.Equal(t, 0, event.FailedImages)

	assert.NoError(t, mock.ExpectationsWereMet())
}

const mediumRiskJSON = `{
	"risk_score": "5",
	"detected_hazards": "- Faded walkway markings",
	"recommended_actions": "- Repaint walkway markings",
	"risk_explanation": "Pedestrian routing is unclear near vehicle traffic."
}`

func TestRunAnalysisMediumRiskNoAlert(t *testing.T) {
	client := &fakeAIClient{
		filterAnswers: []bool{true, false, false},
		analysisJSON:  mediumRiskJSON,
		siteActions:   "- Repaint walkway markings",
	}
	svc, mock, sender, _, cleanup := setupService(t, client)
	defer cleanup()

	for i := 0; i < 3; i++ {
		mock.ExpectExec("REPLACE INTO inspection_images").WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectExec("INSERT INTO site_risk_history").
		WithArgs("SITE-7", sqlmock.AnyArg(), 3, 5.0, "Medium", 5).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO site_hazard_history").
		WithArgs("SITE-7", sqlmock.AnyArg(), "Fall Risk", 1).
		WillReturnResult(sqlmock.NewResult(1, 1))

	images := []models.UploadedImage{
		{FileName: "a.jpg", Data: []byte("a")},
		{FileName: "b.jpg", Data: []byte("b")},
		{FileName: "c.jpg", Data: []byte("c")},
	}

	agg, _, err := svc.RunAnalysis("SITE-7", images)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, agg.WeightedScore, 1e-9)
	assert.Equal(t, models.SeverityMedium, agg.SiteSeverity)
	assert.Empty(t, sender.sent, "no automatic alert below High")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunAnalysisValidatesBeforeBackendCalls(t *testing.T) {
	client := &fakeAIClient{}
	svc, mock, _, _, cleanup := setupService(t, client)
	defer cleanup()

	_, _, err := svc.RunAnalysis("", []models.UploadedImage{{FileName: "a.jpg", Data: []byte("a")}})
	assert.True(t, models.IsValidation(err))

	_, _, err = svc.RunAnalysis("SITE-7", nil)
	assert.True(t, models.IsValidation(err))

	_, _, err = svc.RunAnalysis("SITE-7", []models.UploadedImage{{FileName: "empty.jpg"}})
	assert.True(t, models.IsValidation(err))

	assert.Equal(t, 0, client.filterCalls, "validation failures must not reach the AI backend")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultsDoNotMutateSession(t *testing.T) {
	client := &fakeAIClient{
		filterAnswers: []bool{true, true},
		analysisJSON:  highRiskJSON,
		siteActions:   "- Install guardrails",
	}
	svc, mock, sender, _, cleanup := setupService(t, client)
	defer cleanup()

	mock.ExpectExec("REPLACE INTO inspection_images").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("REPLACE INTO inspection_images").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO site_risk_history").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO site_hazard_history").WillReturnResult(sqlmock.NewResult(1, 1))

	images := []models.UploadedImage{
		{FileName: "a.jpg", Data: []byte("a")},
		{FileName: "b.jpg", Data: []byte("b")},
	}
	_, _, err := svc.RunAnalysis("SITE-7", images)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		agg, results, err := svc.Results()
		require.NoError(t, err)
		assert.Len(t, results, 2, "re-reading results must not re-append findings")
		assert.Len(t, agg.Findings, 2)
	}

	assert.Len(t, sender.sent, 1, "re-reading results must not re-send the alert")
	assert.Equal(t, 2, client.filterCalls, "re-reading results must not re-run analysis")
}

func TestResultsWithoutRun(t *testing.T) {
	svc, _, _, _, cleanup := setupService(t, &fakeAIClient{})
	defer cleanup()

	_, _, err := svc.Results()
	assert.True(t, models.IsValidation(err))
}

func TestSendAssessment(t *testing.T) {
	client := &fakeAIClient{
		filterAnswers: []bool{false},
		siteActions:   "- Install guardrails",
	}
	svc, mock, sender, _, cleanup := setupService(t, client)
	defer cleanup()

	require.True(t, models.IsValidation(svc.SendAssessment("someone@example.com")),
		"assessment requires a completed run")

	mock.ExpectExec("REPLACE INTO inspection_images").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO site_risk_history").WillReturnResult(sqlmock.NewResult(1, 1))

	_, _, err := svc.RunAnalysis("SITE-7", []models.UploadedImage{{FileName: "a.jpg", Data: []byte("a")}})
	require.NoError(t, err)

	require.True(t, models.IsValidation(svc.SendAssessment("")))

	require.NoError(t, svc.SendAssessment("someone@example.com"))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "someone@example.com", sender.sent[0].to)
	assert.Contains(t, sender.sent[0].subject, "SITE-7")
	assert.Contains(t, sender.sent[0].body, "SITE SAFETY RISK ASSESSMENT")
	assert.Contains(t, sender.sent[0].body, "No actions identified.",
		"a clean site falls back to the no-actions line")
	assert.False(t, strings.Contains(sender.sent[0].body, models.NoVisibleHazard),
		"the sentinel category never appears in outbound mail")
}

func TestResetSession(t *testing.T) {
	client := &fakeAIClient{
		filterAnswers: []bool{false},
		siteActions:   "- Install guardrails",
	}
	svc, mock, _, _, cleanup := setupService(t, client)
	defer cleanup()

	mock.ExpectExec("REPLACE INTO inspection_images").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO site_risk_history").WillReturnResult(sqlmock.NewResult(1, 1))

	_, _, err := svc.RunAnalysis("SITE-7", []models.UploadedImage{{FileName: "a.jpg", Data: []byte("a")}})
	require.NoError(t, err)

	svc.ResetSession()
	_, _, err = svc.Results()
	assert.True(t, models.IsValidation(err))
}

func TestAlertLatchSurvivesNewRun(t *testing.T) {
	// The high-risk alert goes out once per session: a follow-up run that
	// is still High must not mail the safety manager again. Only starting
	// a fresh session arms the alert once more.
	client := &fakeAIClient{
		filterAnswers: []bool{true, true, true},
		analysisJSON:  highRiskJSON,
		siteActions:   "- Install guardrails",
	}
	svc, mock, sender, _, cleanup := setupService(t, client)
	defer cleanup()

	for i := 0; i < 3; i++ {
		mock.ExpectExec("REPLACE INTO inspection_images").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO site_risk_history").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO site_hazard_history").WillReturnResult(sqlmock.NewResult(1, 1))
	}

	images := []models.UploadedImage{{FileName: "scaffold.jpg", Data: []byte("a")}}

	_, _, err := svc.RunAnalysis("SITE-7", images)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	_, _, err = svc.RunAnalysis("SITE-7", images)
	require.NoError(t, err)
	assert.Len(t, sender.sent, 1, "a second High run in the same session sends no second alert")

	svc.ResetSession()
	_, _, err = svc.RunAnalysis("SITE-7", images)
	require.NoError(t, err)
	assert.Len(t, sender.sent, 2, "a new session arms the alert again")

	assert.NoError(t, mock.ExpectationsWereMet())
}
