package analyzer

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-safety-inspection/metrics"
	"site-safety-inspection/models"
	"site-safety-inspection/parser"
	"site-safety-inspection/storage"
)

// scriptedClient returns pre-programmed answers per image in call order.
type scriptedClient struct {
	filterAnswers []bool
	filterErr     error
	filterErrAt   int // 1-based call index that fails; 0 = never
	classifyRes   parser.ClassifyResult
	completeRes   string
	completeErr   error

	filterCalls   int
	classifyCalls int
	completeCalls int
}

func (s *scriptedClient) Filter(question string, image []byte) (bool, error) {
	s.filterCalls++
	if s.filterErrAt != 0 && s.filterCalls == s.filterErrAt {
		return false, s.filterErr
	}
	return s.filterAnswers[s.filterCalls-1], nil
}

func (s *scriptedClient) Classify(image []byte, categories []string) (parser.ClassifyResult, error) {
	s.classifyCalls++
	return s.classifyRes, nil
}

func (s *scriptedClient) Complete(prompt string, image []byte) (string, error) {
	s.completeCalls++
	return s.completeRes, s.completeErr
}

func (s *scriptedClient) SourceName() string { return "scripted" }

func newTestStore(t *testing.T, puts int) (*storage.ImageStore, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	for i := 0; i < puts; i++ {
		mock.ExpectExec("REPLACE INTO inspection_images").
			WillReturnResult(sqlmock.NewResult(1, 1))
	}

	return storage.NewImageStore(db), mock, func() { db.Close() }
}

func TestAnalyzeImageShortCircuit(t *testing.T) {
	store, mock, cleanup := newTestStore(t, 1)
	defer cleanup()

	client := &scriptedClient{filterAnswers: []bool{false}}
	a := New(store, client)

	finding, err := a.AnalyzeImage(models.UploadedImage{FileName: "clean.jpg", Data: []byte("img")})
	require.NoError(t, err)

	assert.False(t, finding.HasHazard)
	assert.Equal(t, 0, finding.Score)
	assert.Equal(t, models.SeverityLow, finding.Severity)
	assert.Equal(t, []string{models.NoVisibleHazard}, finding.HazardCategories)
	assert.Equal(t, models.NoHazardExplanation, finding.RiskExplanation)

	// The short-circuit must make no further backend calls.
	assert.Equal(t, 1, client.filterCalls)
	assert.Equal(t, 0, client.classifyCalls)
	assert.Equal(t, 0, client.completeCalls)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyzeImageFullAnalysis(t *testing.T) {
	store, mock, cleanup := newTestStore(t, 1)
	defer cleanup()

	client := &scriptedClient{
		filterAnswers: []bool{true},
		classifyRes:   parser.StructuredResult([]string{"Fall Risk", "Missing PPE"}),
		completeRes: `{
			"risk_score": "8",
			"detected_hazards": "- **Unguarded edge** on scaffold",
			"recommended_actions": "- Install guardrails",
			"risk_explanation": "Workers near an unguarded edge face a fall risk."
		}`,
	}
	a := New(store, client)

	finding, err := a.AnalyzeImage(models.UploadedImage{FileName: "site.jpg", Data: []byte("img")})
	require.NoError(t, err)

	assert.True(t, finding.HasHazard)
	assert.Equal(t, 8, finding.Score)
	assert.Equal(t, models.SeverityHigh, finding.Severity)
	assert.Equal(t, []string{"Fall Risk", "Missing PPE"}, finding.HazardCategories)
	assert.Equal(t, "- **Unguarded edge** on scaffold", finding.DetectedHazardsRaw)
	assert.Equal(t, "- Install guardrails", finding.RecommendedActionsRaw)
	assert.Equal(t, "Workers near an unguarded edge face a fall risk.", finding.RiskExplanation)
	assert.Contains(t, finding.ImageID, "IMG_")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyzeImageScoreParseFailure(t *testing.T) {
	store, _, cleanup := newTestStore(t, 1)
	defer cleanup()

	client := &scriptedClient{
		filterAnswers: []bool{true},
		classifyRes:   parser.StructuredResult([]string{"Fall Risk"}),
		completeRes:   `{"risk_score": "unknown", "risk_explanation": "noise"}`,
	}
	a := New(store, client)

	_, err := a.AnalyzeImage(models.UploadedImage{FileName: "site.jpg", Data: []byte("img")})
	require.Error(t, err)
	assert.True(t, models.IsParse(err), "want ParseError, got %v", err)
}

func TestAnalyzeBatchIsolatesFailures(t *testing.T) {
	store, _, cleanup := newTestStore(t, 3)
	defer cleanup()

	client := &scriptedClient{
		filterAnswers: []bool{false, false, false},
		filterErr:     errors.New("service unavailable"),
		filterErrAt:   2,
	}
	a := New(store, client)

	images := []models.UploadedImage{
		{FileName: "a.jpg", Data: []byte("a")},
		{FileName: "b.jpg", Data: []byte("b")},
		{FileName: "c.jpg", Data: []byte("c")},
	}

	results := a.AnalyzeBatch(images)
	require.Len(t, results, 3)

	assert.True(t, results[0].OK())
	assert.False(t, results[1].OK())
	assert.True(t, results[2].OK(), "failure of one image must not abort its siblings")

	// Results stay in upload order.
	assert.Equal(t, "a.jpg", results[0].ImageName)
	assert.Equal(t, "b.jpg", results[1].ImageName)
	assert.Equal(t, "c.jpg", results[2].ImageName)
}

func durationSamples(t *testing.T) uint64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.AnalysisDurationSeconds.Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestAnalyzeBatchTimesEachImage(t *testing.T) {
	store, _, cleanup := newTestStore(t, 3)
	defer cleanup()

	client := &scriptedClient{
		filterAnswers: []bool{false, false, false},
		filterErr:     errors.New("service unavailable"),
		filterErrAt:   2,
	}
	a := New(store, client)

	images := []models.UploadedImage{
		{FileName: "a.jpg", Data: []byte("a")},
		{FileName: "b.jpg", Data: []byte("b")},
		{FileName: "c.jpg", Data: []byte("c")},
	}

	before := durationSamples(t)
	a.AnalyzeBatch(images)

	// Every image gets its own duration sample, failed ones included.
	assert.Equal(t, before+3, durationSamples(t))
}
