package feedback

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cafe-frontdesk/internal/cafeapi"
	"cafe-frontdesk/internal/export"
	"cafe-frontdesk/internal/models"
	"cafe-frontdesk/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---
// fakes
// ---
type fakeRepo struct {
	submitted []models.FeedbackSubmission
	filters   []models.FeedbackFilter
	page      models.FeedbackPage
	stats     models.FeedbackStats
	err       error
}

func (f *fakeRepo) SubmitFeedback(ctx context.Context, fb models.FeedbackSubmission) error {
	if f.err != nil {
		return f.err
	}
	f.submitted = append(f.submitted, fb)
	return nil
}

func (f *fakeRepo) ListFeedback(ctx context.Context, flt models.FeedbackFilter) (*models.FeedbackPage, error) {
	f.filters = append(f.filters, flt)
	if f.err != nil {
		return nil, f.err
	}
	p := f.page
	return &p, nil
}

func (f *fakeRepo) FeedbackStats(ctx context.Context) (*models.FeedbackStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := f.stats
	return &s, nil
}

type oneViewer struct{ v *Viewer }

func (o oneViewer) ViewerFor(echo.Context) (*Viewer, error) { return o.v, nil }

func sampleRows() []models.FeedbackItem {
	email := "a@b.co"
	order := int64(12)
	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	return []models.FeedbackItem{
		{ID: 1, CustomerName: "Anonymous", Rating: 5, Category: "food", Message: "Great, really", CreatedAt: at},
		{ID: 2, CustomerName: "Ravi", Email: &email, Rating: 2, Category: "service", Message: "Slow", OrderID: &order, CreatedAt: at},
	}
}

// ---
// Submit
// ---
func TestSubmitValidatesOptionalEmail(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil)

	err := svc.Submit(context.Background(), models.FeedbackSubmission{Rating: 4, Message: "ok", Email: "nope"})
	var fe *validation.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, validation.FieldEmail, fe.Field)

	err = svc.Submit(context.Background(), models.FeedbackSubmission{Rating: 0, Message: "ok"})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "rating", fe.Field)

	err = svc.Submit(context.Background(), models.FeedbackSubmission{Rating: 3, Message: "   "})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "message", fe.Field)
	assert.Empty(t, repo.submitted)

	require.NoError(t, svc.Submit(context.Background(), models.FeedbackSubmission{Rating: 5, Message: " lovely ", CustomerName: " Ira "}))
	require.Len(t, repo.submitted, 1)
	assert.Equal(t, "lovely", repo.submitted[0].Message)
	assert.Equal(t, "Ira", repo.submitted[0].CustomerName)
}

// ---
// Viewer
// ---
func TestViewerLoadDefaultsAndExportsLoadedRows(t *testing.T) {
	repo := &fakeRepo{page: models.FeedbackPage{Feedback: sampleRows(), TotalCount: 2, TotalPages: 1, CurrentPage: 1}}
	v := NewViewer(repo)
	v.now = func() time.Time { return time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC) }

	_, err := v.Load(context.Background(), models.FeedbackFilter{Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackFilter{Page: 1, Limit: DefaultPageSize, Rating: 5}, repo.filters[0])

	var buf bytes.Buffer
	name, err := v.Export(&buf, export.CSV)
	require.NoError(t, err)
	assert.Equal(t, "feedback-2026-02-03.csv", name)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "a@b.co", records[2][3])
	assert.Equal(t, "12", records[2][6])
	assert.Equal(t, "Great, really", records[1][7])
}

func TestViewerExportEscapesFormulaCells(t *testing.T) {
	rows := []models.FeedbackItem{{
		ID: 3, CustomerName: "=cmd|' /C calc'!A0", Rating: 1, Category: "food",
		Message: "@SUM(1+1)", CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}}
	v := NewViewer(&fakeRepo{page: models.FeedbackPage{Feedback: rows}})
	_, err := v.Load(context.Background(), models.FeedbackFilter{})
	require.NoError(t, err)

	var csvBuf, jsonBuf bytes.Buffer
	_, err = v.Export(&csvBuf, export.CSV)
	require.NoError(t, err)
	records, err := csv.NewReader(&csvBuf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "'=cmd|' /C calc'!A0", records[1][2])
	assert.Equal(t, "'@SUM(1+1)", records[1][7])

	_, err = v.Export(&jsonBuf, export.JSON)
	require.NoError(t, err)
	assert.Contains(t, jsonBuf.String(), `"message": "@SUM(1+1)"`)
}

func TestViewerExportBeforeLoadIsHeaderOnly(t *testing.T) {
	v := NewViewer(&fakeRepo{})
	var buf bytes.Buffer
	_, err := v.Export(&buf, export.CSV)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestViewerLoadFailureKeepsPreviousRows(t *testing.T) {
	repo := &fakeRepo{page: models.FeedbackPage{Feedback: sampleRows()}}
	v := NewViewer(repo)
	_, err := v.Load(context.Background(), models.FeedbackFilter{})
	require.NoError(t, err)

	repo.err = &cafeapi.APIError{StatusCode: 500, Message: "db down"}
	_, err = v.Load(context.Background(), models.FeedbackFilter{Page: 2})
	require.Error(t, err)
	assert.Len(t, v.Rows(), 2)
}

// ---
// Handler
// ---
func TestHandlerSubmitAndExport(t *testing.T) {
	repo := &fakeRepo{page: models.FeedbackPage{Feedback: sampleRows()}}
	v := NewViewer(repo)
	h := NewHandler(NewService(repo, nil), oneViewer{v})
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader(`{"rating":5,"message":"Nice chai"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Submit(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/feedback?page=1&rating=5", nil)
	rec = httptest.NewRecorder()
	require.NoError(t, h.List(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, repo.filters[0].Rating)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/feedback/export?format=json", nil)
	rec = httptest.NewRecorder()
	require.NoError(t, h.Export(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Body.String(), `"message": "Slow"`)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/feedback/export?format=pdf", nil)
	rec = httptest.NewRecorder()
	require.NoError(t, h.Export(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
