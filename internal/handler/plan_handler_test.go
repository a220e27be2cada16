package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/prepdeck/study-planner-api/internal/dto"
	"github.com/prepdeck/study-planner-api/internal/middleware"
	"github.com/prepdeck/study-planner-api/internal/models"
	appErrors "github.com/prepdeck/study-planner-api/pkg/errors"
)

type fakePlanSrv struct {
	preview    *dto.PlanPreviewResponse
	previewErr error
	confirm    *dto.ConfirmPlanResponse
	confirmErr error
	plan       *models.StudyPlan
	planErr    error
	plans      []models.StudyPlan
	lastExamID string
	lastPlanID string
}

func (f *fakePlanSrv) Calculate(_ context.Context, _, examID string) (*dto.PlanPreviewResponse, error) {
	f.lastExamID = examID
	return f.preview, f.previewErr
}

func (f *fakePlanSrv) Confirm(_ context.Context, _, planID string) (*dto.ConfirmPlanResponse, error) {
	f.lastPlanID = planID
	return f.confirm, f.confirmErr
}

func (f *fakePlanSrv) GetPlan(_ context.Context, _, planID string) (*models.StudyPlan, error) {
	f.lastPlanID = planID
	return f.plan, f.planErr
}

func (f *fakePlanSrv) ListPlans(context.Context, string) ([]models.StudyPlan, error) {
	return f.plans, nil
}

type fakePlanExport struct {
	data        []byte
	contentType string
	err         error
	lastFormat  string
}

func (f *fakePlanExport) ExportPlan(_ context.Context, _, _, format string) ([]byte, string, error) {
	f.lastFormat = format
	return f.data, f.contentType, f.err
}

func authedContext(t *testing.T, method, target string, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	if body != "" {
		c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
	} else {
		c.Request = httptest.NewRequest(method, target, nil)
	}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{StudentID: "student-1"})
	return c, rec
}

func TestPlanHandlerCalculate(t *testing.T) {
	srv := &fakePlanSrv{preview: &dto.PlanPreviewResponse{
		PlanID:               "plan-1",
		Status:               models.PlanStatusPreview,
		DaysUntilExam:        10,
		EstimatedHoursNeeded: 40,
		RecommendedSessions:  4,
	}}
	handler := NewPlanHandler(srv, &fakePlanExport{})

	c, rec := authedContext(t, http.MethodPost, "/plans/calculate", `{"examId":"exam-1"}`)
	handler.Calculate(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "exam-1", srv.lastExamID)
	var envelope struct {
		Data dto.PlanPreviewResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "plan-1", envelope.Data.PlanID)
	assert.Equal(t, 4, envelope.Data.RecommendedSessions)
}

func TestPlanHandlerCalculateInvalidPayload(t *testing.T) {
	handler := NewPlanHandler(&fakePlanSrv{}, &fakePlanExport{})

	c, rec := authedContext(t, http.MethodPost, "/plans/calculate", `{bad`)
	handler.Calculate(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanHandlerCalculateRejectsPastExam(t *testing.T) {
	srv := &fakePlanSrv{previewErr: appErrors.ErrPastExamDate}
	handler := NewPlanHandler(srv, &fakePlanExport{})

	c, rec := authedContext(t, http.MethodPost, "/plans/calculate", `{"examId":"exam-1"}`)
	handler.Calculate(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), appErrors.ErrPastExamDate.Code)
}

func TestPlanHandlerCalculateUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPlanHandler(&fakePlanSrv{}, &fakePlanExport{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/plans/calculate", strings.NewReader(`{"examId":"exam-1"}`))

	handler.Calculate(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlanHandlerConfirmComplete(t *testing.T) {
	srv := &fakePlanSrv{confirm: &dto.ConfirmPlanResponse{
		PlanID: "plan-1",
		Status: models.PlanStatusComplete,
		Sessions: []dto.SessionResult{
			{SessionID: "s-1", Topic: "Algebra", Persisted: true},
		},
	}}
	handler := NewPlanHandler(srv, &fakePlanExport{})

	c, rec := authedContext(t, http.MethodPost, "/plans/plan-1/confirm", "")
	c.Params = gin.Params{{Key: "id", Value: "plan-1"}}
	handler.Confirm(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "plan-1", srv.lastPlanID)
}

func TestPlanHandlerConfirmPartialFailure(t *testing.T) {
	srv := &fakePlanSrv{confirm: &dto.ConfirmPlanResponse{
		PlanID:  "plan-1",
		Status:  models.PlanStatusComplete,
		Partial: true,
		Sessions: []dto.SessionResult{
			{Topic: "Algebra", Persisted: false, Error: "insert failed"},
			{SessionID: "s-2", Topic: "Geometry", Persisted: true},
		},
	}}
	handler := NewPlanHandler(srv, &fakePlanExport{})

	c, rec := authedContext(t, http.MethodPost, "/plans/plan-1/confirm", "")
	c.Params = gin.Params{{Key: "id", Value: "plan-1"}}
	handler.Confirm(c)

	assert.Equal(t, http.StatusMultiStatus, rec.Code)
	assert.Contains(t, rec.Body.String(), "insert failed")
}

func TestPlanHandlerConfirmWrongState(t *testing.T) {
	srv := &fakePlanSrv{confirmErr: appErrors.ErrPlanState}
	handler := NewPlanHandler(srv, &fakePlanExport{})

	c, rec := authedContext(t, http.MethodPost, "/plans/plan-1/confirm", "")
	c.Params = gin.Params{{Key: "id", Value: "plan-1"}}
	handler.Confirm(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPlanHandlerExportSetsAttachment(t *testing.T) {
	export := &fakePlanExport{data: []byte("a,b\n1,2\n"), contentType: "text/csv"}
	handler := NewPlanHandler(&fakePlanSrv{}, export)

	c, rec := authedContext(t, http.MethodGet, "/plans/plan-1/export?format=csv", "")
	c.Params = gin.Params{{Key: "id", Value: "plan-1"}}
	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", export.lastFormat)
	assert.Equal(t, `attachment; filename="study-plan-plan-1.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n1,2\n", rec.Body.String())
}

func TestPlanHandlerExportPDFExtension(t *testing.T) {
	export := &fakePlanExport{data: []byte("%PDF-1.4"), contentType: "application/pdf"}
	handler := NewPlanHandler(&fakePlanSrv{}, export)

	c, rec := authedContext(t, http.MethodGet, "/plans/plan-1/export?format=pdf", "")
	c.Params = gin.Params{{Key: "id", Value: "plan-1"}}
	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pdf", export.lastFormat)
	assert.Equal(t, `attachment; filename="study-plan-plan-1.pdf"`, rec.Header().Get("Content-Disposition"))
}
