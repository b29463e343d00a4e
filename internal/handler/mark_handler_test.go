package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-assess-api/internal/middleware"
	"github.com/noah-isme/exam-assess-api/internal/models"
	"github.com/noah-isme/exam-assess-api/internal/service"
	appErrors "github.com/noah-isme/exam-assess-api/pkg/errors"
	"github.com/noah-isme/exam-assess-api/pkg/response"
)

type markServiceMock struct {
	upsertResp *models.MarkRecord
	upsertErr  error
	bulkResp   *models.BulkMarkResult
	bulkErr    error
	listResp   []models.MarkRecord
	listErr    error

	lastUpsert service.UpsertMarkRequest
	lastBulk   service.BulkMarksRequest
	upserted   bool
	bulked     bool
}

func (m *markServiceMock) Upsert(ctx context.Context, req service.UpsertMarkRequest) (*models.MarkRecord, error) {
	m.upserted = true
	m.lastUpsert = req
	return m.upsertResp, m.upsertErr
}

func (m *markServiceMock) BulkUpsert(ctx context.Context, req service.BulkMarksRequest) (*models.BulkMarkResult, error) {
	m.bulked = true
	m.lastBulk = req
	return m.bulkResp, m.bulkErr
}

func (m *markServiceMock) FetchForStudentExam(ctx context.Context, examID, studentID string) ([]models.MarkRecord, error) {
	return m.listResp, m.listErr
}

func teacherContext(w *httptest.ResponseRecorder) (*gin.Context, func(method, path, body string)) {
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})
	return c, func(method, path, body string) {
		req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req
	}
}

func TestMarkHandlerUpsert(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &markServiceMock{
		upsertResp: &models.MarkRecord{ID: "mark-1", Grade: "B", Percentage: 72},
	}
	handler := NewMarkHandler(mockSvc)

	w := httptest.NewRecorder()
	c, send := teacherContext(w)
	send(http.MethodPost, "/marks", `{"exam_id":"exam-1","student_id":"stu-1","subject_id":"math","max_marks":100,"marks_obtained":72}`)

	handler.Upsert(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.upserted)
	assert.Equal(t, "teacher-1", mockSvc.lastUpsert.EnteredBy)
}

func TestMarkHandlerUpsertInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMarkHandler(&markServiceMock{})

	w := httptest.NewRecorder()
	c, send := teacherContext(w)
	send(http.MethodPost, "/marks", `{"exam_id":`)

	handler.Upsert(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkHandlerUpsertLockedMark(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &markServiceMock{upsertErr: appErrors.ErrMarkLocked}
	handler := NewMarkHandler(mockSvc)

	w := httptest.NewRecorder()
	c, send := teacherContext(w)
	send(http.MethodPost, "/marks", `{"exam_id":"exam-1","student_id":"stu-1","subject_id":"math","max_marks":100,"marks_obtained":72}`)

	handler.Upsert(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrMarkLocked.Code, envelope.Error.Code)
}

func TestMarkHandlerBulkPartialSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &markServiceMock{
		bulkResp: &models.BulkMarkResult{
			Saved:  []models.MarkRecord{{ID: "mark-1"}, {ID: "mark-2"}},
			Errors: []models.BulkMarkError{{StudentID: "stu-2", SubjectID: "phys", Error: "marks obtained 95.00 out of range [0, 80.00]"}},
		},
	}
	handler := NewMarkHandler(mockSvc)

	w := httptest.NewRecorder()
	c, send := teacherContext(w)
	send(http.MethodPost, "/marks/bulk", `{"exam_id":"exam-1","class_id":"class-1","students":[{"student_id":"stu-1","subjects":[{"subject_id":"math","marks_obtained":80}]}]}`)

	handler.Bulk(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.bulked)
	assert.Equal(t, "teacher-1", mockSvc.lastBulk.EnteredBy)

	var envelope struct {
		Data models.BulkMarkResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Saved, 2)
	require.Len(t, envelope.Data.Errors, 1)
	assert.Equal(t, "stu-2", envelope.Data.Errors[0].StudentID)
}

func TestMarkHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &markServiceMock{listResp: []models.MarkRecord{{ID: "mark-1", SubjectID: "math"}}}
	handler := NewMarkHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/exams/exam-1/students/stu-1/marks", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "examId", Value: "exam-1"}, {Key: "studentId", Value: "stu-1"}}

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
}
