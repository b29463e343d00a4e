package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-assess-api/internal/models"
	"github.com/noah-isme/exam-assess-api/internal/service"
	appErrors "github.com/noah-isme/exam-assess-api/pkg/errors"
	"github.com/noah-isme/exam-assess-api/pkg/response"
)

// MarkService is the mark entry surface consumed by the handler.
type MarkService interface {
	Upsert(ctx context.Context, req service.UpsertMarkRequest) (*models.MarkRecord, error)
	BulkUpsert(ctx context.Context, req service.BulkMarksRequest) (*models.BulkMarkResult, error)
	FetchForStudentExam(ctx context.Context, examID, studentID string) ([]models.MarkRecord, error)
}

// MarkHandler exposes mark entry endpoints.
type MarkHandler struct {
	marks MarkService
}

// NewMarkHandler constructs handler.
func NewMarkHandler(marks MarkService) *MarkHandler {
	return &MarkHandler{marks: marks}
}

// Upsert godoc
// @Summary Upsert a single mark record
// @Tags Marks
// @Accept json
// @Produce json
// @Param payload body service.UpsertMarkRequest true "Mark payload"
// @Success 200 {object} response.Envelope
// @Router /marks [post]
func (h *MarkHandler) Upsert(c *gin.Context) {
	var req service.UpsertMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.EnteredBy = enteredBy(c)
	mark, err := h.marks.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mark, nil)
}

// Bulk godoc
// @Summary Bulk upsert marks for a class
// @Tags Marks
// @Accept json
// @Produce json
// @Param payload body service.BulkMarksRequest true "Bulk payload"
// @Success 200 {object} response.Envelope
// @Router /marks/bulk [post]
func (h *MarkHandler) Bulk(c *gin.Context) {
	var req service.BulkMarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.EnteredBy = enteredBy(c)
	result, err := h.marks.BulkUpsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List a student's marks for an exam
// @Tags Marks
// @Produce json
// @Param examId path string true "Exam ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{examId}/students/{studentId}/marks [get]
func (h *MarkHandler) List(c *gin.Context) {
	marks, err := h.marks.FetchForStudentExam(c.Request.Context(), c.Param("examId"), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marks, nil)
}
