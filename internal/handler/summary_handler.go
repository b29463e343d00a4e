package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-assess-api/internal/models"
	"github.com/noah-isme/exam-assess-api/pkg/response"
)

// SummaryService is the aggregation surface consumed by the handler.
type SummaryService interface {
	Get(ctx context.Context, examID, studentID string) (*models.ExamSummary, error)
	Ranking(ctx context.Context, examID, classID string) ([]models.CohortRankingRow, error)
	RecomputeCohort(ctx context.Context, examID, classID string) (int, error)
}

// SummaryHandler exposes derived exam summaries and rankings.
type SummaryHandler struct {
	summaries SummaryService
}

// NewSummaryHandler constructs handler.
func NewSummaryHandler(summaries SummaryService) *SummaryHandler {
	return &SummaryHandler{summaries: summaries}
}

// Get godoc
// @Summary Get a student's exam summary
// @Tags Summaries
// @Produce json
// @Param examId path string true "Exam ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{examId}/students/{studentId}/summary [get]
func (h *SummaryHandler) Get(c *gin.Context) {
	summary, err := h.summaries.Get(c.Request.Context(), c.Param("examId"), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Ranking godoc
// @Summary Get the cohort ranking for an exam and class
// @Tags Summaries
// @Produce json
// @Param examId path string true "Exam ID"
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{examId}/classes/{classId}/ranking [get]
func (h *SummaryHandler) Ranking(c *gin.Context) {
	rankingRows, err := h.summaries.Ranking(c.Request.Context(), c.Param("examId"), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rankingRows, nil)
}

// Recompute godoc
// @Summary Reconcile every summary in an exam class cohort
// @Tags Summaries
// @Produce json
// @Param examId path string true "Exam ID"
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{examId}/classes/{classId}/summaries/recompute [post]
func (h *SummaryHandler) Recompute(c *gin.Context) {
	recomputed, err := h.summaries.RecomputeCohort(c.Request.Context(), c.Param("examId"), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"recomputed": recomputed}, nil)
}
