package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-assess-api/internal/service"
	appErrors "github.com/noah-isme/exam-assess-api/pkg/errors"
	"github.com/noah-isme/exam-assess-api/pkg/response"
)

// ReviewService is the workflow surface consumed by the handler.
type ReviewService interface {
	Submit(ctx context.Context, req service.SubmitMarksRequest) (*service.SubmitResult, error)
	Approve(ctx context.Context, req service.ApproveMarksRequest) (*service.ApproveResult, error)
	RequestCorrection(ctx context.Context, req service.RequestCorrectionRequest) (int64, error)
}

// ReviewHandler exposes the mark review workflow.
type ReviewHandler struct {
	reviews ReviewService
}

// NewReviewHandler constructs handler.
func NewReviewHandler(reviews ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Submit godoc
// @Summary Submit a cohort's marks for review
// @Tags Review
// @Accept json
// @Produce json
// @Param payload body service.SubmitMarksRequest true "Submit payload"
// @Success 200 {object} response.Envelope
// @Router /reviews/submit [post]
func (h *ReviewHandler) Submit(c *gin.Context) {
	var req service.SubmitMarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.reviews.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Approve godoc
// @Summary Approve a cohort's submitted marks and compute ranks
// @Tags Review
// @Accept json
// @Produce json
// @Param payload body service.ApproveMarksRequest true "Approve payload"
// @Success 200 {object} response.Envelope
// @Router /reviews/approve [post]
func (h *ReviewHandler) Approve(c *gin.Context) {
	var req service.ApproveMarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.reviews.Approve(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// RequestCorrection godoc
// @Summary Flag a cohort's submitted marks back for correction
// @Tags Review
// @Accept json
// @Produce json
// @Param payload body service.RequestCorrectionRequest true "Correction payload"
// @Success 200 {object} response.Envelope
// @Router /reviews/request-correction [post]
func (h *ReviewHandler) RequestCorrection(c *gin.Context) {
	var req service.RequestCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	flipped, err := h.reviews.RequestCorrection(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"correction_required": flipped}, nil)
}
