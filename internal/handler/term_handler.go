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

// TermService is the weighting calculator surface consumed by the handler.
type TermService interface {
	Compute(ctx context.Context, req service.ComputeTermRequest) (*models.TermResult, error)
}

// TermHandler exposes the term weighting calculator.
type TermHandler struct {
	terms TermService
}

// NewTermHandler constructs handler.
func NewTermHandler(terms TermService) *TermHandler {
	return &TermHandler{terms: terms}
}

// Compute godoc
// @Summary Compute a weighted term result over multiple exams
// @Tags Terms
// @Accept json
// @Produce json
// @Param payload body service.ComputeTermRequest true "Term payload"
// @Success 200 {object} response.Envelope
// @Router /terms/compute [post]
func (h *TermHandler) Compute(c *gin.Context) {
	var req service.ComputeTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.terms.Compute(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
