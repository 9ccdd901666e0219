package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kube-rca/similarity/internal/model"
	"github.com/kube-rca/similarity/internal/service"
	"go.uber.org/zap"
)

type SimilarityFinder interface {
	FindSimilarIncidents(ctx context.Context, text string, topK int, minScore float64) (*model.SimilarityResponse, error)
}

type SimilarityHandler struct {
	svc SimilarityFinder
	log *zap.Logger
}

func NewSimilarityHandler(svc SimilarityFinder, log *zap.Logger) *SimilarityHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SimilarityHandler{svc: svc, log: log}
}

// FindSimilarIncidents godoc
// @Summary Find similar incidents
// @Description Embeds the incident text and returns indexed incidents whose similarity score is at least min_score, in index order.
// @Tags incidents
// @Accept json
// @Produce json
// @Param request body model.SimilarityRequest true "Incident text and search options"
// @Success 200 {object} model.SimilarityResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /similar-incidents [post]
func (h *SimilarityHandler) FindSimilarIncidents(c *gin.Context) {
	var req model.SimilarityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	topK, minScore := req.Resolved()
	res, err := h.svc.FindSimilarIncidents(c.Request.Context(), req.Text, topK, minScore)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
			return
		}
		h.log.Error("similar incident lookup failed",
			zap.String("request_id", GetRequestID(c)),
			zap.Int("top_k", topK),
			zap.Float64("min_score", minScore),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, res)
}
