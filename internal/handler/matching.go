package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/internal/matching"
	"backend/internal/repository"
	"backend/internal/service"
)

type MatchingHandler interface {
	RunForPolitician(c *gin.Context)
	RunAll(c *gin.Context)
}

type matchingHandler struct {
	matchingService service.MatchingService
	logger          *zap.Logger
}

func NewMatchingHandler(matchingService service.MatchingService, logger *zap.Logger) MatchingHandler {
	return &matchingHandler{matchingService: matchingService, logger: logger}
}

type runMatchingRequest struct {
	PromiseID     *int64   `json:"promise_id"`
	MinConfidence *float64 `json:"min_confidence"`
}

// RunForPolitician handles POST /api/matching/politicians/:id/run
func (h *matchingHandler) RunForPolitician(c *gin.Context) {
	politicianID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid politician ID"})
		return
	}

	var req runMatchingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	result, err := h.matchingService.MatchPolitician(c.Request.Context(), politicianID, matching.RunOptions{
		PromiseID:     req.PromiseID,
		MinConfidence: req.MinConfidence,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Politician not found"})
		case errors.Is(err, service.ErrInvalidInput),
			errors.Is(err, matching.ErrPromiseNotOwned),
			errors.Is(err, matching.ErrPromiseNotActionable):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Matching run failed", zap.Error(err), zap.Int64("politician_id", politicianID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Matching run failed"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// RunAll handles POST /api/matching/run
func (h *matchingHandler) RunAll(c *gin.Context) {
	report, err := h.matchingService.MatchAll(c.Request.Context())
	if err != nil {
		h.logger.Error("Match-all run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Match-all run failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}
