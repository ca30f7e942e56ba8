package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/internal/repository"
	"backend/internal/scoring"
	"backend/internal/service"
)

type ScoringHandler interface {
	RunScores(c *gin.Context)
	RunProfiles(c *gin.Context)
	ApplyVerification(c *gin.Context)
	GetScore(c *gin.Context)
	GetProfile(c *gin.Context)
}

type scoringHandler struct {
	scoringService service.ScoringService
	logger         *zap.Logger
}

func NewScoringHandler(scoringService service.ScoringService, logger *zap.Logger) ScoringHandler {
	return &scoringHandler{scoringService: scoringService, logger: logger}
}

// runRequest selects one politician or all of them.
type runRequest struct {
	PoliticianID string `json:"politician_id"` // numeric ID or "all"
}

func (r runRequest) parse() (int64, bool, error) {
	if r.PoliticianID == "all" {
		return 0, true, nil
	}
	id, err := strconv.ParseInt(r.PoliticianID, 10, 64)
	return id, false, err
}

// RunScores handles POST /api/scores/run
func (h *scoringHandler) RunScores(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	id, all, err := req.parse()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "politician_id must be a numeric ID or \"all\""})
		return
	}

	if all {
		report, err := h.scoringService.CalculateAllScores(c.Request.Context())
		if err != nil {
			h.logger.Error("Score-all run failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Score calculation failed"})
			return
		}
		c.JSON(http.StatusOK, report)
		return
	}

	score, err := h.scoringService.CalculateScore(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, id, "Score calculation failed")
		return
	}
	c.JSON(http.StatusOK, score)
}

// RunProfiles handles POST /api/profiles/run
func (h *scoringHandler) RunProfiles(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	id, all, err := req.parse()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "politician_id must be a numeric ID or \"all\""})
		return
	}

	if all {
		report, err := h.scoringService.CalculateAllProfiles(c.Request.Context())
		if err != nil {
			h.logger.Error("Profile-all run failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Profile calculation failed"})
			return
		}
		c.JSON(http.StatusOK, report)
		return
	}

	profile, err := h.scoringService.CalculateProfile(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, id, "Profile calculation failed")
		return
	}
	c.JSON(http.StatusOK, profile)
}

type applyVerificationRequest struct {
	PoliticianID int64                `json:"politician_id" binding:"required"`
	PromiseID    *int64               `json:"promise_id"`
	Verification scoring.Verification `json:"verification" binding:"required"`
}

// ApplyVerification handles POST /api/credibility/events
func (h *scoringHandler) ApplyVerification(c *gin.Context) {
	var req applyVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.scoringService.ApplyVerification(c.Request.Context(), req.PoliticianID, req.PromiseID, req.Verification)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Politician not found"})
		case errors.Is(err, scoring.ErrUnknownOutcome),
			errors.Is(err, scoring.ErrUnknownImportance),
			errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Failed to apply verification", zap.Error(err), zap.Int64("politician_id", req.PoliticianID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply verification"})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetScore handles GET /api/politicians/:id/score
func (h *scoringHandler) GetScore(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid politician ID"})
		return
	}
	score, err := h.scoringService.GetScore(id)
	if err != nil {
		h.respondError(c, err, id, "Failed to retrieve score")
		return
	}
	c.JSON(http.StatusOK, score)
}

// GetProfile handles GET /api/politicians/:id/profile
func (h *scoringHandler) GetProfile(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid politician ID"})
		return
	}
	profile, err := h.scoringService.GetProfile(id)
	if err != nil {
		h.respondError(c, err, id, "Failed to retrieve profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *scoringHandler) respondError(c *gin.Context, err error, politicianID int64, message string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(message, zap.Error(err), zap.Int64("politician_id", politicianID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}
