package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/internal/authority"
	"backend/internal/repository"
)

type AuthorityHandler interface {
	Sync(c *gin.Context)
}

type authorityHandler struct {
	syncer *authority.Syncer
	logger *zap.Logger
}

func NewAuthorityHandler(syncer *authority.Syncer, logger *zap.Logger) AuthorityHandler {
	return &authorityHandler{syncer: syncer, logger: logger}
}

// Sync handles POST /api/authority/politicians/:id/sync
func (h *authorityHandler) Sync(c *gin.Context) {
	politicianID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid politician ID"})
		return
	}

	result, err := h.syncer.SyncPolitician(c.Request.Context(), politicianID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Politician not found"})
			return
		}
		h.logger.Error("Authority sync failed", zap.Error(err), zap.Int64("politician_id", politicianID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authority sync failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}
