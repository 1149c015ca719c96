package handlers

import (
	"encoding/json"
	"net/http"

	"gymstay/services/draft"
	"gymstay/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// DraftHandler exposes the checkout draft cache.
type DraftHandler struct {
	Drafts *draft.Cache
}

func NewDraftHandler(drafts *draft.Cache) *DraftHandler {
	return &DraftHandler{Drafts: drafts}
}

// SaveDraft handles PUT /api/checkout/drafts/:scope.
func (h *DraftHandler) SaveDraft(c *gin.Context) {
	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid draft payload", err.Error())
		return
	}

	merged, err := h.Drafts.Put(c.Request.Context(), c.Param("scope"), fields)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to store draft", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": merged})
}

// GetDraft handles GET /api/checkout/drafts/:scope.
func (h *DraftHandler) GetDraft(c *gin.Context) {
	fields, err := h.Drafts.Get(c.Request.Context(), c.Param("scope"))
	if err != nil {
		if err == redis.Nil {
			utils.JSONError(c, http.StatusNotFound, "draft not found", "")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to load draft", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": fields})
}

// DeleteDraft handles DELETE /api/checkout/drafts/:scope.
func (h *DraftHandler) DeleteDraft(c *gin.Context) {
	if err := h.Drafts.Delete(c.Request.Context(), c.Param("scope")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to delete draft", err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
