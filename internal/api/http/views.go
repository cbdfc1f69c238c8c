package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/PyLearn/backend/internal/domain/views"
	"github.com/GriffinCanCode/PyLearn/backend/internal/shared/utils"
)

// MountView creates an all-collapsed view of a topic
func (h *Handlers) MountView(c *gin.Context) {
	var req struct {
		Topic string `json:"topic" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if err := utils.ValidateTopicKey(req.Topic); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.views.Mount(req.Topic)
	if err != nil {
		h.viewError(c, err)
		return
	}
	h.syncViewGauge()

	c.JSON(http.StatusCreated, gin.H{"view": snap})
}

// GetView returns a view's open sections
func (h *Handlers) GetView(c *gin.Context) {
	h.respondView(c, h.views.Get)
}

// RenderView renders the cards of a mounted view
func (h *Handlers) RenderView(c *gin.Context) {
	viewID, ok := viewParam(c)
	if !ok {
		return
	}
	page, err := h.views.Page(viewID)
	if err != nil {
		h.viewError(c, err)
		return
	}
	h.writePage(c, page)
}

// ToggleSection flips one section of a view
func (h *Handlers) ToggleSection(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "section index must be an integer"})
		return
	}
	h.respondView(c, func(viewID string) (views.Snapshot, error) {
		return h.views.Toggle(viewID, index)
	})
}

// ExpandAll opens every section of a view
func (h *Handlers) ExpandAll(c *gin.Context) {
	h.respondView(c, h.views.ExpandAll)
}

// CollapseAll closes every section of a view
func (h *Handlers) CollapseAll(c *gin.Context) {
	h.respondView(c, h.views.CollapseAll)
}

// UnmountView discards a view and its state
func (h *Handlers) UnmountView(c *gin.Context) {
	viewID, ok := viewParam(c)
	if !ok {
		return
	}
	if !h.views.Unmount(viewID) {
		c.JSON(http.StatusNotFound, gin.H{"error": views.ErrViewNotFound.Error()})
		return
	}
	h.syncViewGauge()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"view_id": viewID,
	})
}

func (h *Handlers) respondView(c *gin.Context, op func(string) (views.Snapshot, error)) {
	viewID, ok := viewParam(c)
	if !ok {
		return
	}
	snap, err := op(viewID)
	if err != nil {
		h.viewError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": snap})
}

func viewParam(c *gin.Context) (string, bool) {
	viewID := c.Param("id")
	if err := utils.ValidateID(viewID, "view_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return viewID, true
}
