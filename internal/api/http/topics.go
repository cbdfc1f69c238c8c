package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/PyLearn/backend/internal/domain/content"
	"github.com/GriffinCanCode/PyLearn/backend/internal/domain/disclosure"
	"github.com/GriffinCanCode/PyLearn/backend/internal/domain/registry"
	"github.com/GriffinCanCode/PyLearn/backend/internal/domain/views"
	"github.com/GriffinCanCode/PyLearn/backend/internal/shared/utils"
)

// topicSummary is a topic without its intro body
type topicSummary struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	BadgeID     string `json:"badge_id"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// ListTopics lists every topic in key order
func (h *Handlers) ListTopics(c *gin.Context) {
	topics := h.registry.List()
	out := make([]topicSummary, 0, len(topics))
	for _, t := range topics {
		out = append(out, topicSummary{
			Key:         t.Key,
			Label:       t.Label,
			BadgeID:     t.BadgeID,
			Color:       t.Color,
			Description: t.Description,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"topics": out,
		"count":  len(out),
	})
}

// GetTopic returns a topic with its parsed intro
func (h *Handlers) GetTopic(c *gin.Context) {
	topic, ok := h.topic(c)
	if !ok {
		return
	}

	doc := content.Parse(topic.Intro)
	c.JSON(http.StatusOK, gin.H{
		"topic":    topic,
		"document": doc,
		"toc":      doc.TableOfContents(),
	})
}

// RenderTopic renders a topic as disclosure cards. With ?view=<id> the
// cards reflect that view's open sections; otherwise every card is
// collapsed. ?format=json returns the page model instead of HTML.
func (h *Handlers) RenderTopic(c *gin.Context) {
	topic, ok := h.topic(c)
	if !ok {
		return
	}

	var page disclosure.Page
	if viewID := c.Query("view"); viewID != "" {
		snap, err := h.views.Get(viewID)
		if err != nil {
			h.viewError(c, err)
			return
		}
		if snap.Topic != topic.Key {
			c.JSON(http.StatusBadRequest, gin.H{"error": "view belongs to topic " + snap.Topic})
			return
		}
		if page, err = h.views.Page(viewID); err != nil {
			h.viewError(c, err)
			return
		}
	} else {
		page = disclosure.BuildPage(topic.Label, content.Parse(topic.Intro), nil)
	}

	h.writePage(c, page)
}

func (h *Handlers) writePage(c *gin.Context, page disclosure.Page) {
	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, page)
		return
	}

	html, err := h.renderer.Render(page)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *Handlers) topic(c *gin.Context) (registry.Topic, bool) {
	key := c.Param("key")
	if err := utils.ValidateTopicKey(key); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return registry.Topic{}, false
	}

	topic, err := h.registry.Get(key)
	if err != nil {
		if errors.Is(err, registry.ErrTopicNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return registry.Topic{}, false
	}
	return topic, true
}

func (h *Handlers) viewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, views.ErrViewNotFound), errors.Is(err, registry.ErrTopicNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
