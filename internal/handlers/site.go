package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/barkshad/Real-estate/internal/assistant"
	"github.com/barkshad/Real-estate/internal/auth"
	"github.com/barkshad/Real-estate/internal/marketplace"
	"github.com/barkshad/Real-estate/internal/models"
	"github.com/gin-gonic/gin"
)

// SiteHandler serves the public site: settings, the contact form and the
// assistant.
type SiteHandler struct {
	svc     *marketplace.Service
	advisor Advisor
}

// Advisor answers free-form questions. Replies are never errors.
type Advisor interface {
	Advise(ctx context.Context, prompt string) string
	DescribeProperty(ctx context.Context, title, features string) string
}

func NewSiteHandler(svc *marketplace.Service, advisor Advisor) *SiteHandler {
	return &SiteHandler{svc: svc, advisor: advisor}
}

func (h *SiteHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Settings(c.Request.Context()))
}

func (h *SiteHandler) UpdateSettings(c *gin.Context) {
	var patch models.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor, _ := auth.ActorFrom(c)
	updated, err := h.svc.UpdateSettings(c.Request.Context(), actor, patch)
	if err != nil {
		c.JSON(statusFor(err), gin.H{
			"error":   err.Error(),
			"message": "Error updating settings.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Settings updated successfully!",
		"settings": updated,
	})
}

// SubmitInquiry accepts the contact form. No sign-in is required.
func (h *SiteHandler) SubmitInquiry(c *gin.Context) {
	var draft models.InquiryDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inq, err := h.svc.SubmitInquiry(c.Request.Context(), draft)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inq)
}

func (h *SiteHandler) Greeting(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reply": assistant.Greeting})
}

type chatRequest struct {
	Prompt string `json:"prompt"`
}

func (h *SiteHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": h.advisor.Advise(c.Request.Context(), req.Prompt)})
}

type descriptionRequest struct {
	Title    string `json:"title"`
	Features string `json:"features"`
}

func (h *SiteHandler) Describe(c *gin.Context) {
	var req descriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"description": h.advisor.DescribeProperty(c.Request.Context(), req.Title, req.Features),
	})
}
