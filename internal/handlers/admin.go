package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/barkshad/Real-estate/internal/auth"
	"github.com/barkshad/Real-estate/internal/gate"
	"github.com/barkshad/Real-estate/internal/marketplace"
	"github.com/barkshad/Real-estate/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

// Reindexer rebuilds the search index
type Reindexer interface {
	Reindex(ctx context.Context) (int, error)
}

// AdminHandler handles admin-related requests. Every route except Verify
// sits behind RequireRole(admin).
type AdminHandler struct {
	svc         *marketplace.Service
	pin         string
	reindexer   Reindexer
	rateLimiter *ratelimit.RateLimiter
}

// NewAdminHandler creates a new admin handler. reindexer may be nil when
// search is disabled.
func NewAdminHandler(svc *marketplace.Service, pin string, reindexer Reindexer, rl *ratelimit.RateLimiter) *AdminHandler {
	return &AdminHandler{
		svc:         svc,
		pin:         pin,
		reindexer:   reindexer,
		rateLimiter: rl,
	}
}

// Verify checks the console PIN. The answer only decides whether the
// client shows the console; it grants nothing.
func (h *AdminHandler) Verify(c *gin.Context) {
	var req struct {
		PIN string `json:"pin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g := gate.NewPINGate(h.pin)
	if err := g.Verify(req.PIN); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"verified": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": g.Verified()})
}

// GetStats returns the dashboard counters
func (h *AdminHandler) GetStats(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)
	stats, err := h.svc.Stats(c.Request.Context(), actor)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) GetInquiries(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)
	inquiries, err := h.svc.Inquiries(c.Request.Context(), actor)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"inquiries": inquiries,
		"count":     len(inquiries),
	})
}

func (h *AdminHandler) RespondInquiry(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)
	if err := h.svc.RespondInquiry(c.Request.Context(), actor, c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": "responded"})
}

// TriggerReindex rebuilds the search index in the background
func (h *AdminHandler) TriggerReindex(c *gin.Context) {
	if h.reindexer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Search is not enabled",
		})
		return
	}

	log.Println("Admin: Manual reindex requested")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if n, err := h.reindexer.Reindex(ctx); err != nil {
			log.Printf("Admin: Manual reindex failed: %v", err)
		} else {
			log.Printf("Admin: Manual reindex completed: %d listings", n)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Reindex started",
		"status":  "running",
	})
}

// GetRateLimitStats returns current rate limiter statistics
func (h *AdminHandler) GetRateLimitStats(c *gin.Context) {
	if h.rateLimiter == nil {
		c.JSON(http.StatusOK, ratelimit.Stats{})
		return
	}
	c.JSON(http.StatusOK, h.rateLimiter.GetStats())
}
