package handlers

import (
	"net/http"
	"time"

	"github.com/barkshad/Real-estate/internal/auth"
	"github.com/barkshad/Real-estate/internal/models"
	"github.com/barkshad/Real-estate/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

// Router bundles everything the HTTP surface needs
type Router struct {
	Auth        *auth.Service
	Policy      auth.RolePolicy
	Listings    *ListingHandler
	Site        *SiteHandler
	Admin       *AdminHandler
	Sessions    *AuthHandler
	WS          *WSHandler
	RateLimiter *ratelimit.RateLimiter
}

// Register mounts every route on r
func (rt *Router) Register(r *gin.Engine) {
	requireActor := auth.RequireActor(rt.Auth, rt.Policy)
	limited := func(c *gin.Context) { c.Next() }
	if rt.RateLimiter != nil {
		limited = rt.RateLimiter.Middleware()
	}

	r.GET("/health", healthCheck)

	r.POST("/api/auth/signup", rt.Sessions.SignUp)
	r.POST("/api/auth/signin", rt.Sessions.SignIn)
	r.GET("/api/auth/me", requireActor, rt.Sessions.Me)

	r.GET("/api/listings", rt.Listings.List)
	r.GET("/api/listings/:id", rt.Listings.Get)
	r.POST("/api/listings", requireActor, rt.Listings.Create)
	r.DELETE("/api/listings/:id", requireActor, rt.Listings.Delete)
	r.GET("/api/me/listings", requireActor, rt.Listings.Mine)
	r.GET("/api/search", rt.Listings.Search)

	r.POST("/api/inquiries", limited, rt.Site.SubmitInquiry)

	r.GET("/api/settings", rt.Site.GetSettings)
	r.PUT("/api/settings", requireActor, auth.RequireRole(models.RoleAdmin), rt.Site.UpdateSettings)

	r.GET("/api/assistant", rt.Site.Greeting)
	r.POST("/api/assistant/chat", limited, rt.Site.Chat)
	r.POST("/api/assistant/description", limited, rt.Site.Describe)

	r.POST("/api/admin/verify", limited, rt.Admin.Verify)
	admin := r.Group("/api/admin", requireActor, auth.RequireRole(models.RoleAdmin))
	{
		admin.GET("/stats", rt.Admin.GetStats)
		admin.GET("/inquiries", rt.Admin.GetInquiries)
		admin.POST("/inquiries/:id/respond", rt.Admin.RespondInquiry)
		admin.POST("/reindex", rt.Admin.TriggerReindex)
		admin.GET("/ratelimit", rt.Admin.GetRateLimitStats)
	}

	if rt.WS != nil {
		r.GET("/ws/listings", rt.WS.ServeListings)
		r.GET("/ws/admin", rt.WS.Admin)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}
