package handlers

import (
	"net/http"

	"github.com/barkshad/Real-estate/internal/auth"
	"github.com/barkshad/Real-estate/internal/models"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles sign-up and sign-in
type AuthHandler struct {
	auth   *auth.Service
	policy auth.RolePolicy
}

func NewAuthHandler(svc *auth.Service, policy auth.RolePolicy) *AuthHandler {
	return &AuthHandler{auth: svc, policy: policy}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity, err := h.auth.SignUp(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		abortWithError(c, err)
		return
	}
	token, err := h.auth.Issue(*identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, sessionResponse{Token: token, User: auth.ActorFor(h.policy, *identity)})
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, identity, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Token: token, User: auth.ActorFor(h.policy, *identity)})
}

// Me returns the actor derived from the session token
func (h *AuthHandler) Me(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)
	c.JSON(http.StatusOK, actor)
}
