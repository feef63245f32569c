package handlers

import (
	"errors"
	"net/http"

	"github.com/barkshad/Real-estate/internal/auth"
	"github.com/barkshad/Real-estate/internal/gate"
	"github.com/barkshad/Real-estate/internal/marketplace"
	"github.com/barkshad/Real-estate/internal/media"
	"github.com/barkshad/Real-estate/internal/models"
	"github.com/barkshad/Real-estate/internal/store"
	"github.com/gin-gonic/gin"
)

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, marketplace.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, gate.ErrWrongPIN):
		return http.StatusUnauthorized
	case errors.Is(err, marketplace.ErrForbidden),
		errors.Is(err, store.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidDraft),
		errors.Is(err, models.ErrInvalidInquiry),
		errors.Is(err, marketplace.ErrNoMedia),
		errors.Is(err, auth.ErrInvalidSignUp):
		return http.StatusBadRequest
	case errors.Is(err, media.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, media.ErrUploadFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
