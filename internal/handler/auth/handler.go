package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/barberhq/booking-api/internal/middleware"
	"github.com/barberhq/booking-api/internal/model"
	"github.com/barberhq/booking-api/internal/service/auth"
	apperrors "github.com/barberhq/booking-api/pkg/errors"
	"github.com/barberhq/booking-api/pkg/httputil"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMW *middleware.AuthMiddleware) {
	authed := r.Group("/auth")
	{
		authed.POST("/register", h.Register)
		authed.POST("/login", h.Login)
		authed.GET("/me", authMW.Authenticate(), h.Me)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}

	resp, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, resp)
}

// Me returns the identity of the bearer token's owner. Used by other
// services as the remote side of token resolution.
func (h *Handler) Me(c *gin.Context) {
	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, identity)
}
