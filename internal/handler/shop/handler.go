package shop

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/barberhq/booking-api/internal/middleware"
	"github.com/barberhq/booking-api/internal/model"
	"github.com/barberhq/booking-api/internal/service/shop"
	apperrors "github.com/barberhq/booking-api/pkg/errors"
	"github.com/barberhq/booking-api/pkg/httputil"
)

type Handler struct {
	service *shop.Service
}

func NewHandler(service *shop.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	shops := r.Group("/shop")
	{
		shops.GET("", h.ListShops)
		shops.GET("/:shopId", h.GetShop)

		authed := shops.Group("", auth.Authenticate())
		{
			authed.POST("", h.UpsertShop)
			authed.PUT("", h.UpsertShop)
		}
	}
}

func (h *Handler) ListShops(c *gin.Context) {
	shops, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, shops)
}

func (h *Handler) GetShop(c *gin.Context) {
	id, err := uuid.Parse(c.Param("shopId"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid shop ID"))
		return
	}

	shop, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, shop)
}

// UpsertShop creates the caller's shop on first use and updates it
// afterwards. A user owns at most one shop.
func (h *Handler) UpsertShop(c *gin.Context) {
	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if identity.Role != model.RoleOwner {
		httputil.RespondWithError(c, apperrors.NewValidation("only shop owners can manage shops"))
		return
	}

	var req model.UpsertShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}

	shop, err := h.service.Upsert(c.Request.Context(), identity.ActorID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, shop)
}
