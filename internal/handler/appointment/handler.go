package appointment

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/barberhq/booking-api/internal/middleware"
	"github.com/barberhq/booking-api/internal/model"
	"github.com/barberhq/booking-api/internal/service/appointment"
	"github.com/barberhq/booking-api/internal/service/booking"
	apperrors "github.com/barberhq/booking-api/pkg/errors"
	"github.com/barberhq/booking-api/pkg/httputil"
)

type Handler struct {
	booking      *booking.Service
	appointments *appointment.Service
}

func NewHandler(bookingSvc *booking.Service, appointmentSvc *appointment.Service) *Handler {
	return &Handler{
		booking:      bookingSvc,
		appointments: appointmentSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("/available-slots/:shopId/:date", h.GetAvailableSlots)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/shop/:shopId", h.ListByShop)
		appointments.GET("/client/:clientId", h.ListByClient)

		authed := appointments.Group("", auth.Authenticate())
		{
			authed.POST("", h.CreateAppointment)
			authed.GET("/me", h.ListMine)
			authed.PATCH("/:id/status", h.UpdateStatus)
			authed.DELETE("/:id", h.CancelAppointment)
		}
	}
}

func (h *Handler) GetAvailableSlots(c *gin.Context) {
	shopID := c.Param("shopId")
	date := c.Param("date")

	resp, err := h.booking.AvailableSlots(c.Request.Context(), shopID, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}

	appointment, err := h.booking.TryBook(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, appointment)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	appointments, err := h.appointments.ListAll(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) ListByShop(c *gin.Context) {
	appointments, err := h.appointments.ListByShop(c.Request.Context(), c.Param("shopId"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) ListByClient(c *gin.Context) {
	appointments, err := h.appointments.ListByClient(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) ListMine(c *gin.Context) {
	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	appointments, err := h.appointments.ListFor(c.Request.Context(), identity)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid appointment ID"))
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}

	appointment, err := h.appointments.UpdateStatus(c.Request.Context(), id, model.AppointmentStatus(req.Status))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointment)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid appointment ID"))
		return
	}

	appointment, err := h.appointments.Cancel(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{
		"message":     fmt.Sprintf("appointment %s cancelled", appointment.ID),
		"appointment": appointment,
	})
}
