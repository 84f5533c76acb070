package appointment

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/petchlovefamily/clinic-system/internal/handler"
	"github.com/petchlovefamily/clinic-system/internal/middleware"
	"github.com/petchlovefamily/clinic-system/internal/model"
	"github.com/petchlovefamily/clinic-system/internal/service/appointment"
	apperrors "github.com/petchlovefamily/clinic-system/pkg/errors"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := middleware.IdentityFrom(c)
	if !ok {
		handler.RespondError(c, apperrors.NewUnauthorized(apperrors.ErrAuthMissing, "missing authentication", nil))
		return
	}

	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	detail, err := h.service.Create(c.Request.Context(), actor, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(detail))
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := middleware.IdentityFrom(c)
	if !ok {
		handler.RespondError(c, apperrors.NewUnauthorized(apperrors.ErrAuthMissing, "missing authentication", nil))
		return
	}

	appointments, err := h.service.List(c.Request.Context(), actor)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) Get(c *gin.Context) {
	actor, ok := middleware.IdentityFrom(c)
	if !ok {
		handler.RespondError(c, apperrors.NewUnauthorized(apperrors.ErrAuthMissing, "missing authentication", nil))
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		handler.RespondError(c, apperrors.NewValidation("invalid appointment ID", err))
		return
	}

	detail, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(detail))
}

func (h *Handler) Update(c *gin.Context) {
	actor, ok := middleware.IdentityFrom(c)
	if !ok {
		handler.RespondError(c, apperrors.NewUnauthorized(apperrors.ErrAuthMissing, "missing authentication", nil))
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		handler.RespondError(c, apperrors.NewValidation("invalid appointment ID", err))
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		handler.RespondError(c, apperrors.NewValidation("invalid appointment ID", err))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	receptionOnly := middleware.RequireRoles(model.RoleReception, model.RoleAdmin)

	appointments := r.Group("/appointments")
	{
		appointments.POST("", receptionOnly, h.Create)
		appointments.GET("", h.List)
		appointments.GET("/:id", h.Get)
		appointments.PUT("/:id", h.Update)
		appointments.DELETE("/:id", receptionOnly, h.Delete)
	}
}
