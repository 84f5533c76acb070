package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/petchlovefamily/clinic-system/internal/handler"
	"github.com/petchlovefamily/clinic-system/internal/middleware"
	"github.com/petchlovefamily/clinic-system/internal/model"
	"github.com/petchlovefamily/clinic-system/internal/service/user"
)

type Handler struct {
	service *user.Service
}

func NewHandler(service *user.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListClinicians(c *gin.Context) {
	clinicians, err := h.service.ListClinicians(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinicians))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("/clinicians",
			middleware.RequireRoles(model.RoleReception, model.RoleAdmin),
			h.ListClinicians)
	}
}
