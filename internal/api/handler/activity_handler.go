package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bwils5/cloudbooks-manager/internal/core/domain"
	"github.com/bwils5/cloudbooks-manager/internal/core/ports"
)

// ActivityHandler exposes the audit trail.
type ActivityHandler struct {
	service ports.ActivityService
}

func NewActivityHandler(service ports.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

type activityLogResponse struct {
	Data []*domain.ActivityRecord `json:"data"`
}

// List handles GET /activity-log (admin only), newest first.
//
// @Summary      List activity records
// @Tags         activity
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  activityLogResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /activity-log [get]
func (h *ActivityHandler) List(c echo.Context) error {
	records, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	if records == nil {
		records = []*domain.ActivityRecord{}
	}
	return c.JSON(http.StatusOK, activityLogResponse{Data: records})
}
