package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bwops/metastack/internal/domain"
	"github.com/bwops/metastack/internal/webserver"
)

func registerSchedulerRoutes() {
	webserver.ApiGET("/schedulers", listSchedulers)
	webserver.ApiGET("/schedulers/:id", getScheduler)
	webserver.ApiPUT("/schedulers/:id", updateScheduler)
	webserver.ApiPOST("/schedulers/:id/run", triggerScheduler)
}

func listSchedulers(c echo.Context) error {
	page, perPage := parsePagination(c)
	db := GetDB(c).Model(&domain.OpsScheduler{})
	db = searchClause(db, c.QueryParam("q"), "name", "task_type")

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query schedulers", err.Error())
	}
	var rows []domain.OpsScheduler
	if err := db.Order("id").Offset((page - 1) * perPage).Limit(perPage).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query schedulers", err.Error())
	}
	return paged(c, rows, total, page, perPage)
}

func getScheduler(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid scheduler id", nil)
	}
	var row domain.OpsScheduler
	if err := GetDB(c).First(&row, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Scheduler not found", nil)
	}
	return ok(c, row)
}

type schedulerPayload struct {
	Interval int    `json:"interval" validate:"required,min=10"`
	Status   string `json:"status" validate:"required,oneof=enabled disabled"`
}

func updateScheduler(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid scheduler id", nil)
	}
	var payload schedulerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse scheduler parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var row domain.OpsScheduler
	if err := GetDB(c).First(&row, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Scheduler not found", nil)
	}
	if err := GetDB(c).Model(&row).Updates(map[string]interface{}{
		"interval": payload.Interval,
		"status":   payload.Status,
	}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update scheduler", err.Error())
	}
	return ok(c, row)
}

func triggerScheduler(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid scheduler id", nil)
	}
	appCtx := GetAppContext(c)
	if err := appCtx.RunSchedulerNow(c.Request().Context(), id); err != nil {
		return fail(c, http.StatusInternalServerError, "SCHEDULER_ERROR", "Task execution failed", err.Error())
	}
	return ok(c, "task executed")
}
