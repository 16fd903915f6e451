package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bwops/metastack/internal/domain"
	"github.com/bwops/metastack/internal/etl"
	"github.com/bwops/metastack/internal/webserver"
)

func registerEtlRoutes() {
	webserver.ApiGET("/etl/runs", listEtlRuns)
	webserver.ApiPOST("/etl/run", triggerEtlRun)
}

func listEtlRuns(c echo.Context) error {
	page, perPage := parsePagination(c)
	db := GetDB(c).Model(&domain.EtlRun{})
	if result := c.QueryParam("result"); result != "" {
		db = db.Where("result = ?", result)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query runs", err.Error())
	}
	var rows []domain.EtlRun
	if err := db.Order("started_at desc").Offset((page - 1) * perPage).Limit(perPage).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query runs", err.Error())
	}
	return paged(c, rows, total, page, perPage)
}

func triggerEtlRun(c echo.Context) error {
	appCtx := GetAppContext(c)
	runner := etl.NewRunner(appCtx.Config(), GetDB(c))
	run, err := runner.Run(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "ETL_ERROR", "Import failed", err.Error())
	}
	return ok(c, run)
}
