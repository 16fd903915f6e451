package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bwops/metastack/internal/backup"
	"github.com/bwops/metastack/internal/domain"
	"github.com/bwops/metastack/internal/webserver"
)

func registerBackupRoutes() {
	webserver.ApiGET("/backups", listBackups)
	webserver.ApiPOST("/backups", createBackup)
	webserver.ApiGET("/backups/sqldump", downloadSQLDump)
}

func listBackups(c echo.Context) error {
	page, perPage := parsePagination(c)
	db := GetDB(c).Model(&domain.OpsBackup{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query backups", err.Error())
	}
	var rows []domain.OpsBackup
	if err := db.Order("created_at desc").Offset((page - 1) * perPage).Limit(perPage).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query backups", err.Error())
	}
	return paged(c, rows, total, page, perPage)
}

func createBackup(c echo.Context) error {
	appCtx := GetAppContext(c)
	svc := backup.NewService(appCtx.Config(), GetDB(c))
	rec, err := svc.Create(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "BACKUP_ERROR", "Backup failed", err.Error())
	}
	return ok(c, rec)
}

// downloadSQLDump streams a logical dump of the BI tables. Unlike the
// pg_dump backups this one never leaves the application process.
func downloadSQLDump(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/sql")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="bi_tables.sql"`)
	c.Response().WriteHeader(http.StatusOK)
	return backup.DumpSQL(GetDB(c), domain.BiTableNames, c.Response())
}
