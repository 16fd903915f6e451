package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"
	"github.com/spf13/cast"

	"github.com/bwops/metastack/internal/domain"
	"github.com/bwops/metastack/internal/seeder"
	"github.com/bwops/metastack/internal/webserver"
)

func registerBiRoutes() {
	webserver.ApiGET("/bi/stores", listStores)
	webserver.ApiGET("/bi/stores/export", exportStores)
	webserver.ApiGET("/bi/users", listPortalUsers)
	webserver.ApiGET("/bi/access", listStoreAccess)
	webserver.ApiGET("/bi/sales/summary", salesSummary)
	webserver.ApiGET("/bi/sales/export", exportSales)
	webserver.ApiPOST("/bi/seed", reseed)
}

func listStores(c echo.Context) error {
	page, perPage := parsePagination(c)
	db := GetDB(c).Model(&domain.Store{})
	db = searchClause(db, c.QueryParam("q"), "code", "name", "city")

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query stores", err.Error())
	}
	var stores []domain.Store
	if err := db.Order("code").Offset((page - 1) * perPage).Limit(perPage).Find(&stores).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query stores", err.Error())
	}
	return paged(c, stores, total, page, perPage)
}

func exportStores(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="stores.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return seeder.ExportStoresCSV(GetDB(c), c.Response())
}

func listPortalUsers(c echo.Context) error {
	page, perPage := parsePagination(c)
	db := GetDB(c).Model(&domain.PortalUser{})
	db = searchClause(db, c.QueryParam("q"), "email", "first_name", "last_name")

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query users", err.Error())
	}
	var users []domain.PortalUser
	if err := db.Order("email").Offset((page - 1) * perPage).Limit(perPage).Find(&users).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query users", err.Error())
	}
	return paged(c, users, total, page, perPage)
}

func listStoreAccess(c echo.Context) error {
	page, perPage := parsePagination(c)
	db := GetDB(c).Model(&domain.StoreAccess{})
	if uid := c.QueryParam("user_id"); uid != "" {
		db = db.Where("user_id = ?", cast.ToInt64(uid))
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query access", err.Error())
	}
	var rows []domain.StoreAccess
	if err := db.Preload("User").Preload("Store").
		Offset((page - 1) * perPage).Limit(perPage).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query access", err.Error())
	}
	return paged(c, rows, total, page, perPage)
}

// salesSummary aggregates the gross sales series for one store (or the whole
// fleet) over the trailing N days.
func salesSummary(c echo.Context) error {
	days := cast.ToInt(c.QueryParam("days"))
	if days <= 0 || days > 365 {
		days = 30
	}

	db := GetDB(c).Model(&domain.SalesDaily{}).
		Where("business_date >= CURRENT_DATE - ?::int", days)
	if sid := c.QueryParam("store_id"); sid != "" {
		db = db.Where("store_id = ?", cast.ToInt64(sid))
	}

	var gross []float64
	if err := db.Pluck("gross_sales", &gross).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query sales", err.Error())
	}
	if len(gross) == 0 {
		return ok(c, echo.Map{"days": days, "samples": 0})
	}

	sum, _ := stats.Sum(gross)
	mean, _ := stats.Mean(gross)
	median, _ := stats.Median(gross)
	p90, _ := stats.Percentile(gross, 90)
	max, _ := stats.Max(gross)

	return ok(c, echo.Map{
		"days":    days,
		"samples": len(gross),
		"total":   sum,
		"mean":    mean,
		"median":  median,
		"p90":     p90,
		"max":     max,
	})
}

func exportSales(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="sales.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return seeder.ExportSalesCSV(GetDB(c), c.QueryParam("code"), c.Response())
}

type seedPayload struct {
	Drop bool `json:"drop"`
}

func reseed(c echo.Context) error {
	var payload seedPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse seed parameters", nil)
	}
	s := seeder.New(GetDB(c))
	if err := s.Run(c.Request().Context(), payload.Drop); err != nil {
		return fail(c, http.StatusInternalServerError, "SEED_ERROR", "Seeding failed", err.Error())
	}
	return ok(c, "seed completed")
}
