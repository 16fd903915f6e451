package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bwops/metastack/internal/domain"
	"github.com/bwops/metastack/internal/sslcert"
	"github.com/bwops/metastack/internal/stack"
	"github.com/bwops/metastack/internal/webserver"
)

func registerCertRoutes() {
	webserver.ApiGET("/certs", listCerts)
	webserver.ApiGET("/certs/current", currentCert)
	webserver.ApiPOST("/certs/renew", renewCert)
	webserver.ApiPOST("/certs/selfsigned", issueSelfSigned)
}

func listCerts(c echo.Context) error {
	page, perPage := parsePagination(c)
	db := GetDB(c).Model(&domain.SslCertificate{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query certificates", err.Error())
	}
	var rows []domain.SslCertificate
	if err := db.Order("created_at desc").Offset((page - 1) * perPage).Limit(perPage).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query certificates", err.Error())
	}
	return paged(c, rows, total, page, perPage)
}

func currentCert(c echo.Context) error {
	appCtx := GetAppContext(c)
	m := sslcert.NewManager(appCtx.Config(), GetDB(c))
	info, err := m.CertInfo()
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "No certificate on disk", err.Error())
	}
	return ok(c, echo.Map{
		"subject":       info.Subject.CommonName,
		"issuer":        info.Issuer.CommonName,
		"not_before":    info.NotBefore,
		"not_after":     info.NotAfter,
		"dns_names":     info.DNSNames,
		"needs_renewal": m.NeedsRenewal(),
	})
}

func renewCert(c echo.Context) error {
	appCtx := GetAppContext(c)
	m := sslcert.NewManager(appCtx.Config(), GetDB(c))
	sm := stack.NewManager(appCtx.Config())
	ctx := c.Request().Context()
	if err := m.Renew(ctx); err != nil {
		return fail(c, http.StatusInternalServerError, "CERT_ERROR", "Renewal failed", err.Error())
	}
	if err := m.ReloadProxy(ctx, sm); err != nil {
		return fail(c, http.StatusInternalServerError, "CERT_ERROR", "Proxy reload failed", err.Error())
	}
	return ok(c, "certificate renewed")
}

func issueSelfSigned(c echo.Context) error {
	appCtx := GetAppContext(c)
	m := sslcert.NewManager(appCtx.Config(), GetDB(c))
	sm := stack.NewManager(appCtx.Config())
	if err := m.SelfSigned(); err != nil {
		return fail(c, http.StatusInternalServerError, "CERT_ERROR", "Self-signed issue failed", err.Error())
	}
	if err := m.ReloadProxy(c.Request().Context(), sm); err != nil {
		return fail(c, http.StatusInternalServerError, "CERT_ERROR", "Proxy reload failed", err.Error())
	}
	return ok(c, "self-signed certificate installed")
}
