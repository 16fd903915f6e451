package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bwops/metastack/internal/stack"
	"github.com/bwops/metastack/internal/webserver"
)

func registerStackRoutes() {
	webserver.PubGET("/health", healthCheck)
	webserver.ApiGET("/stack/status", stackStatus)
	webserver.ApiPOST("/stack/up", stackUp)
	webserver.ApiPOST("/stack/down", stackDown)
	webserver.ApiPOST("/stack/restart/:service", stackRestart)
}

// healthCheck is the unauthenticated smoke check for the controller itself.
func healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func stackStatus(c echo.Context) error {
	sm := stack.NewManager(GetAppContext(c).Config())
	report := sm.Health(c.Request().Context())
	return ok(c, report)
}

func stackUp(c echo.Context) error {
	sm := stack.NewManager(GetAppContext(c).Config())
	if err := sm.Up(c.Request().Context()); err != nil {
		return fail(c, http.StatusInternalServerError, "STACK_ERROR", "Failed to start stack", err.Error())
	}
	return ok(c, "stack started")
}

func stackDown(c echo.Context) error {
	sm := stack.NewManager(GetAppContext(c).Config())
	if err := sm.Down(c.Request().Context()); err != nil {
		return fail(c, http.StatusInternalServerError, "STACK_ERROR", "Failed to stop stack", err.Error())
	}
	return ok(c, "stack stopped")
}

func stackRestart(c echo.Context) error {
	service := c.Param("service")
	sm := stack.NewManager(GetAppContext(c).Config())
	if err := sm.Restart(c.Request().Context(), service); err != nil {
		return fail(c, http.StatusInternalServerError, "STACK_ERROR", "Failed to restart service", err.Error())
	}
	return ok(c, "service restarted")
}
