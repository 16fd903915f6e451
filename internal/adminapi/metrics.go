package adminapi

import (
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"

	"github.com/bwops/metastack/internal/webserver"
	"github.com/bwops/metastack/pkg/metrics"
)

func registerMetricsRoutes() {
	webserver.ApiGET("/metrics/latest", latestMetrics)
	webserver.ApiGET("/metrics/range", rangeMetrics)
}

func latestMetrics(c echo.Context) error {
	return ok(c, metrics.Latest())
}

func rangeMetrics(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
	}
	end := time.Now()
	start := end.Add(-time.Hour)
	if s := c.QueryParam("start"); s != "" {
		t, err := dateparse.ParseLocal(s)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid start time", err.Error())
		}
		start = t
	}
	if s := c.QueryParam("end"); s != "" {
		t, err := dateparse.ParseLocal(s)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid end time", err.Error())
		}
		end = t
	}
	points := metrics.Range(name, start.Unix(), end.Unix())
	out := make([]echo.Map, 0, len(points))
	for _, p := range points {
		out = append(out, echo.Map{"timestamp": p.Timestamp, "value": p.Value})
	}
	return ok(c, out)
}
