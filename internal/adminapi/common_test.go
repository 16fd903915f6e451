package adminapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T, target string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestParsePagination(t *testing.T) {
	page, perPage := parsePagination(testContext(t, "/?page=3&perPage=25"))
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, perPage)

	// defaults
	page, perPage = parsePagination(testContext(t, "/"))
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, perPage)

	// out of range values snap back
	page, perPage = parsePagination(testContext(t, "/?page=-1&perPage=5000"))
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, perPage)
}

func TestParseIDParam(t *testing.T) {
	c := testContext(t, "/")
	c.SetParamNames("id")
	c.SetParamValues("12345")
	id, err := parseIDParam(c, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), id)

	c.SetParamValues("not-a-number")
	_, err = parseIDParam(c, "id")
	assert.Error(t, err)
}
