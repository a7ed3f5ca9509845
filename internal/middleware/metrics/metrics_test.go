package metricsmw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsLabelsByRoute(t *testing.T) {
	e := echo.New()
	e.Use(Metrics)
	e.GET("/api/v1/products/:id", func(c echo.Context) error {
		if c.Param("id") == "0" {
			return echo.NewHTTPError(http.StatusBadRequest, "bad id")
		}
		return c.NoContent(http.StatusOK)
	})

	ok := httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/products/:id", "200")
	bad := httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/products/:id", "400")
	beforeOK, beforeBad := testutil.ToFloat64(ok), testutil.ToFloat64(bad)

	for _, id := range []string{"1", "2", "0"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/products/"+id, nil))
	}

	assert.Equal(t, beforeOK+2, testutil.ToFloat64(ok))
	assert.Equal(t, beforeBad+1, testutil.ToFloat64(bad))
	assert.Zero(t, testutil.ToFloat64(httpInFlight))
}
