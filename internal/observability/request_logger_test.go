package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLoggerRecordsRoutePattern(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/tickets/:id", func(c *fiber.Ctx) error {
		if c.Params("id") == "boom" {
			panic("exploded")
		}
		return c.SendStatus(http.StatusOK)
	})

	for _, path := range []string{"/tickets/1", "/tickets/2", "/tickets/boom"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
	}

	snap := metrics.Snapshot()
	require.Equal(t, int64(2), snap.Requests["/tickets/:id|GET|200"])
	require.Equal(t, int64(1), snap.Requests["/tickets/:id|GET|500"])
	require.Equal(t, map[string]int64{"/tickets/:id|GET|INTERNAL_ERROR": 1}, snap.Errors)

	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	failed := logs.FilterMessage("http request failed").All()
	require.Len(t, failed, 1)
	require.Equal(t, "/tickets/boom", failed[0].ContextMap()["path"])
}
