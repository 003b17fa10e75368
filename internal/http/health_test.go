package http

import (
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/ir-contacts/internal/database"
)

func setupHealthTestDB(t *testing.T) (*database.Database, func()) {
	t.Helper()
	dbPath := "./test_health_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func healthRequest(t *testing.T, controller *HealthController) (*HealthResponse, int) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", controller.Status)

	env := &testEnv{router: router}
	w := env.doJSON(t, http.MethodGet, "/health", "")

	var resp HealthResponse
	decodeJSON(t, w, &resp)
	return &resp, w.Code
}

func TestHealthController_Status(t *testing.T) {
	t.Run("healthy with database", func(t *testing.T) {
		db, cleanup := setupHealthTestDB(t)
		defer cleanup()

		resp, code := healthRequest(t, NewHealthController(db, "1.2.3"))
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "1.2.3", resp.Version)
		assert.Equal(t, "ok", resp.Checks["database"])
		assert.NotEmpty(t, resp.Time)
	})

	t.Run("nil database", func(t *testing.T) {
		resp, code := healthRequest(t, NewHealthController(nil, ""))
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "not configured", resp.Checks["database"])
	})

	t.Run("closed database is unhealthy", func(t *testing.T) {
		db, cleanup := setupHealthTestDB(t)
		defer cleanup()
		require.NoError(t, db.Close())

		resp, code := healthRequest(t, NewHealthController(db, ""))
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Contains(t, resp.Checks["database"], "error")
	})
}
