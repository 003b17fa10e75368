package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/ir-contacts/internal/config"
	"github.com/mrlokans/ir-contacts/internal/database"
	"github.com/mrlokans/ir-contacts/internal/database/attachments"
	"github.com/mrlokans/ir-contacts/internal/database/contacts"
	"github.com/mrlokans/ir-contacts/internal/database/jobs"
	"github.com/mrlokans/ir-contacts/internal/exporters"
	"github.com/mrlokans/ir-contacts/internal/importers"
	"github.com/mrlokans/ir-contacts/internal/storage"
)

// testEnv wires a full router against a throwaway database and a local blob
// store, with auth disabled so every request runs as the default user.
type testEnv struct {
	router   *gin.Engine
	db       *database.Database
	contacts *contacts.Repository
	blobs    *storage.Local
}

func setupTestEnv(t *testing.T) (*testEnv, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	blobs, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	contactsRepo := contacts.NewRepository(db.DB)
	attachmentsRepo := attachments.NewRepository(db.DB)
	jobsRepo := jobs.NewRepository(db.DB)
	normalizer := importers.NewNormalizer(config.Import{})

	router := NewRouter(RouterConfig{
		Database:    db,
		Contacts:    contactsRepo,
		Attachments: attachmentsRepo,
		Jobs:        jobsRepo,
		BlobStore:   blobs,
		Importer:    importers.NewPipeline(contactsRepo, normalizer, 0),
		Exporter:    exporters.NewPipeline(contactsRepo, attachmentsRepo, blobs),
		Version:     "test",
	})

	env := &testEnv{
		router:   router,
		db:       db,
		contacts: contactsRepo,
		blobs:    blobs,
	}
	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return env, cleanup
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.do(t, req)
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target))
}

func TestRouter_Ping(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	w := env.doJSON(t, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestRouter_SecurityHeaders(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	w := env.doJSON(t, http.MethodGet, "/ping", "")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
