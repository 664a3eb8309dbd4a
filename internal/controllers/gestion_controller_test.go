package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	beego "github.com/beego/beego/v2/server/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalservices "github.com/udistrital/gestion_ofertas_mid/internal/services"
	"github.com/udistrital/gestion_ofertas_mid/internal/store"
	"github.com/udistrital/gestion_ofertas_mid/models"
	_ "github.com/udistrital/gestion_ofertas_mid/routers"
)

type envelope struct {
	Success bool            `json:"Success"`
	Status  int             `json:"Status"`
	Message string          `json:"Message"`
	Data    json.RawMessage `json:"Data"`
}

func resetService() {
	internalservices.SetGestion(internalservices.NewGestionService(store.NewMemory(), 16, time.Minute))
}

func serve(t *testing.T, method, path, profesional string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if profesional != "" {
		req.Header.Set("X-Profesional-Id", profesional)
	}
	rec := httptest.NewRecorder()
	beego.BeeApp.Handlers.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func emploiBody(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":       title,
		"type":        "CDI",
		"secteur":     "Juridique",
		"experience":  "Senior (5+ ans)",
		"salaire":     "55K€",
		"location":    "Lyon",
		"description": "Conseil",
	}
}

func createEmploi(t *testing.T, owner, title string) models.Record {
	t.Helper()
	rec := serve(t, http.MethodPost, "/v1/gestion/emplois", owner, emploiBody(title))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out models.Record
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &out))
	return out
}

func TestGestionController_Crear(t *testing.T) {
	t.Run("Should create and return the normalised record", func(t *testing.T) {
		resetService()
		created := createEmploi(t, "p1", "Juriste")
		assert.NotEmpty(t, created.ID())
		assert.Equal(t, "p1", created.Owner())
		assert.Equal(t, models.EstadoBorrador, created.Status())
	})
	t.Run("Should answer 400 when a required field is missing", func(t *testing.T) {
		resetService()
		body := emploiBody("Juriste")
		delete(body, "salaire")
		rec := serve(t, http.MethodPost, "/v1/gestion/emplois", "p1", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env := decode(t, rec)
		assert.False(t, env.Success)
		assert.Contains(t, env.Message, "salaire")
	})
	t.Run("Should answer 400 on a malformed body", func(t *testing.T) {
		resetService()
		req := httptest.NewRequest(http.MethodPost, "/v1/gestion/emplois", strings.NewReader("{"))
		req.Header.Set("X-Profesional-Id", "p1")
		rec := httptest.NewRecorder()
		beego.BeeApp.Handlers.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("Should answer 401 without identity", func(t *testing.T) {
		resetService()
		rec := serve(t, http.MethodPost, "/v1/gestion/emplois", "", emploiBody("Juriste"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("Should answer 404 for an unknown kind", func(t *testing.T) {
		resetService()
		rec := serve(t, http.MethodGet, "/v1/gestion/stages", "p1", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGestionController_Listado(t *testing.T) {
	resetService()
	createEmploi(t, "p1", "Juriste senior")
	createEmploi(t, "p1", "Comptable")
	createEmploi(t, "p2", "Juriste junior")

	t.Run("Should list only the caller's records with pagination", func(t *testing.T) {
		rec := serve(t, http.MethodGet, "/v1/gestion/emplois?q=juriste&type=all&page=1&size=10", "p1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var page models.Page
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &page))
		require.Len(t, page.Items, 1)
		assert.Equal(t, "Juriste senior", page.Items[0].String("title"))
		assert.Equal(t, 1, page.Pagination.Total)
		assert.Equal(t, 1, page.Pagination.Pages)
	})
	t.Run("Should return an empty page past the end", func(t *testing.T) {
		rec := serve(t, http.MethodGet, "/v1/gestion/emplois?page=9&size=1", "p1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var page models.Page
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &page))
		assert.Empty(t, page.Items)
		assert.Equal(t, 2, page.Pagination.Total)
		assert.Equal(t, 2, page.Pagination.Pages)
	})
	t.Run("Should answer an empty page instead of failing on huge page numbers", func(t *testing.T) {
		rec := serve(t, http.MethodGet, "/v1/gestion/emplois?page=4611686018427387904&size=20", "p1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var page models.Page
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &page))
		assert.Empty(t, page.Items)
		assert.Equal(t, 2, page.Pagination.Total)
		assert.Equal(t, 4611686018427387904, page.Pagination.Page)
	})
	t.Run("Should compute stats for the caller", func(t *testing.T) {
		rec := serve(t, http.MethodGet, "/v1/gestion/emplois/estadisticas", "p1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var stats models.Stats
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &stats))
		assert.Equal(t, 2, stats.Counter("total"))
	})
}

func TestGestionController_Mutaciones(t *testing.T) {
	resetService()
	created := createEmploi(t, "p1", "Juriste")
	path := "/v1/gestion/emplois/" + created.ID()

	t.Run("Should forbid another professional", func(t *testing.T) {
		rec := serve(t, http.MethodGet, path, "p2", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
	t.Run("Should update the record", func(t *testing.T) {
		body := emploiBody("Juriste d'affaires")
		rec := serve(t, http.MethodPut, path, "p1", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var out models.Record
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &out))
		assert.Equal(t, "Juriste d'affaires", out.String("title"))
		assert.Equal(t, created.ID(), out.ID())
	})
	t.Run("Should change the status", func(t *testing.T) {
		rec := serve(t, http.MethodPut, path+"/estado", "p1", map[string]string{"estado": models.EstadoActivo})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var out models.Record
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &out))
		assert.Equal(t, models.EstadoActivo, out.Status())
	})
	t.Run("Should reject an unknown status", func(t *testing.T) {
		rec := serve(t, http.MethodPut, path+"/estado", "p1", map[string]string{"estado": "filled"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("Should export the records as csv", func(t *testing.T) {
		rec := serve(t, http.MethodGet, "/v1/gestion/emplois/exportar?format=csv", "p1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "emplois-")
		assert.Contains(t, rec.Body.String(), "Juriste d'affaires")
	})
	t.Run("Should delete and then answer 404", func(t *testing.T) {
		rec := serve(t, http.MethodDelete, path, "p1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		rec = serve(t, http.MethodGet, path, "p1", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCatalogosController(t *testing.T) {
	t.Run("Should list the three schemas", func(t *testing.T) {
		rec := serve(t, http.MethodGet, "/v1/catalogos/esquemas", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var out []map[string]string
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &out))
		assert.Len(t, out, 3)
	})
	t.Run("Should describe one schema by path", func(t *testing.T) {
		rec := serve(t, http.MethodGet, "/v1/catalogos/esquemas/formations", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var out map[string]interface{}
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &out))
		assert.Equal(t, "formation", out["kind"])
	})
	t.Run("Should answer 404 for an unknown schema", func(t *testing.T) {
		rec := serve(t, http.MethodGet, "/v1/catalogos/esquemas/stages", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
