package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	beego "github.com/beego/beego/v2/server/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udistrital/gestion_ofertas_mid/internal/admin"
	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
	internalservices "github.com/udistrital/gestion_ofertas_mid/internal/services"
	"github.com/udistrital/gestion_ofertas_mid/internal/store"
	"github.com/udistrital/gestion_ofertas_mid/models"
	_ "github.com/udistrital/gestion_ofertas_mid/routers"
)

func newClient(t *testing.T, baseURL string, retries int) *Client {
	t.Helper()
	session, err := admin.NewSession(baseURL, "", "p1")
	require.NoError(t, err)
	return New(session, Options{Timeout: 2 * time.Second, Retries: retries, BackoffBase: time.Millisecond})
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"Success": status < 300,
		"Status":  status,
		"Message": message,
		"Data":    data,
	})
}

func TestResource_Headers(t *testing.T) {
	var seen http.Header
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		query = r.URL.RawQuery
		assert.Equal(t, "/v1/gestion/emplois", r.URL.Path)
		writeEnvelope(w, http.StatusOK, "OK", models.Page{Items: []models.Record{{"id": "1"}}, Pagination: models.NewPagination(1, 10, 1)})
	}))
	defer srv.Close()

	t.Run("Should send identity, request id and only active filters", func(t *testing.T) {
		res := newClient(t, srv.URL, 0).Resource(catalog.Emploi)
		page, err := res.List(context.Background(), admin.ListParams{
			Search:  "go",
			Filters: map[string]string{"type": "CDI", "status": "all"},
			Page:    1,
			Size:    10,
		})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "p1", seen.Get("X-Profesional-Id"))
		assert.NotEmpty(t, seen.Get("X-Request-Id"))
		assert.Equal(t, "page=1&q=go&size=10&type=CDI", query)
	})
}

func TestResource_Errors(t *testing.T) {
	t.Run("Should surface the server message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusBadRequest, "campo title: requerido", nil)
		}))
		defer srv.Close()
		_, err := newClient(t, srv.URL, 0).Resource(catalog.Emploi).Create(context.Background(), map[string]interface{}{})
		require.Error(t, err)
		assert.Equal(t, "campo title: requerido", admin.ErrorMessage(err, "fallback"))
		assert.True(t, IsStatus(err, http.StatusBadRequest))
	})
	t.Run("Should fall back to a generic message for opaque bodies", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		}))
		defer srv.Close()
		err := newClient(t, srv.URL, 0).Resource(catalog.Emploi).Delete(context.Background(), "1")
		require.Error(t, err)
		assert.Equal(t, "no fue posible eliminar el registro", admin.ErrorMessage(err, "x"))
	})
	t.Run("Should retry transient failures on reads only", func(t *testing.T) {
		var gets, posts int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				if atomic.AddInt32(&gets, 1) < 3 {
					writeEnvelope(w, http.StatusServiceUnavailable, "ocupado", nil)
					return
				}
				writeEnvelope(w, http.StatusOK, "OK", models.Stats{Counters: map[string]int{"total": 4}})
				return
			}
			atomic.AddInt32(&posts, 1)
			assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
			writeEnvelope(w, http.StatusServiceUnavailable, "ocupado", nil)
		}))
		defer srv.Close()
		res := newClient(t, srv.URL, 3).Resource(catalog.Emploi)

		stats, err := res.Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 4, stats.Counter("total"))
		assert.Equal(t, int32(3), atomic.LoadInt32(&gets))

		_, err = res.Create(context.Background(), map[string]interface{}{"title": "x"})
		require.Error(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&posts))
	})
}

// El pipeline completo contra el MID real sobre memoria.
func TestResource_AgainstMID(t *testing.T) {
	internalservices.SetGestion(internalservices.NewGestionService(store.NewMemory(), 16, time.Minute))
	srv := httptest.NewServer(beego.BeeApp.Handlers)
	defer srv.Close()

	ctx := context.Background()
	res := newClient(t, srv.URL, 0).Resource(catalog.Emploi)
	p := admin.NewPipeline(ctx, catalog.Emploi, res, admin.Options{
		QuietPeriod: 20 * time.Millisecond,
		Confirmer:   admin.ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil }),
	})
	defer p.Close()

	t.Run("Should start empty", func(t *testing.T) {
		p.Start()
		assert.Equal(t, admin.ViewEmpty, p.View().State)
	})
	t.Run("Should create through the form and list the result", func(t *testing.T) {
		p.Form.OpenCreate()
		for k, v := range map[string]string{
			"title": "Dev Backend", "type": "CDI", "secteur": "Informatique & Tech",
			"experience": "Junior (1-3 ans)", "salaire": "35-40K€", "location": "Lyon (69)", "description": "...",
		} {
			require.NoError(t, p.Form.Set(k, v))
		}
		require.NoError(t, p.Form.SetLines("missions", "API\n\nTests"))
		rec, err := p.Form.Submit(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"API", "Tests"}, rec.Strings("missions"))
		assert.Equal(t, 1, rec.Int("nombrePostes"))

		view := p.View()
		require.Equal(t, admin.ViewRows, view.State)
		assert.Equal(t, "Dev Backend", view.Rows[0].Title)
		assert.Equal(t, 1, view.Stats[0].Value)
	})
	t.Run("Should toggle, export and delete", func(t *testing.T) {
		row := p.Coordinator.Snapshot().List.Data.Items[0]
		updated, err := p.Actions.ToggleStatus(ctx, row)
		require.NoError(t, err)
		assert.Equal(t, models.EstadoActivo, updated.Status())

		var buf bytes.Buffer
		name, err := p.Coordinator.Export(ctx, "csv", &buf)
		require.NoError(t, err)
		assert.Regexp(t, `^emplois-\d{8}\.csv$`, name)
		assert.Contains(t, buf.String(), "Dev Backend")

		deleted, err := p.Actions.Delete(ctx, updated)
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Equal(t, admin.ViewEmpty, p.View().State)
	})
	t.Run("Should reach no-match after a debounced search", func(t *testing.T) {
		p.Form.OpenCreate()
		for k, v := range map[string]string{
			"title": "Juriste", "type": "CDD", "secteur": "Juridique",
			"experience": "Senior (5+ ans)", "salaire": "50K€", "location": "Paris", "description": "Conseil",
		} {
			require.NoError(t, p.Form.Set(k, v))
		}
		_, err := p.Form.Submit(ctx)
		require.NoError(t, err)

		p.Filters.SetSearch("comptable")
		require.Eventually(t, func() bool {
			return p.View().State == admin.ViewNoMatch
		}, 2*time.Second, 10*time.Millisecond)
	})
}
