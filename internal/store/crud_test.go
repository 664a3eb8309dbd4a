package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
	"github.com/udistrital/gestion_ofertas_mid/models"
)

func writeEnvelope(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"Success": status < 300,
		"Status":  status,
		"Message": http.StatusText(status),
		"Data":    data,
	})
}

func TestCRUDStore_List(t *testing.T) {
	t.Run("Should send owner and filters to the CRUD and page locally", func(t *testing.T) {
		var gotQuery, gotLimit, gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/emplois", r.URL.Path)
			gotQuery = r.URL.Query().Get("query")
			gotLimit = r.URL.Query().Get("limit")
			gotAuth = r.Header.Get("Authorization")
			writeEnvelope(w, http.StatusOK, []map[string]interface{}{
				{"Id": 1, "title": "Dev Go", "type": "CDI", "owner_id": "p1", "created_at": "2025-01-02T00:00:00Z"},
				{"Id": 2, "title": "Dev Java", "type": "CDI", "owner_id": "p1", "created_at": "2025-01-01T00:00:00Z"},
			})
		}))
		defer srv.Close()

		s := NewCRUD(srv.URL, "tok", time.Second)
		items, total, err := s.List(context.Background(), catalog.Emploi, "p1", Query{
			Search:  "go",
			Filters: map[string]string{"type": "CDI", "status": "all"},
			Page:    1,
			Size:    20,
		})
		require.NoError(t, err)
		assert.Equal(t, "owner_id:p1,type:CDI", gotQuery)
		assert.Equal(t, "0", gotLimit)
		assert.Equal(t, "Bearer tok", gotAuth)
		assert.Equal(t, 1, total)
		require.Len(t, items, 1)
		assert.Equal(t, "1", items[0].ID())
		assert.NotContains(t, items[0], "Id")
	})
	t.Run("Should treat the [{}] answer as an empty list", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, []map[string]interface{}{{}})
		}))
		defer srv.Close()

		items, err := NewCRUD(srv.URL, "", time.Second).All(context.Background(), catalog.Emploi, "p1")
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestCRUDStore_Get(t *testing.T) {
	t.Run("Should map 404 to ErrNotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusNotFound, nil)
		}))
		defer srv.Close()

		_, err := NewCRUD(srv.URL, "", time.Second).Get(context.Background(), catalog.Emploi, "7")
		assert.ErrorIs(t, err, ErrNotFound)
	})
	t.Run("Should accept unwrapped objects", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/formations/7", r.URL.Path)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"Id": 7, "title": "Go"})
		}))
		defer srv.Close()

		rec, err := NewCRUD(srv.URL, "", time.Second).Get(context.Background(), catalog.Formation, "7")
		require.NoError(t, err)
		assert.Equal(t, "7", rec.ID())
	})
}

func TestCRUDStore_Mutations(t *testing.T) {
	t.Run("Should create with an idempotency key and timestamps", func(t *testing.T) {
		var body map[string]interface{}
		var idem string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			idem = r.Header.Get("Idempotency-Key")
			raw, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(raw, &body))
			created := map[string]interface{}{"Id": 9}
			for k, v := range body {
				created[k] = v
			}
			writeEnvelope(w, http.StatusCreated, created)
		}))
		defer srv.Close()

		rec, err := NewCRUD(srv.URL, "", time.Second).Create(context.Background(), catalog.Emploi, models.Record{
			"title":         "Dev",
			models.KeyOwner: "p1",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, idem)
		assert.NotEmpty(t, body[models.KeyCreatedAt])
		assert.Equal(t, "9", rec.ID())
		assert.Equal(t, "p1", rec.Owner())
	})
	t.Run("Should keep owner and creation date when updating", func(t *testing.T) {
		var put map[string]interface{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				writeEnvelope(w, http.StatusOK, map[string]interface{}{
					"Id": 3, "owner_id": "p1", "created_at": "2025-01-01T00:00:00Z", "title": "Viejo",
				})
			case http.MethodPut:
				raw, _ := io.ReadAll(r.Body)
				assert.NoError(t, json.Unmarshal(raw, &put))
				writeEnvelope(w, http.StatusOK, put)
			}
		}))
		defer srv.Close()

		rec, err := NewCRUD(srv.URL, "", time.Second).Update(context.Background(), catalog.Emploi, "3", models.Record{"title": "Nuevo"})
		require.NoError(t, err)
		assert.Equal(t, "p1", put[models.KeyOwner])
		assert.Equal(t, "2025-01-01T00:00:00Z", put[models.KeyCreatedAt])
		assert.Equal(t, "Nuevo", rec.String("title"))
		assert.Equal(t, "3", rec.ID())
	})
	t.Run("Should map a missing record on delete", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		err := NewCRUD(srv.URL, "", time.Second).Delete(context.Background(), catalog.Emploi, "3")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
