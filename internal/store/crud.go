package store

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/beego/beego/v2/core/logs"
	"github.com/google/uuid"

	"github.com/udistrital/gestion_ofertas_mid/helpers"
	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
	"github.com/udistrital/gestion_ofertas_mid/models"
	rootservices "github.com/udistrital/gestion_ofertas_mid/services"
)

// CRUDStore persiste contra un API CRUD estilo beego ({base}/{path}/{id}).
type CRUDStore struct {
	baseURL string
	token   string
	timeout time.Duration
	now     func() time.Time
}

// NewCRUD construye el store a partir de la URL base del CRUD.
func NewCRUD(baseURL, token string, timeout time.Duration) *CRUDStore {
	return &CRUDStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (c *CRUDStore) headers() map[string]string {
	return rootservices.AddCRUDAuth(nil, c.token)
}

// List implementa Store. El CRUD no sabe filtrar por título ni paginar con total, así que
// se trae todo con limit=0 y se aplica la consulta en memoria.
func (c *CRUDStore) List(ctx context.Context, schema *catalog.Schema, owner string, q Query) ([]models.Record, int, error) {
	filters := map[string]string{models.KeyOwner: owner}
	for k, v := range q.ActiveFilters() {
		filters[k] = v
	}
	all, err := c.fetch(ctx, schema, filters)
	if err != nil {
		return nil, 0, err
	}
	items, total := ApplyQuery(schema, all, Query{Search: q.Search, Page: q.Page, Size: q.Size, Sort: q.Sort, Order: q.Order})
	return items, total, nil
}

// All implementa Store.
func (c *CRUDStore) All(ctx context.Context, schema *catalog.Schema, owner string) ([]models.Record, error) {
	return c.fetch(ctx, schema, map[string]string{models.KeyOwner: owner})
}

func (c *CRUDStore) fetch(ctx context.Context, schema *catalog.Schema, filters map[string]string) ([]models.Record, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	endpoint := rootservices.BuildURL(c.baseURL, schema.Path)
	if encoded := buildCRUDQuery(filters).Encode(); encoded != "" {
		endpoint = endpoint + "?" + encoded
	}

	var raw []map[string]interface{}
	if err := helpers.DoJSONWithHeaders(ctx, http.MethodGet, endpoint, c.headers(), nil, &raw, c.timeout, true); err != nil {
		if helpers.IsHTTPError(err, http.StatusNotFound) {
			return []models.Record{}, nil
		}
		logs.Error("crud list", schema.Path, err)
		return nil, err
	}

	out := make([]models.Record, 0, len(raw))
	for _, item := range raw {
		// El CRUD responde [{}] cuando no hay resultados.
		if len(item) == 0 {
			continue
		}
		out = append(out, normalizeCRUDRecord(item))
	}
	return out, nil
}

// Get implementa Store.
func (c *CRUDStore) Get(ctx context.Context, schema *catalog.Schema, id string) (models.Record, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	endpoint := rootservices.BuildURL(c.baseURL, schema.Path, url.PathEscape(id))

	var raw map[string]interface{}
	if err := helpers.DoJSONWithHeaders(ctx, http.MethodGet, endpoint, c.headers(), nil, &raw, c.timeout, true); err != nil {
		if helpers.IsHTTPError(err, http.StatusNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrNotFound
	}
	return normalizeCRUDRecord(raw), nil
}

// Create implementa Store.
func (c *CRUDStore) Create(ctx context.Context, schema *catalog.Schema, rec models.Record) (models.Record, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	body := rec.Clone()
	now := c.now().Format(time.RFC3339)
	body[models.KeyCreatedAt] = now
	body[models.KeyUpdatedAt] = now

	headers := c.headers()
	headers["Idempotency-Key"] = uuid.NewString()
	endpoint := rootservices.BuildURL(c.baseURL, schema.Path)

	var created map[string]interface{}
	if err := helpers.DoJSONWithHeaders(ctx, http.MethodPost, endpoint, headers, body, &created, c.timeout, true); err != nil {
		logs.Error("crud create", schema.Path, err)
		return nil, err
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("crud %s: respuesta vacía al crear", schema.Path)
	}
	return normalizeCRUDRecord(created), nil
}

// Update implementa Store. Lee el registro actual para conservar los campos que el
// MID no administra.
func (c *CRUDStore) Update(ctx context.Context, schema *catalog.Schema, id string, rec models.Record) (models.Record, error) {
	current, err := c.Get(ctx, schema, id)
	if err != nil {
		return nil, err
	}
	body := rec.Clone()
	body[models.KeyID] = current[models.KeyID]
	body[models.KeyOwner] = current[models.KeyOwner]
	body[models.KeyCreatedAt] = current[models.KeyCreatedAt]
	body[models.KeyUpdatedAt] = c.now().Format(time.RFC3339)

	endpoint := rootservices.BuildURL(c.baseURL, schema.Path, url.PathEscape(id))
	var updated map[string]interface{}
	if err := helpers.DoJSONWithHeaders(ctx, http.MethodPut, endpoint, c.headers(), body, &updated, c.timeout, true); err != nil {
		if helpers.IsHTTPError(err, http.StatusNotFound) {
			return nil, ErrNotFound
		}
		logs.Error("crud update", schema.Path, id, err)
		return nil, err
	}
	if len(updated) == 0 {
		return body, nil
	}
	return normalizeCRUDRecord(updated), nil
}

// Delete implementa Store.
func (c *CRUDStore) Delete(ctx context.Context, schema *catalog.Schema, id string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	endpoint := rootservices.BuildURL(c.baseURL, schema.Path, url.PathEscape(id))
	if err := helpers.DoJSONWithHeaders(ctx, http.MethodDelete, endpoint, c.headers(), nil, nil, c.timeout, true); err != nil {
		if helpers.IsHTTPError(err, http.StatusNotFound) {
			return ErrNotFound
		}
		logs.Error("crud delete", schema.Path, id, err)
		return err
	}
	return nil
}

func buildCRUDQuery(filters map[string]string) url.Values {
	values := url.Values{}
	values.Set("limit", "0")

	var queryParts []string
	for key, value := range filters {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		queryParts = append(queryParts, fmt.Sprintf("%s:%s", key, trimmed))
	}
	if len(queryParts) > 0 {
		sort.Strings(queryParts)
		values.Set("query", strings.Join(queryParts, ","))
	}
	return values
}

// normalizeCRUDRecord unifica la clave del identificador (Id numérico o id string).
func normalizeCRUDRecord(raw map[string]interface{}) models.Record {
	rec := models.Record(raw)
	if v, ok := raw["Id"]; ok {
		if !rec.Has(models.KeyID) {
			rec[models.KeyID] = models.ToString(v)
		}
		delete(rec, "Id")
	}
	if rec.Has(models.KeyID) {
		rec[models.KeyID] = models.ToString(rec[models.KeyID])
	}
	return rec
}
