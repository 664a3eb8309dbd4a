// Package apiclient consume el API de gestión del MID en nombre de un profesional.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/udistrital/gestion_ofertas_mid/helpers"
	"github.com/udistrital/gestion_ofertas_mid/internal/admin"
	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
	internaldto "github.com/udistrital/gestion_ofertas_mid/internal/dto"
	"github.com/udistrital/gestion_ofertas_mid/models"
)

const (
	headerProfesional = "X-Profesional-Id"
	headerRequestID   = "X-Request-Id"
	headerIdempotency = "Idempotency-Key"
)

// Options ajusta el cliente.
type Options struct {
	Timeout     time.Duration
	Retries     int
	BackoffBase time.Duration
}

// Client es el cliente HTTP ligado a una sesión.
type Client struct {
	http    *resty.Client
	retries uint64
	base    time.Duration
}

// New crea el cliente con los encabezados de la sesión en cada petición.
func New(session admin.Session, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = 300 * time.Millisecond
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	rc := resty.New().
		SetBaseURL(session.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")
	if session.Token != "" {
		rc.SetAuthToken(session.Token)
	}
	if session.ProfesionalID != "" {
		rc.SetHeader(headerProfesional, session.ProfesionalID)
	}
	rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if r.Header.Get(headerRequestID) == "" {
			r.SetHeader(headerRequestID, uuid.NewString())
		}
		return nil
	})
	return &Client{http: rc, retries: uint64(opts.Retries), base: opts.BackoffBase}
}

// Resource retorna el backend del tipo de entidad.
func (c *Client) Resource(schema *catalog.Schema) *Resource {
	return &Resource{client: c, schema: schema}
}

// Schemas lista los tipos de entidad publicados por el MID.
func (c *Client) Schemas(ctx context.Context) ([]internaldto.SchemaSummaryDTO, error) {
	var out []internaldto.SchemaSummaryDTO
	err := c.get(ctx, "/v1/catalogos/esquemas", nil, &out, "no fue posible consultar los esquemas")
	return out, err
}

func (c *Client) backoff() retry.Backoff {
	b := retry.NewExponential(c.base)
	b = retry.WithCappedDuration(3*time.Second, b)
	return retry.WithMaxRetries(c.retries, b)
}

// get reintenta solo fallas transitorias.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}, fallback string) error {
	return retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		req := c.http.R().SetContext(ctx)
		if query != nil {
			req.SetQueryParamsFromValues(query)
		}
		err := c.execute(req, http.MethodGet, path, out, fallback)
		if err != nil && helpers.IsRetryableErr(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}, headers map[string]string, out interface{}, fallback string) error {
	req := c.http.R().SetContext(ctx).SetHeaders(headers)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	return c.execute(req, method, path, out, fallback)
}

func (c *Client) execute(req *resty.Request, method, path string, out interface{}, fallback string) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}
	if err := statusError(resp.StatusCode(), resp.Body(), fallback); err != nil {
		return err
	}
	if err := helpers.DecodeBody(resp.Body(), out, true); err != nil {
		return helpers.NewAppError(resp.StatusCode(), fallback, err)
	}
	return nil
}

// statusError traduce respuestas no exitosas en AppError con el mensaje del servidor.
func statusError(status int, body []byte, fallback string) error {
	if status >= 200 && status <= 299 {
		return nil
	}
	he := &helpers.HTTPError{Status: status, Body: strings.TrimSpace(string(body))}
	msg := he.ServerMessage()
	if msg == "" {
		msg = fallback
	}
	return helpers.NewAppError(status, msg, he)
}

// Resource implementa admin.Backend sobre /v1/gestion/{path}.
type Resource struct {
	client *Client
	schema *catalog.Schema
}

var _ admin.Backend = (*Resource)(nil)

func (r *Resource) path(elems ...string) string {
	parts := append([]string{"/v1/gestion", r.schema.Path}, elems...)
	for i := 2; i < len(parts); i++ {
		parts[i] = url.PathEscape(parts[i])
	}
	return strings.Join(parts, "/")
}

// List implementa admin.Backend.
func (r *Resource) List(ctx context.Context, p admin.ListParams) (models.Page, error) {
	query := url.Values{}
	if s := strings.TrimSpace(p.Search); s != "" {
		query.Set("q", s)
	}
	for _, dim := range r.schema.Filters {
		if v := strings.TrimSpace(p.Filters[dim]); v != "" && v != models.FiltroTodos {
			query.Set(dim, v)
		}
	}
	if p.Page > 0 {
		query.Set("page", fmt.Sprint(p.Page))
	}
	if p.Size > 0 {
		query.Set("size", fmt.Sprint(p.Size))
	}
	var page models.Page
	err := r.client.get(ctx, r.path(), query, &page, "no fue posible cargar el listado")
	return page, err
}

// Stats implementa admin.Backend.
func (r *Resource) Stats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	err := r.client.get(ctx, r.path("estadisticas"), nil, &stats, "no fue posible cargar las estadísticas")
	return stats, err
}

// Get retorna el detalle de un registro.
func (r *Resource) Get(ctx context.Context, id string) (models.Record, error) {
	var rec models.Record
	err := r.client.get(ctx, r.path(id), nil, &rec, "no fue posible consultar el registro")
	return rec, err
}

// Create implementa admin.Backend; cada intento lleva una llave de idempotencia nueva.
func (r *Resource) Create(ctx context.Context, payload map[string]interface{}) (models.Record, error) {
	var rec models.Record
	headers := map[string]string{headerIdempotency: uuid.NewString()}
	err := r.client.send(ctx, http.MethodPost, r.path(), payload, headers, &rec, "no fue posible crear el registro")
	return rec, err
}

// Update implementa admin.Backend.
func (r *Resource) Update(ctx context.Context, id string, payload map[string]interface{}) (models.Record, error) {
	var rec models.Record
	err := r.client.send(ctx, http.MethodPut, r.path(id), payload, nil, &rec, "no fue posible actualizar el registro")
	return rec, err
}

// Delete implementa admin.Backend.
func (r *Resource) Delete(ctx context.Context, id string) error {
	return r.client.send(ctx, http.MethodDelete, r.path(id), nil, nil, nil, "no fue posible eliminar el registro")
}

// SetStatus implementa admin.Backend.
func (r *Resource) SetStatus(ctx context.Context, id, status string) (models.Record, error) {
	var rec models.Record
	body := internaldto.EstadoReq{Estado: status}
	err := r.client.send(ctx, http.MethodPut, r.path(id, "estado"), body, nil, &rec, "no fue posible cambiar el estado")
	return rec, err
}

// Export implementa admin.Backend copiando el adjunto en w sin cargarlo en memoria.
func (r *Resource) Export(ctx context.Context, format string, w io.Writer) (string, error) {
	req := r.client.http.R().SetContext(ctx).SetDoNotParseResponse(true)
	if format != "" {
		req.SetQueryParam("format", format)
	}
	resp, err := req.Get(r.path("exportar"))
	if err != nil {
		return "", err
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		raw, _ := io.ReadAll(io.LimitReader(body, 64<<10))
		return "", statusError(resp.StatusCode(), raw, "no fue posible exportar")
	}
	if _, err := io.Copy(w, body); err != nil {
		return "", fmt.Errorf("copiando exportación: %w", err)
	}
	return attachmentName(resp.Header().Get("Content-Disposition"), r.schema.Path+"."+formatExt(format)), nil
}

func attachmentName(disposition, fallback string) string {
	if disposition == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil || params["filename"] == "" {
		return fallback
	}
	return params["filename"]
}

func formatExt(format string) string {
	if format == "" {
		return "csv"
	}
	return format
}

// IsStatus indica si err es un AppError con el status indicado.
func IsStatus(err error, status int) bool {
	var appErr *helpers.AppError
	return errors.As(err, &appErr) && appErr.Status == status
}
