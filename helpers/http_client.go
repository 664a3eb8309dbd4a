// helpers/http_client.go
package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"
	"github.com/tidwall/gjson"
)

// ---------- Cliente JSON (wrapped y no wrapped) + RETRIES ----------

// CrudWrapper es el sobre estándar {Success, Status, Message, Data} de los CRUD y del MID.
type CrudWrapper struct {
	Success bool            `json:"Success"`
	Status  json.RawMessage `json:"Status,omitempty"`
	Message string          `json:"Message"`
	Data    json.RawMessage `json:"Data"`
}

// HTTPError envuelve códigos de estado no exitosos para permitir un manejo granular.
type HTTPError struct {
	Status int
	Body   string
}

// Error imprime el estado y cuerpo asociado.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

// ServerMessage extrae el mensaje funcional del cuerpo de error cuando exista.
func (e *HTTPError) ServerMessage() string {
	if e == nil || e.Body == "" || !gjson.Valid(e.Body) {
		return ""
	}
	for _, path := range []string{"Message", "message", "error"} {
		if msg := strings.TrimSpace(gjson.Get(e.Body, path).String()); msg != "" {
			return msg
		}
	}
	return ""
}

// IsHTTPError permite consultar si el error corresponde a un status específico.
func IsHTTPError(err error, status int) bool {
	if err == nil {
		return false
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status == status
	}
	return false
}

// Config global de reintentos (retro-compatible)
var (
	retryMu            sync.RWMutex
	defaultRetryCount  = 0
	defaultBackoffBase = 300 * time.Millisecond
	maxBackoff         = 3 * time.Second
)

func SetDefaultRetryCount(n int) {
	if n < 0 {
		n = 0
	}
	retryMu.Lock()
	defaultRetryCount = n
	retryMu.Unlock()
}

func SetRetryBackoff(baseMs int) {
	if baseMs <= 0 {
		baseMs = 300
	}
	retryMu.Lock()
	defaultBackoffBase = time.Duration(baseMs) * time.Millisecond
	retryMu.Unlock()
}

// Backoff construye la política exponencial acotada usada por todos los clientes.
func Backoff() retry.Backoff {
	retryMu.RLock()
	count, base := defaultRetryCount, defaultBackoffBase
	retryMu.RUnlock()
	b := retry.NewExponential(base)
	b = retry.WithCappedDuration(maxBackoff, b)
	return retry.WithMaxRetries(uint64(count), b)
}

var (
	restyOnce   sync.Once
	restyClient *resty.Client
)

func sharedClient() *resty.Client {
	restyOnce.Do(func() {
		restyClient = resty.New().
			SetHeader("Accept", "application/json").
			SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	})
	return restyClient
}

// DoJSONWithHeaders ejecuta la petición con headers y control de envoltura. Solo los GET se
// reintentan; las mutaciones no son idempotentes.
func DoJSONWithHeaders(ctx context.Context, method, url string, headers map[string]string, in any, out any, timeout time.Duration, wrapped bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	doOnce := func(ctx context.Context) error {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		req := sharedClient().R().SetContext(ctx).SetHeaders(headers)
		if in != nil {
			req.SetHeader("Content-Type", "application/json").SetBody(in)
		}

		resp, err := req.Execute(method, url)
		if err != nil {
			return err
		}
		if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
			return &HTTPError{
				Status: resp.StatusCode(),
				Body:   strings.TrimSpace(string(resp.Body())),
			}
		}
		return DecodeBody(resp.Body(), out, wrapped)
	}

	if !strings.EqualFold(method, http.MethodGet) {
		return doOnce(ctx)
	}
	return retry.Do(ctx, Backoff(), func(ctx context.Context) error {
		err := doOnce(ctx)
		if err != nil && IsRetryableErr(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// DecodeBody decodifica el cuerpo respetando el sobre estándar cuando wrapped es true.
func DecodeBody(body []byte, out any, wrapped bool) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	if !wrapped {
		return json.Unmarshal(body, out)
	}

	// Algunos CRUD responden el arreglo/objeto sin sobre.
	if !gjson.GetBytes(body, "Success").Exists() {
		return json.Unmarshal(body, out)
	}
	var w CrudWrapper
	if err := json.Unmarshal(body, &w); err != nil {
		return err
	}
	if !w.Success {
		if w.Message == "" {
			w.Message = "operación fallida (Success=false)"
		}
		return errors.New(w.Message)
	}
	if len(w.Data) == 0 || string(w.Data) == "null" {
		return nil
	}
	return json.Unmarshal(w.Data, out)
}

// IsRetryableErr clasifica errores transitorios de red o 5xx.
func IsRetryableErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	var he *HTTPError
	if errors.As(err, &he) {
		switch he.Status {
		case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	l := strings.ToLower(err.Error())
	return strings.Contains(l, "timeout") ||
		strings.Contains(l, "connection reset") ||
		strings.Contains(l, "connection refused") ||
		strings.Contains(l, "server closed idle connection")
}
