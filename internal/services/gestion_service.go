package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/beego/beego/v2/core/logs"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/udistrital/gestion_ofertas_mid/helpers"
	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
	internaldto "github.com/udistrital/gestion_ofertas_mid/internal/dto"
	"github.com/udistrital/gestion_ofertas_mid/internal/store"
	"github.com/udistrital/gestion_ofertas_mid/models"
)

var validate = validator.New()

// GestionService implementa las operaciones de gestión sobre cualquier esquema.
type GestionService struct {
	store store.Store
	stats *expirable.LRU[string, models.Stats]
	now   func() time.Time
}

var (
	gestionMu  sync.RWMutex
	gestionSvc *GestionService
)

// NewGestionService construye el servicio con su caché de estadísticas.
func NewGestionService(st store.Store, cacheSize int, cacheTTL time.Duration) *GestionService {
	if cacheSize <= 0 {
		cacheSize = 512
	}
	return &GestionService{
		store: st,
		stats: expirable.NewLRU[string, models.Stats](cacheSize, nil, cacheTTL),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetGestion registra la instancia usada por los controladores.
func SetGestion(svc *GestionService) {
	gestionMu.Lock()
	gestionSvc = svc
	gestionMu.Unlock()
}

// Gestion retorna la instancia registrada; si no existe crea una en memoria.
func Gestion() *GestionService {
	gestionMu.RLock()
	svc := gestionSvc
	gestionMu.RUnlock()
	if svc != nil {
		return svc
	}

	gestionMu.Lock()
	defer gestionMu.Unlock()
	if gestionSvc == nil {
		logs.Warn("servicio de gestión sin configurar, usando store en memoria")
		gestionSvc = NewGestionService(store.NewMemory(), 0, time.Minute)
	}
	return gestionSvc
}

// Listar retorna la página de registros del profesional.
func (s *GestionService) Listar(ctx context.Context, schema *catalog.Schema, owner string, q internaldto.ListQueryDTO) (models.Page, error) {
	if err := validate.Struct(q); err != nil {
		return models.Page{}, helpers.NewAppError(http.StatusBadRequest, "parámetros de consulta inválidos", err)
	}
	filters := make(map[string]string, len(schema.Filters))
	for _, dim := range schema.Filters {
		if v := strings.TrimSpace(q.Filters[dim]); v != "" {
			filters[dim] = v
		}
	}

	items, total, err := s.store.List(ctx, schema, owner, store.Query{
		Search:  q.Q,
		Filters: filters,
		Page:    q.Page,
		Size:    q.Size,
		Sort:    q.Sort,
		Order:   q.Order,
	})
	if err != nil {
		return models.Page{}, storeError(err, "error listando registros")
	}
	if items == nil {
		items = []models.Record{}
	}
	return models.Page{Items: items, Pagination: models.NewPagination(q.Page, q.Size, total)}, nil
}

// Estadisticas retorna los contadores del profesional, desde caché cuando es posible.
func (s *GestionService) Estadisticas(ctx context.Context, schema *catalog.Schema, owner string) (models.Stats, error) {
	key := statsKey(schema, owner)
	if cached, ok := s.stats.Get(key); ok {
		return cached, nil
	}
	records, err := s.store.All(ctx, schema, owner)
	if err != nil {
		return models.Stats{}, storeError(err, "error calculando estadísticas")
	}
	stats := schema.ComputeStats(records, s.now())
	s.stats.Add(key, stats)
	return stats, nil
}

// Obtener retorna el registro si pertenece al profesional.
func (s *GestionService) Obtener(ctx context.Context, schema *catalog.Schema, owner, id string) (models.Record, error) {
	rec, err := s.store.Get(ctx, schema, id)
	if err != nil {
		return nil, storeError(err, "error consultando registro")
	}
	if rec.Owner() != owner {
		return nil, helpers.NewAppError(http.StatusForbidden, "el registro pertenece a otro profesional", nil)
	}
	return rec, nil
}

// Crear normaliza el payload y persiste un nuevo registro del profesional.
func (s *GestionService) Crear(ctx context.Context, schema *catalog.Schema, owner string, payload map[string]interface{}) (models.Record, error) {
	rec, err := schema.NormalizePayload(payload, "")
	if err != nil {
		return nil, payloadError(err)
	}
	rec[models.KeyOwner] = owner
	for _, key := range schema.ReadOnly {
		rec[key] = 0
	}

	created, err := s.store.Create(ctx, schema, rec)
	if err != nil {
		return nil, storeError(err, "error creando registro")
	}
	s.invalidate(schema, owner)
	return created, nil
}

// Actualizar reemplaza los campos editables conservando contadores y dueño.
func (s *GestionService) Actualizar(ctx context.Context, schema *catalog.Schema, owner, id string, payload map[string]interface{}) (models.Record, error) {
	current, err := s.Obtener(ctx, schema, owner, id)
	if err != nil {
		return nil, err
	}
	normalized, err := schema.NormalizePayload(payload, current.Status())
	if err != nil {
		return nil, payloadError(err)
	}
	merged := current.Clone()
	for k, v := range normalized {
		merged[k] = v
	}

	updated, err := s.store.Update(ctx, schema, id, merged)
	if err != nil {
		return nil, storeError(err, "error actualizando registro")
	}
	s.invalidate(schema, owner)
	return updated, nil
}

// Eliminar borra el registro del profesional.
func (s *GestionService) Eliminar(ctx context.Context, schema *catalog.Schema, owner, id string) error {
	if _, err := s.Obtener(ctx, schema, owner, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, schema, id); err != nil {
		return storeError(err, "error eliminando registro")
	}
	s.invalidate(schema, owner)
	return nil
}

// CambiarEstado mueve el registro a otro estado de la enumeración. Repetir el estado
// actual no modifica nada.
func (s *GestionService) CambiarEstado(ctx context.Context, schema *catalog.Schema, owner, id string, req internaldto.EstadoReq) (models.Record, error) {
	if err := validate.Struct(req); err != nil {
		return nil, helpers.NewAppError(http.StatusBadRequest, "estado requerido", err)
	}
	estado := strings.TrimSpace(req.Estado)
	if !schema.IsStatus(estado) {
		return nil, helpers.NewAppError(http.StatusBadRequest,
			fmt.Sprintf("estado no soportado: %s (válidos: %s)", estado, strings.Join(schema.StatusValues(), ", ")), nil)
	}

	current, err := s.Obtener(ctx, schema, owner, id)
	if err != nil {
		return nil, err
	}
	if current.Status() == estado {
		return current, nil
	}
	current[models.KeyStatus] = estado

	updated, err := s.store.Update(ctx, schema, id, current)
	if err != nil {
		return nil, storeError(err, "error cambiando estado")
	}
	s.invalidate(schema, owner)
	return updated, nil
}

func (s *GestionService) invalidate(schema *catalog.Schema, owner string) {
	s.stats.Remove(statsKey(schema, owner))
}

func statsKey(schema *catalog.Schema, owner string) string {
	return schema.Kind + "|" + owner
}

func storeError(err error, fallback string) error {
	if errors.Is(err, store.ErrNotFound) {
		return helpers.NewAppError(http.StatusNotFound, "registro no encontrado", err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return helpers.NewAppError(http.StatusGatewayTimeout, fallback, err)
	}
	var he *helpers.HTTPError
	if errors.As(err, &he) {
		msg := fallback
		if server := he.ServerMessage(); server != "" {
			msg = fallback + ": " + server
		}
		return helpers.NewAppError(http.StatusBadGateway, msg, err)
	}
	return helpers.AsAppError(err, fallback)
}

func payloadError(err error) error {
	var fe *catalog.FieldError
	if errors.As(err, &fe) {
		return helpers.NewAppError(http.StatusBadRequest, fmt.Sprintf("campo %s", fe.Error()), err)
	}
	return helpers.NewAppError(http.StatusBadRequest, "payload inválido", err)
}
