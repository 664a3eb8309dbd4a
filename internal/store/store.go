// Package store persiste los registros administrados. Existen tres implementaciones:
// el CRUD HTTP institucional, PostgreSQL y memoria (desarrollo y pruebas).
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
	"github.com/udistrital/gestion_ofertas_mid/models"
)

// ErrNotFound indica que el identificador no existe para el tipo solicitado.
var ErrNotFound = errors.New("registro no encontrado")

// Query agrupa búsqueda, filtros, orden y paginación de un listado.
type Query struct {
	Search  string
	Filters map[string]string
	Page    int
	Size    int
	Sort    string
	Order   string
}

// ActiveFilters retorna solo los filtros distintos del centinela "all".
func (q Query) ActiveFilters() map[string]string {
	out := make(map[string]string, len(q.Filters))
	for k, v := range q.Filters {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" || trimmed == models.FiltroTodos {
			continue
		}
		out[k] = trimmed
	}
	return out
}

// Store es el contrato de persistencia usado por el servicio de gestión.
type Store interface {
	// List retorna la página solicitada y el total de coincidencias del dueño.
	List(ctx context.Context, schema *catalog.Schema, owner string, q Query) ([]models.Record, int, error)
	// All retorna todos los registros del dueño, sin filtros.
	All(ctx context.Context, schema *catalog.Schema, owner string) ([]models.Record, error)
	Get(ctx context.Context, schema *catalog.Schema, id string) (models.Record, error)
	// Create asigna id y marcas de tiempo.
	Create(ctx context.Context, schema *catalog.Schema, rec models.Record) (models.Record, error)
	// Update reemplaza el registro completo; conserva id, dueño y created_at.
	Update(ctx context.Context, schema *catalog.Schema, id string, rec models.Record) (models.Record, error)
	Delete(ctx context.Context, schema *catalog.Schema, id string) error
}

// ApplyQuery filtra, ordena y pagina en memoria. Lo usan los stores que no
// pueden delegar la consulta.
func ApplyQuery(schema *catalog.Schema, records []models.Record, q Query) ([]models.Record, int) {
	filters := q.ActiveFilters()
	matched := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if schema.Matches(rec, q.Search, filters) {
			matched = append(matched, rec)
		}
	}
	schema.SortRecords(matched, q.Sort, q.Order)
	return catalog.PageSlice(matched, q.Page, q.Size), len(matched)
}

func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
