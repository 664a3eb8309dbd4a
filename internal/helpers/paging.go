package helpers

import (
	"strconv"
	"strings"

	"github.com/beego/beego/v2/server/web/context"

	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
	internaldto "github.com/udistrital/gestion_ofertas_mid/internal/dto"
	"github.com/udistrital/gestion_ofertas_mid/models"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

// ParsePageSize convierte los parámetros de paginación a enteros aplicando defaults y tope.
func ParsePageSize(pageStr, sizeStr string) (int, int) {
	page := defaultPage
	size := defaultPageSize

	if v, err := strconv.Atoi(strings.TrimSpace(pageStr)); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(sizeStr)); err == nil && v > 0 {
		size = v
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// ListQuery arma la consulta del listado a partir del query string: q, una clave por
// dimensión de filtro del esquema, page, size, sort y order.
func ListQuery(ctx *context.Context, schema *catalog.Schema) internaldto.ListQueryDTO {
	page, size := ParsePageSize(ctx.Input.Query("page"), ctx.Input.Query("size"))
	q := internaldto.ListQueryDTO{
		Q:       strings.TrimSpace(ctx.Input.Query("q")),
		Filters: make(map[string]string, len(schema.Filters)),
		Page:    page,
		Size:    size,
		Sort:    strings.TrimSpace(ctx.Input.Query("sort")),
		Order:   strings.ToLower(strings.TrimSpace(ctx.Input.Query("order"))),
	}
	for _, dim := range schema.Filters {
		value := strings.TrimSpace(ctx.Input.Query(dim))
		if value == "" || value == models.FiltroTodos {
			continue
		}
		q.Filters[dim] = value
	}
	return q
}
