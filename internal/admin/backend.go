package admin

import (
	"context"
	"io"

	"github.com/udistrital/gestion_ofertas_mid/models"
)

// ListParams es la tupla que se envía en cada listado.
type ListParams struct {
	Search  string
	Filters map[string]string
	Page    int
	Size    int
}

// Backend es el colaborador remoto de un tipo de entidad.
type Backend interface {
	List(ctx context.Context, p ListParams) (models.Page, error)
	Stats(ctx context.Context) (models.Stats, error)
	Create(ctx context.Context, payload map[string]interface{}) (models.Record, error)
	Update(ctx context.Context, id string, payload map[string]interface{}) (models.Record, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id, status string) (models.Record, error)
	// Export escribe el archivo en w y retorna el nombre sugerido.
	Export(ctx context.Context, format string, w io.Writer) (string, error)
}
