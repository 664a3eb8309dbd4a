package dto

import (
	"github.com/udistrital/gestion_ofertas_mid/models/requestresponse"
)

// APIResponseDTO reutiliza el DTO estándar expuesto por requestresponse.
// Alias para mantener compatibilidad con consumidores existentes.
type APIResponseDTO = requestresponse.APIResponseDTO

// ListQueryDTO agrupa los parámetros del listado de gestión.
type ListQueryDTO struct {
	Q       string            `json:"q" validate:"max=200"`
	Filters map[string]string `json:"filters"`
	Page    int               `json:"page" validate:"gte=1"`
	Size    int               `json:"size" validate:"gte=1,lte=100"`
	Sort    string            `json:"sort" validate:"max=64"`
	Order   string            `json:"order" validate:"omitempty,oneof=asc desc"`
}

// EstadoReq es el cuerpo del cambio de estado.
type EstadoReq struct {
	Estado string `json:"estado" validate:"required"`
}

// ExportReq describe el formato de exportación solicitado.
type ExportReq struct {
	Format string `validate:"oneof=csv pdf"`
}

// SchemaSummaryDTO resume un esquema para el listado de catálogos.
type SchemaSummaryDTO struct {
	Kind  string `json:"kind"`
	Path  string `json:"path"`
	Label string `json:"label"`
}
