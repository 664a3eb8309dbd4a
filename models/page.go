package models

// Pagination describe la paginación calculada por el servidor.
type Pagination struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
	Size  int `json:"size,omitempty"`
}

// NewPagination calcula el número de páginas a partir del total.
func NewPagination(page, size, total int) Pagination {
	if size <= 0 {
		size = 1
	}
	if page <= 0 {
		page = 1
	}
	pages := (total + size - 1) / size
	return Pagination{Page: page, Pages: pages, Total: total, Size: size}
}

// Page es la respuesta de un listado paginado.
type Page struct {
	Items      []Record   `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Stats agrupa los contadores agregados de un tipo de entidad.
type Stats struct {
	Counters map[string]int `json:"counters"`
	ByStatus map[string]int `json:"by_status"`
}

// Counter retorna el contador indicado o 0.
func (s Stats) Counter(name string) int {
	if s.Counters == nil {
		return 0
	}
	return s.Counters[name]
}
