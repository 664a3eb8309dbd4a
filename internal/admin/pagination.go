package admin

import "github.com/udistrital/gestion_ofertas_mid/models"

// MaxPageLinks es el número máximo de enlaces numéricos del paginador.
const MaxPageLinks = 5

// PageWindow retorna la ventana deslizante de páginas centrada en current, acotada a [1, total].
func PageWindow(current, total int) []int {
	if total <= 0 {
		return []int{}
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}
	size := MaxPageLinks
	if total < size {
		size = total
	}
	start := current - MaxPageLinks/2
	if start < 1 {
		start = 1
	}
	if start+size-1 > total {
		start = total - size + 1
	}
	out := make([]int, size)
	for i := range out {
		out[i] = start + i
	}
	return out
}

// Pager describe el control de paginación. Anterior y siguiente se deshabilitan en los
// extremos, nunca se ocultan.
type Pager struct {
	Current     int
	Pages       int
	Total       int
	Links       []int
	PrevEnabled bool
	NextEnabled bool
}

// NewPager construye el paginador a partir de los metadatos del servidor.
func NewPager(p models.Pagination) Pager {
	current := p.Page
	if current < 1 {
		current = 1
	}
	return Pager{
		Current:     current,
		Pages:       p.Pages,
		Total:       p.Total,
		Links:       PageWindow(current, p.Pages),
		PrevEnabled: current > 1,
		NextEnabled: current < p.Pages,
	}
}
