package admin

import (
	"strings"
	"sync"
	"time"

	"github.com/romdo/go-debounce"

	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
	"github.com/udistrital/gestion_ofertas_mid/models"
)

// DefaultQuietPeriod es la espera sin teclear antes de publicar la búsqueda.
const DefaultQuietPeriod = 500 * time.Millisecond

// FilterValues es la tupla efectiva de filtros: búsqueda ya estabilizada y una entrada
// por dimensión.
type FilterValues struct {
	Search  string
	Filters map[string]string
}

// Active indica si algún filtro difiere de su valor por defecto.
func (v FilterValues) Active() bool {
	if strings.TrimSpace(v.Search) != "" {
		return true
	}
	for _, value := range v.Filters {
		if value != "" && value != models.FiltroTodos {
			return true
		}
	}
	return false
}

func (v FilterValues) clone() FilterValues {
	out := FilterValues{Search: v.Search, Filters: make(map[string]string, len(v.Filters))}
	for k, val := range v.Filters {
		out.Filters[k] = val
	}
	return out
}

// FilterController guarda el estado de los filtros. Solo los cambios de dimensión y la
// búsqueda estabilizada llegan a onChange.
type FilterController struct {
	schema   *catalog.Schema
	onChange func(FilterValues)

	// emitMu cubre desde la lectura de la tupla hasta onChange, así las publicaciones
	// llegan en el mismo orden en que cambió el estado.
	emitMu sync.Mutex

	mu        sync.Mutex
	search    string
	debounced string
	filters   map[string]string

	trigger func()
	cancel  func()
}

// NewFilterController crea el controlador con todas las dimensiones en "all". quiet <= 0
// usa DefaultQuietPeriod.
func NewFilterController(schema *catalog.Schema, quiet time.Duration, onChange func(FilterValues)) *FilterController {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	fc := &FilterController{
		schema:   schema,
		onChange: onChange,
		filters:  defaultFilters(schema),
	}
	fc.trigger, fc.cancel = debounce.New(quiet, fc.flush)
	return fc
}

func defaultFilters(schema *catalog.Schema) map[string]string {
	out := make(map[string]string, len(schema.Filters))
	for _, dim := range schema.Filters {
		out[dim] = models.FiltroTodos
	}
	return out
}

// SetSearch registra una pulsación; el temporizador se reinicia en cada llamada.
func (fc *FilterController) SetSearch(text string) {
	fc.mu.Lock()
	fc.search = text
	fc.mu.Unlock()
	fc.trigger()
}

// SetFilter cambia una dimensión; vacío equivale a "all". Las dimensiones desconocidas se ignoran.
func (fc *FilterController) SetFilter(dim, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = models.FiltroTodos
	}
	fc.emitMu.Lock()
	defer fc.emitMu.Unlock()
	fc.mu.Lock()
	current, ok := fc.filters[dim]
	if !ok || current == value {
		fc.mu.Unlock()
		return
	}
	fc.filters[dim] = value
	values := fc.valuesLocked()
	fc.mu.Unlock()
	fc.emit(values)
}

// Reset devuelve todos los filtros a su valor por defecto a la vez.
func (fc *FilterController) Reset() {
	fc.emitMu.Lock()
	defer fc.emitMu.Unlock()
	fc.mu.Lock()
	before := fc.valuesLocked()
	fc.search = ""
	fc.debounced = ""
	fc.filters = defaultFilters(fc.schema)
	after := fc.valuesLocked()
	fc.mu.Unlock()
	if before.Active() {
		fc.emit(after)
	}
}

// Search retorna el texto tal como se está escribiendo.
func (fc *FilterController) Search() string {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.search
}

// Filter retorna el valor actual de una dimensión.
func (fc *FilterController) Filter(dim string) string {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.filters[dim]
}

// Values retorna la tupla efectiva, con la búsqueda estabilizada.
func (fc *FilterController) Values() FilterValues {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.valuesLocked()
}

// Active indica si hay algún filtro efectivo distinto del defecto.
func (fc *FilterController) Active() bool {
	return fc.Values().Active()
}

// Close detiene cualquier publicación pendiente.
func (fc *FilterController) Close() {
	if fc.cancel != nil {
		fc.cancel()
	}
}

func (fc *FilterController) flush() {
	fc.emitMu.Lock()
	defer fc.emitMu.Unlock()
	fc.mu.Lock()
	if fc.search == fc.debounced {
		fc.mu.Unlock()
		return
	}
	fc.debounced = fc.search
	values := fc.valuesLocked()
	fc.mu.Unlock()
	fc.emit(values)
}

func (fc *FilterController) valuesLocked() FilterValues {
	return FilterValues{Search: fc.debounced, Filters: fc.filters}.clone()
}

func (fc *FilterController) emit(values FilterValues) {
	if fc.onChange != nil {
		fc.onChange(values)
	}
}
