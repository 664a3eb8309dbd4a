// Package catalog describe los esquemas de las entidades administradas (alternancias,
// empleos y formaciones). Todo el pipeline de gestión, en el MID y en los clientes,
// se parametriza con estos descriptores.
package catalog

import (
	"sort"
	"strings"

	"github.com/udistrital/gestion_ofertas_mid/models"
)

// FieldKind clasifica cómo se edita y normaliza un campo.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldTextarea FieldKind = "textarea"
	FieldChoice   FieldKind = "choice"
	FieldInt      FieldKind = "int"
	FieldDecimal  FieldKind = "decimal"
	FieldDate     FieldKind = "date"
	FieldList     FieldKind = "list"
)

// Field describe un campo editable del formulario.
type Field struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
	Choices  []string  `json:"choices,omitempty"`
	Min      *int      `json:"min,omitempty"`
	Max      *int      `json:"max,omitempty"`
	MaxLen   int       `json:"max_len,omitempty"`
	Default  string    `json:"default,omitempty"`
	// Column indica si el campo se muestra en la tabla del listado.
	Column bool `json:"column,omitempty"`
}

// HasChoice indica si value pertenece a la enumeración del campo.
func (f Field) HasChoice(value string) bool {
	for _, c := range f.Choices {
		if c == value {
			return true
		}
	}
	return false
}

// Badge es la presentación de un estado en la tabla.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Status es una entrada de la enumeración cerrada de estados.
type Status struct {
	Value string `json:"value"`
	Badge
}

// CounterKind define cómo se calcula un contador agregado.
type CounterKind string

const (
	CounterAll        CounterKind = "all"
	CounterStatus     CounterKind = "status"
	CounterSum        CounterKind = "sum"
	CounterDeadline   CounterKind = "deadline"
	CounterStartAhead CounterKind = "start_ahead"
)

// Counter describe un contador de estadísticas.
type Counter struct {
	Name   string      `json:"name"`
	Label  string      `json:"label"`
	Kind   CounterKind `json:"kind"`
	Status string      `json:"status,omitempty"`
	Field  string      `json:"field,omitempty"`
	Days   int         `json:"days,omitempty"`
}

// Schema es el descriptor completo de un tipo de entidad.
type Schema struct {
	Kind          string            `json:"kind"`
	Path          string            `json:"path"`
	Label         string            `json:"label"`
	Fields        []Field           `json:"fields"`
	Statuses      []Status          `json:"statuses"`
	DefaultStatus string            `json:"default_status"`
	Toggles       map[string]string `json:"toggles"`
	Filters       []string          `json:"filters"`
	Counters      []Counter         `json:"counters"`
	// ReadOnly son los contadores que suministra el backend.
	ReadOnly []string `json:"read_only"`
	// TitleField es la clave usada para la búsqueda libre.
	TitleField string `json:"title_field"`
}

// Field retorna el descriptor del campo key.
func (s *Schema) Field(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// IsStatus indica si value pertenece a la enumeración de estados.
func (s *Schema) IsStatus(value string) bool {
	for _, st := range s.Statuses {
		if st.Value == value {
			return true
		}
	}
	return false
}

// StatusValues lista los estados válidos en orden.
func (s *Schema) StatusValues() []string {
	out := make([]string, 0, len(s.Statuses))
	for _, st := range s.Statuses {
		out = append(out, st.Value)
	}
	return out
}

// Badge resuelve la presentación de un estado; los desconocidos se muestran tal cual en gris.
func (s *Schema) Badge(status string) Badge {
	for _, st := range s.Statuses {
		if st.Value == status {
			return st.Badge
		}
	}
	return Badge{Label: status, Color: "gray"}
}

// Toggle retorna el estado destino del conmutador de fila.
func (s *Schema) Toggle(status string) (string, bool) {
	next, ok := s.Toggles[status]
	return next, ok
}

// IsReadOnly indica si la clave la calcula el backend.
func (s *Schema) IsReadOnly(key string) bool {
	for _, k := range s.ReadOnly {
		if k == key {
			return true
		}
	}
	return false
}

// FilterChoices retorna los valores posibles de una dimensión de filtro.
func (s *Schema) FilterChoices(dim string) []string {
	if dim == models.KeyStatus {
		return s.StatusValues()
	}
	if f, ok := s.Field(dim); ok {
		return append([]string(nil), f.Choices...)
	}
	return nil
}

// Columns retorna los campos mostrados en la tabla.
func (s *Schema) Columns() []Field {
	out := make([]Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Column {
			out = append(out, f)
		}
	}
	return out
}

// DateOnly recorta una marca de tiempo ISO a su porción de fecha.
func DateOnly(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) > 10 && trimmed[4] == '-' && trimmed[7] == '-' {
		return trimmed[:10]
	}
	return trimmed
}

var registry = map[string]*Schema{}

func register(s *Schema) *Schema {
	registry[s.Kind] = s
	return s
}

// Lookup busca un esquema por tipo o por segmento de ruta.
func Lookup(kindOrPath string) (*Schema, bool) {
	key := strings.ToLower(strings.TrimSpace(kindOrPath))
	if s, ok := registry[key]; ok {
		return s, true
	}
	for _, s := range registry {
		if s.Path == key {
			return s, true
		}
	}
	return nil, false
}

// All retorna los esquemas registrados ordenados por tipo.
func All() []*Schema {
	out := make([]*Schema, 0, len(registry))
	for _, s := range registry {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

func intPtr(v int) *int { return &v }

// ByPath busca un esquema solo por su segmento de ruta REST.
func ByPath(path string) (*Schema, bool) {
	key := strings.ToLower(strings.Trim(path, "/ "))
	for _, s := range registry {
		if s.Path == key {
			return s, true
		}
	}
	return nil, false
}
