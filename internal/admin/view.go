package admin

import (
	"strings"

	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
	"github.com/udistrital/gestion_ofertas_mid/models"
)

// ViewState es el contenido del cuerpo de la tabla.
type ViewState int

const (
	ViewLoading ViewState = iota
	ViewEmpty
	ViewNoMatch
	ViewRows
)

func (s ViewState) String() string {
	switch s {
	case ViewLoading:
		return "loading"
	case ViewEmpty:
		return "empty"
	case ViewNoMatch:
		return "no_match"
	default:
		return "rows"
	}
}

// Cell es un valor ya formateado.
type Cell struct {
	Key   string
	Label string
	Value string
}

// Row es una fila de la tabla.
type Row struct {
	ID     string
	Title  string
	Status string
	Badge  catalog.Badge
	Cells  []Cell
	Counts map[string]int
	// Toggle es el estado destino del conmutador; vacío si el estado está bloqueado.
	Toggle string
}

// StatCard es un contador del encabezado.
type StatCard struct {
	Name  string
	Label string
	Value int
}

// View es el resultado de renderizar un Snapshot.
type View struct {
	State ViewState
	Rows  []Row
	Pager Pager
	Stats []StatCard
	// Error se muestra como aviso adicional; nunca reemplaza datos ya cargados.
	Error string
}

// Render construye la vista de la página a partir del estado del coordinador.
func Render(schema *catalog.Schema, snap Snapshot, filtersActive bool) View {
	v := View{
		Pager: NewPager(snap.List.Data.Pagination),
		Stats: statCards(schema, snap.Stats.Data),
		Error: joinErrors(snap.List.Error, snap.Stats.Error),
	}
	items := snap.List.Data.Items
	switch {
	case snap.List.Loading:
		v.State = ViewLoading
	case len(items) == 0 && filtersActive:
		v.State = ViewNoMatch
	case len(items) == 0:
		v.State = ViewEmpty
	default:
		v.State = ViewRows
		v.Rows = make([]Row, 0, len(items))
		for _, rec := range items {
			v.Rows = append(v.Rows, renderRow(schema, rec))
		}
	}
	return v
}

func renderRow(schema *catalog.Schema, rec models.Record) Row {
	row := Row{
		ID:     rec.ID(),
		Title:  rec.String(schema.TitleField),
		Status: rec.Status(),
		Badge:  schema.Badge(rec.Status()),
		Counts: make(map[string]int, len(schema.ReadOnly)),
	}
	if next, ok := schema.Toggle(rec.Status()); ok {
		row.Toggle = next
	}
	for _, f := range schema.Columns() {
		row.Cells = append(row.Cells, Cell{Key: f.Key, Label: f.Label, Value: FormatValue(f, rec)})
	}
	for _, key := range schema.ReadOnly {
		row.Counts[key] = rec.Int(key)
	}
	return row
}

// FormatValue formatea el campo f de rec para mostrarlo.
func FormatValue(f catalog.Field, rec models.Record) string {
	switch f.Kind {
	case catalog.FieldDate:
		return catalog.DateOnly(rec.String(f.Key))
	case catalog.FieldList:
		return strings.Join(rec.Strings(f.Key), ", ")
	default:
		return rec.String(f.Key)
	}
}

func statCards(schema *catalog.Schema, stats models.Stats) []StatCard {
	out := make([]StatCard, 0, len(schema.Counters))
	for _, c := range schema.Counters {
		out = append(out, StatCard{Name: c.Name, Label: c.Label, Value: stats.Counter(c.Name)})
	}
	return out
}

func joinErrors(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " · ")
}
