package admin

import (
	"context"
	"time"

	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
)

// Options ajusta la construcción del pipeline.
type Options struct {
	QuietPeriod time.Duration
	PageSize    int
	Confirmer   Confirmer
	Notifier    Notifier
}

// Pipeline arma filtros, coordinador, formulario y acciones para un esquema.
type Pipeline struct {
	Schema      *catalog.Schema
	Filters     *FilterController
	Coordinator *Coordinator
	Form        *FormDialog
	Actions     *RowActions

	ctx    context.Context
	cancel context.CancelFunc
}

// NewPipeline conecta los componentes: cada cambio efectivo de filtros dispara ApplyFilters.
func NewPipeline(ctx context.Context, schema *catalog.Schema, backend Backend, opts Options) *Pipeline {
	ctx, cancel := context.WithCancel(ctx)
	p := &Pipeline{Schema: schema, ctx: ctx, cancel: cancel}
	p.Coordinator = NewCoordinator(schema, backend, opts.PageSize)
	p.Filters = NewFilterController(schema, opts.QuietPeriod, func(v FilterValues) {
		p.Coordinator.ApplyFilters(p.ctx, v)
	})
	p.Form = NewFormDialog(schema, p.Coordinator, opts.Notifier)
	p.Actions = NewRowActions(schema, p.Coordinator, p.Form, opts.Confirmer, opts.Notifier)
	return p
}

// Start hace la carga inicial.
func (p *Pipeline) Start() Snapshot {
	return p.Coordinator.Start(p.ctx)
}

// View renderiza el estado actual.
func (p *Pipeline) View() View {
	return Render(p.Schema, p.Coordinator.Snapshot(), p.Filters.Active())
}

// Close detiene el debounce y cancela las consultas en curso.
func (p *Pipeline) Close() {
	p.Filters.Close()
	p.cancel()
}
