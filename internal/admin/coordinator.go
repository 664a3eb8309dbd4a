package admin

import (
	"context"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
	"github.com/udistrital/gestion_ofertas_mid/models"
)

// DefaultPageSize es el tamaño de página que pide el coordinador.
const DefaultPageSize = 10

// Resource es el estado de una de las dos consultas.
type Resource[T any] struct {
	Data    T
	Loading bool
	Error   string
	// Loaded indica si alguna vez hubo una respuesta exitosa.
	Loaded bool
}

// Snapshot es una vista inmutable del estado del coordinador.
type Snapshot struct {
	Filters FilterValues
	Page    int
	List    Resource[models.Page]
	Stats   Resource[models.Stats]
}

// Coordinator traduce filtros y página en las consultas de listado y estadísticas.
// Las fallas de consulta se registran en el estado; las de mutación se retornan.
type Coordinator struct {
	backend Backend
	schema  *catalog.Schema
	size    int

	mu     sync.Mutex
	state  Snapshot
	subs   map[int]func(Snapshot)
	nextID int
}

// NewCoordinator crea el coordinador sin consultar todavía; size <= 0 usa DefaultPageSize.
func NewCoordinator(schema *catalog.Schema, backend Backend, size int) *Coordinator {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Coordinator{
		backend: backend,
		schema:  schema,
		size:    size,
		state: Snapshot{
			Filters: FilterValues{Filters: defaultFilters(schema)},
			Page:    1,
		},
		subs: map[int]func(Snapshot){},
	}
}

// Subscribe registra fn para cada cambio de estado y retorna la función para retirarla.
func (c *Coordinator) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Snapshot retorna el estado actual.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Start hace la carga inicial de listado y estadísticas.
func (c *Coordinator) Start(ctx context.Context) Snapshot {
	return c.fetch(ctx, true)
}

// ApplyFilters reemplaza los filtros, vuelve a la página 1 y consulta ambos recursos.
func (c *Coordinator) ApplyFilters(ctx context.Context, values FilterValues) Snapshot {
	c.mu.Lock()
	c.state.Filters = values.clone()
	c.state.Page = 1
	c.mu.Unlock()
	return c.fetch(ctx, true)
}

// GoToPage cambia de página sin tocar filtros; solo consulta el listado.
func (c *Coordinator) GoToPage(ctx context.Context, page int) Snapshot {
	if page < 1 {
		page = 1
	}
	c.mu.Lock()
	c.state.Page = page
	c.mu.Unlock()
	return c.fetch(ctx, false)
}

// Refresh repite ambas consultas con el estado actual.
func (c *Coordinator) Refresh(ctx context.Context) Snapshot {
	return c.fetch(ctx, true)
}

// Create crea el registro y, solo si tuvo éxito, vuelve a consultar.
func (c *Coordinator) Create(ctx context.Context, payload map[string]interface{}) (models.Record, error) {
	rec, err := c.backend.Create(ctx, payload)
	if err != nil {
		return nil, err
	}
	c.Refresh(ctx)
	return rec, nil
}

// Update actualiza el registro y vuelve a consultar.
func (c *Coordinator) Update(ctx context.Context, id string, payload map[string]interface{}) (models.Record, error) {
	rec, err := c.backend.Update(ctx, id, payload)
	if err != nil {
		return nil, err
	}
	c.Refresh(ctx)
	return rec, nil
}

// Delete elimina el registro y vuelve a consultar.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	if err := c.backend.Delete(ctx, id); err != nil {
		return err
	}
	c.Refresh(ctx)
	return nil
}

// SetStatus cambia el estado y vuelve a consultar.
func (c *Coordinator) SetStatus(ctx context.Context, id, status string) (models.Record, error) {
	rec, err := c.backend.SetStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	c.Refresh(ctx)
	return rec, nil
}

// Export descarga el archivo en w y vuelve a consultar.
func (c *Coordinator) Export(ctx context.Context, format string, w io.Writer) (string, error) {
	name, err := c.backend.Export(ctx, format, w)
	if err != nil {
		return "", err
	}
	c.Refresh(ctx)
	return name, nil
}

func (c *Coordinator) fetch(ctx context.Context, withStats bool) Snapshot {
	c.mu.Lock()
	params := ListParams{
		Search:  c.state.Filters.Search,
		Filters: c.state.Filters.clone().Filters,
		Page:    c.state.Page,
		Size:    c.size,
	}
	c.state.List.Loading = true
	if withStats {
		c.state.Stats.Loading = true
	}
	c.mu.Unlock()
	c.publish()

	var g errgroup.Group
	g.Go(func() error {
		page, err := c.backend.List(ctx, params)
		c.mu.Lock()
		c.state.List.Loading = false
		if err != nil {
			c.state.List.Error = ErrorMessage(err, "no fue posible cargar el listado")
		} else {
			if page.Items == nil {
				page.Items = []models.Record{}
			}
			c.state.List.Data = page
			c.state.List.Error = ""
			c.state.List.Loaded = true
		}
		c.mu.Unlock()
		c.publish()
		return err
	})
	if withStats {
		g.Go(func() error {
			stats, err := c.backend.Stats(ctx)
			c.mu.Lock()
			c.state.Stats.Loading = false
			if err != nil {
				c.state.Stats.Error = ErrorMessage(err, "no fue posible cargar las estadísticas")
			} else {
				c.state.Stats.Data = stats
				c.state.Stats.Error = ""
				c.state.Stats.Loaded = true
			}
			c.mu.Unlock()
			c.publish()
			return err
		})
	}
	// los errores ya quedaron en el estado
	_ = g.Wait()
	return c.Snapshot()
}

func (c *Coordinator) snapshotLocked() Snapshot {
	s := c.state
	s.Filters = c.state.Filters.clone()
	return s
}

func (c *Coordinator) publish() {
	c.mu.Lock()
	snap := c.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}
