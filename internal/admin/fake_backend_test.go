package admin

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
	internaldto "github.com/udistrital/gestion_ofertas_mid/internal/dto"
	internalservices "github.com/udistrital/gestion_ofertas_mid/internal/services"
	"github.com/udistrital/gestion_ofertas_mid/internal/store"
	"github.com/udistrital/gestion_ofertas_mid/models"
)

// fakeBackend atiende las llamadas con el servicio real sobre memoria y cuenta cada una.
type fakeBackend struct {
	svc    *internalservices.GestionService
	schema *catalog.Schema
	owner  string

	mu         sync.Mutex
	calls      map[string]int
	lastList   ListParams
	lastCreate map[string]interface{}
	lastUpdate map[string]interface{}
	failList   error
	failStats  error
	failCreate error
	failUpdate error
	deleteGate chan struct{}
}

func newFakeBackend(schema *catalog.Schema) *fakeBackend {
	return &fakeBackend{
		svc:    internalservices.NewGestionService(store.NewMemory(), 16, time.Minute),
		schema: schema,
		owner:  "p1",
		calls:  map[string]int{},
	}
}

func (f *fakeBackend) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeBackend) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeBackend) resetCalls() {
	f.mu.Lock()
	f.calls = map[string]int{}
	f.mu.Unlock()
}

func (f *fakeBackend) record(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeBackend) seed(payload map[string]interface{}) models.Record {
	rec, err := f.svc.Crear(context.Background(), f.schema, f.owner, payload)
	if err != nil {
		panic(err)
	}
	return rec
}

func (f *fakeBackend) List(ctx context.Context, p ListParams) (models.Page, error) {
	f.record("list")
	f.mu.Lock()
	f.lastList = p
	fail := f.failList
	f.mu.Unlock()
	if fail != nil {
		return models.Page{}, fail
	}
	return f.svc.Listar(ctx, f.schema, f.owner, internaldto.ListQueryDTO{
		Q: p.Search, Filters: p.Filters, Page: p.Page, Size: p.Size,
	})
}

func (f *fakeBackend) Stats(ctx context.Context) (models.Stats, error) {
	f.record("stats")
	f.mu.Lock()
	fail := f.failStats
	f.mu.Unlock()
	if fail != nil {
		return models.Stats{}, fail
	}
	return f.svc.Estadisticas(ctx, f.schema, f.owner)
}

func (f *fakeBackend) Create(ctx context.Context, payload map[string]interface{}) (models.Record, error) {
	f.record("create")
	f.mu.Lock()
	f.lastCreate = payload
	fail := f.failCreate
	f.mu.Unlock()
	if fail != nil {
		return nil, fail
	}
	return f.svc.Crear(ctx, f.schema, f.owner, payload)
}

func (f *fakeBackend) Update(ctx context.Context, id string, payload map[string]interface{}) (models.Record, error) {
	f.record("update")
	f.mu.Lock()
	f.lastUpdate = payload
	fail := f.failUpdate
	f.mu.Unlock()
	if fail != nil {
		return nil, fail
	}
	return f.svc.Actualizar(ctx, f.schema, f.owner, id, payload)
}

func (f *fakeBackend) Delete(ctx context.Context, id string) error {
	f.record("delete")
	f.mu.Lock()
	gate := f.deleteGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.svc.Eliminar(ctx, f.schema, f.owner, id)
}

func (f *fakeBackend) SetStatus(ctx context.Context, id, status string) (models.Record, error) {
	f.record("status")
	return f.svc.CambiarEstado(ctx, f.schema, f.owner, id, internaldto.EstadoReq{Estado: status})
}

func (f *fakeBackend) Export(ctx context.Context, format string, w io.Writer) (string, error) {
	f.record("export")
	file, err := f.svc.Exportar(ctx, f.schema, f.owner, format)
	if err != nil {
		return "", err
	}
	_, err = io.Copy(w, bytes.NewReader(file.Body))
	return file.Filename, err
}

func emploi(title, status string) map[string]interface{} {
	return map[string]interface{}{
		"title":       title,
		"type":        "CDI",
		"secteur":     "Informatique & Tech",
		"experience":  "Junior (1-3 ans)",
		"salaire":     "35-40K€",
		"location":    "Lyon (69)",
		"description": "...",
		"status":      status,
	}
}
