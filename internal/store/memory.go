package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
	"github.com/udistrital/gestion_ofertas_mid/models"
)

// MemoryStore guarda los registros en memoria, por tipo de entidad.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]models.Record
	now  func() time.Time
}

// NewMemory crea un store vacío.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]models.Record),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) bucket(kind string) map[string]models.Record {
	b, ok := m.data[kind]
	if !ok {
		b = make(map[string]models.Record)
		m.data[kind] = b
	}
	return b
}

// List implementa Store.
func (m *MemoryStore) List(ctx context.Context, schema *catalog.Schema, owner string, q Query) ([]models.Record, int, error) {
	all, err := m.All(ctx, schema, owner)
	if err != nil {
		return nil, 0, err
	}
	items, total := ApplyQuery(schema, all, q)
	return items, total, nil
}

// All implementa Store.
func (m *MemoryStore) All(ctx context.Context, schema *catalog.Schema, owner string) ([]models.Record, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Record, 0, len(m.data[schema.Kind]))
	for _, rec := range m.data[schema.Kind] {
		if owner == "" || rec.Owner() == owner {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

// Get implementa Store.
func (m *MemoryStore) Get(ctx context.Context, schema *catalog.Schema, id string) (models.Record, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.data[schema.Kind][id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

// Create implementa Store.
func (m *MemoryStore) Create(ctx context.Context, schema *catalog.Schema, rec models.Record) (models.Record, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	stored := rec.Clone()
	if stored == nil {
		stored = models.Record{}
	}
	now := m.now().Format(time.RFC3339)
	if stored.ID() == "" {
		stored[models.KeyID] = uuid.NewString()
	}
	stored[models.KeyCreatedAt] = now
	stored[models.KeyUpdatedAt] = now

	m.mu.Lock()
	m.bucket(schema.Kind)[stored.ID()] = stored
	m.mu.Unlock()
	return stored.Clone(), nil
}

// Update implementa Store.
func (m *MemoryStore) Update(ctx context.Context, schema *catalog.Schema, id string, rec models.Record) (models.Record, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.data[schema.Kind][id]
	if !ok {
		return nil, ErrNotFound
	}
	stored := rec.Clone()
	stored[models.KeyID] = id
	stored[models.KeyOwner] = current[models.KeyOwner]
	stored[models.KeyCreatedAt] = current[models.KeyCreatedAt]
	stored[models.KeyUpdatedAt] = m.now().Format(time.RFC3339)
	m.data[schema.Kind][id] = stored
	return stored.Clone(), nil
}

// Delete implementa Store.
func (m *MemoryStore) Delete(ctx context.Context, schema *catalog.Schema, id string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[schema.Kind][id]; !ok {
		return ErrNotFound
	}
	delete(m.data[schema.Kind], id)
	return nil
}
