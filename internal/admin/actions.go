package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
	"github.com/udistrital/gestion_ofertas_mid/models"
)

var (
	// ErrRowBusy se retorna cuando la fila ya tiene una acción en curso.
	ErrRowBusy = errors.New("admin: la fila tiene una acción en curso")
	// ErrStatusLocked se retorna cuando el estado no tiene conmutador.
	ErrStatusLocked = errors.New("admin: el estado no admite cambio rápido")
)

// Confirmer resuelve la confirmación bloqueante previa a un borrado.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapta una función a Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm implementa Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) { return f(ctx, prompt) }

// Mutator ejecuta las mutaciones de fila. Coordinator lo implementa.
type Mutator interface {
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id, status string) (models.Record, error)
}

// RowActions expone editar, eliminar y conmutar estado. El estado en curso se lleva por id,
// de modo que una fila ocupada no bloquea a las demás.
type RowActions struct {
	schema   *catalog.Schema
	mutator  Mutator
	form     *FormDialog
	confirm  Confirmer
	notifier Notifier

	mu   sync.Mutex
	busy map[string]bool
}

// NewRowActions crea el menú de acciones. Sin confirmer, ningún borrado se confirma.
func NewRowActions(schema *catalog.Schema, mutator Mutator, form *FormDialog, confirm Confirmer, notifier Notifier) *RowActions {
	if confirm == nil {
		confirm = ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })
	}
	if notifier == nil {
		notifier = discard{}
	}
	return &RowActions{
		schema:   schema,
		mutator:  mutator,
		form:     form,
		confirm:  confirm,
		notifier: notifier,
		busy:     map[string]bool{},
	}
}

// Busy indica si la fila id tiene una acción en curso.
func (a *RowActions) Busy(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy[id]
}

// Edit abre el formulario en modo edición con la fila.
func (a *RowActions) Edit(rec models.Record) error {
	if a.Busy(rec.ID()) {
		return ErrRowBusy
	}
	a.form.OpenEdit(rec)
	return nil
}

// Delete pide confirmación y, solo si se acepta, elimina. Retorna false cuando no se eliminó.
func (a *RowActions) Delete(ctx context.Context, rec models.Record) (bool, error) {
	id := rec.ID()
	if a.Busy(id) {
		return false, ErrRowBusy
	}
	title := rec.String(a.schema.TitleField)
	ok, err := a.confirm.Confirm(ctx, fmt.Sprintf("¿Eliminar \"%s\"? Esta acción no se puede deshacer.", title))
	if err != nil || !ok {
		return false, err
	}
	if !a.acquire(id) {
		return false, ErrRowBusy
	}
	defer a.release(id)

	if err := a.mutator.Delete(ctx, id); err != nil {
		notifyFailure(a.notifier, err, "no fue posible eliminar el registro")
		return false, err
	}
	notifySuccess(a.notifier, "Registro eliminado")
	return true, nil
}

// ToggleStatus aplica el conmutador de estado sin abrir el formulario.
func (a *RowActions) ToggleStatus(ctx context.Context, rec models.Record) (models.Record, error) {
	next, ok := a.schema.Toggle(rec.Status())
	if !ok {
		return nil, ErrStatusLocked
	}
	id := rec.ID()
	if !a.acquire(id) {
		return nil, ErrRowBusy
	}
	defer a.release(id)

	updated, err := a.mutator.SetStatus(ctx, id, next)
	if err != nil {
		notifyFailure(a.notifier, err, "no fue posible cambiar el estado")
		return nil, err
	}
	notifySuccess(a.notifier, "Estado: "+a.schema.Badge(next).Label)
	return updated, nil
}

func (a *RowActions) acquire(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.busy[id] {
		return false
	}
	a.busy[id] = true
	return true
}

func (a *RowActions) release(id string) {
	a.mu.Lock()
	delete(a.busy, id)
	a.mu.Unlock()
}
