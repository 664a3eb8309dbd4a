package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/mohae/deepcopy"
	"github.com/shopspring/decimal"

	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
	"github.com/udistrital/gestion_ofertas_mid/models"
)

var (
	// ErrSubmitInFlight se retorna cuando ya hay un envío en curso.
	ErrSubmitInFlight = errors.New("admin: envío en curso")
	// ErrDialogClosed se retorna al operar sobre un formulario cerrado.
	ErrDialogClosed = errors.New("admin: el formulario está cerrado")
	// ErrUnknownField se retorna al editar una clave que no pertenece al esquema.
	ErrUnknownField = errors.New("admin: campo desconocido")
)

// DialogMode es el modo del formulario.
type DialogMode int

const (
	DialogClosed DialogMode = iota
	DialogCreating
	DialogEditing
)

// DialogState es el estado explícito del formulario. ID solo aplica en edición.
type DialogState struct {
	Mode DialogMode
	ID   string
}

// FieldIssue describe un campo que no supera la validación.
type FieldIssue struct {
	Field  string
	Reason string
}

// ValidationError agrupa los campos inválidos; no se envía ninguna petición.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, i := range e.Issues {
		parts = append(parts, i.Field+": "+i.Reason)
	}
	return "formulario inválido: " + strings.Join(parts, "; ")
}

// Submitter persiste el borrador. Coordinator lo implementa.
type Submitter interface {
	Create(ctx context.Context, payload map[string]interface{}) (models.Record, error)
	Update(ctx context.Context, id string, payload map[string]interface{}) (models.Record, error)
}

// FormDialog es el formulario de creación y edición. Los campos escalares del borrador
// son texto; los de lista, líneas.
type FormDialog struct {
	schema   *catalog.Schema
	submit   Submitter
	notifier Notifier

	mu       sync.Mutex
	state    DialogState
	draft    map[string]interface{}
	inFlight bool
}

// NewFormDialog crea el formulario cerrado.
func NewFormDialog(schema *catalog.Schema, submit Submitter, notifier Notifier) *FormDialog {
	if notifier == nil {
		notifier = discard{}
	}
	return &FormDialog{schema: schema, submit: submit, notifier: notifier}
}

// State retorna el estado actual.
func (d *FormDialog) State() DialogState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// InFlight indica si hay un envío en curso.
func (d *FormDialog) InFlight() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inFlight
}

// OpenCreate abre el formulario con el borrador por defecto del esquema.
func (d *FormDialog) OpenCreate() {
	draft := make(map[string]interface{}, len(d.schema.Fields)+1)
	for _, f := range d.schema.Fields {
		if f.Kind == catalog.FieldList {
			draft[f.Key] = []string{""}
			continue
		}
		draft[f.Key] = f.Default
	}
	draft[models.KeyStatus] = d.schema.DefaultStatus

	d.mu.Lock()
	d.state = DialogState{Mode: DialogCreating}
	d.draft = draft
	d.mu.Unlock()
}

// OpenEdit abre el formulario con una copia de rec. Las fechas se recortan a su porción
// de fecha y las listas vacías reciben una línea en blanco.
func (d *FormDialog) OpenEdit(rec models.Record) {
	source, _ := deepcopy.Copy(map[string]interface{}(rec)).(map[string]interface{})
	copied := models.Record(source)

	draft := make(map[string]interface{}, len(d.schema.Fields)+1)
	for _, f := range d.schema.Fields {
		switch f.Kind {
		case catalog.FieldList:
			lines := copied.Strings(f.Key)
			if len(lines) == 0 {
				lines = []string{""}
			}
			draft[f.Key] = lines
		case catalog.FieldDate:
			draft[f.Key] = catalog.DateOnly(copied.String(f.Key))
		default:
			draft[f.Key] = copied.String(f.Key)
		}
	}
	draft[models.KeyStatus] = copied.Status()

	d.mu.Lock()
	d.state = DialogState{Mode: DialogEditing, ID: rec.ID()}
	d.draft = draft
	d.mu.Unlock()
}

// Set asigna el texto de un campo escalar o el estado.
func (d *FormDialog) Set(field, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state.Mode == DialogClosed {
		return ErrDialogClosed
	}
	if field != models.KeyStatus {
		f, ok := d.schema.Field(field)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
		if f.Kind == catalog.FieldList {
			d.draft[field] = catalog.SplitLines(value)
			return nil
		}
	}
	d.draft[field] = value
	return nil
}

// SetLines asigna un campo de lista desde texto multilínea. Las líneas vacías se conservan
// hasta construir el payload.
func (d *FormDialog) SetLines(field, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state.Mode == DialogClosed {
		return ErrDialogClosed
	}
	f, ok := d.schema.Field(field)
	if !ok || f.Kind != catalog.FieldList {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	d.draft[field] = catalog.SplitLines(text)
	return nil
}

// Draft retorna una copia del borrador, o nil si está cerrado.
func (d *FormDialog) Draft() map[string]interface{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.draft == nil {
		return nil
	}
	out, _ := deepcopy.Copy(d.draft).(map[string]interface{})
	return out
}

// Payload valida el borrador y construye el cuerpo de la petición.
func (d *FormDialog) Payload() (map[string]interface{}, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state.Mode == DialogClosed {
		return nil, ErrDialogClosed
	}
	return buildPayload(d.schema, d.draft)
}

// Submit envía el borrador. Si falla, el formulario queda abierto con el borrador intacto
// y se notifica; si tiene éxito, se cierra y descarta el borrador.
func (d *FormDialog) Submit(ctx context.Context) (models.Record, error) {
	d.mu.Lock()
	if d.state.Mode == DialogClosed {
		d.mu.Unlock()
		return nil, ErrDialogClosed
	}
	if d.inFlight {
		d.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	payload, err := buildPayload(d.schema, d.draft)
	if err != nil {
		d.mu.Unlock()
		return nil, err
	}
	state := d.state
	d.inFlight = true
	d.mu.Unlock()

	var rec models.Record
	if state.Mode == DialogEditing {
		rec, err = d.submit.Update(ctx, state.ID, payload)
	} else {
		rec, err = d.submit.Create(ctx, payload)
	}

	d.mu.Lock()
	d.inFlight = false
	if err != nil {
		d.mu.Unlock()
		notifyFailure(d.notifier, err, "no fue posible guardar el registro")
		return nil, err
	}
	if d.state == state {
		d.state = DialogState{}
		d.draft = nil
	}
	d.mu.Unlock()
	if state.Mode == DialogEditing {
		notifySuccess(d.notifier, "Registro actualizado")
	} else {
		notifySuccess(d.notifier, "Registro creado")
	}
	return rec, nil
}

// Cancel cierra el formulario y descarta el borrador.
func (d *FormDialog) Cancel() {
	d.mu.Lock()
	d.state = DialogState{}
	d.draft = nil
	d.mu.Unlock()
}

func buildPayload(schema *catalog.Schema, draft map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(schema.Fields)+1)
	var issues []FieldIssue
	for _, f := range schema.Fields {
		raw := draft[f.Key]
		if f.Kind == catalog.FieldList {
			lines, _ := raw.([]string)
			cleaned := catalog.CleanLines(lines)
			if f.Required && len(cleaned) == 0 {
				issues = append(issues, FieldIssue{Field: f.Key, Reason: "requerido"})
			}
			out[f.Key] = cleaned
			continue
		}
		text := strings.TrimSpace(models.ToString(raw))
		if text == "" {
			if f.Required {
				issues = append(issues, FieldIssue{Field: f.Key, Reason: "requerido"})
			}
			out[f.Key] = blankValue(f)
			continue
		}
		value, issue := parseField(f, text)
		if issue != "" {
			issues = append(issues, FieldIssue{Field: f.Key, Reason: issue})
			continue
		}
		out[f.Key] = value
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	if status := strings.TrimSpace(models.ToString(draft[models.KeyStatus])); status != "" {
		out[models.KeyStatus] = status
	}
	return out, nil
}

func blankValue(f catalog.Field) interface{} {
	switch f.Kind {
	case catalog.FieldDate, catalog.FieldInt, catalog.FieldDecimal:
		return nil
	default:
		return ""
	}
}

func parseField(f catalog.Field, text string) (interface{}, string) {
	switch f.Kind {
	case catalog.FieldInt:
		n, err := strconv.Atoi(text)
		if err != nil {
			return nil, "número inválido"
		}
		if f.Min != nil && n < *f.Min {
			return nil, fmt.Sprintf("mínimo %d", *f.Min)
		}
		if f.Max != nil && n > *f.Max {
			return nil, fmt.Sprintf("máximo %d", *f.Max)
		}
		return n, ""
	case catalog.FieldDecimal:
		d, err := decimal.NewFromString(strings.ReplaceAll(text, ",", "."))
		if err != nil {
			return nil, "número inválido"
		}
		if f.Min != nil && d.LessThan(decimal.NewFromInt(int64(*f.Min))) {
			return nil, fmt.Sprintf("mínimo %d", *f.Min)
		}
		if f.Max != nil && d.GreaterThan(decimal.NewFromInt(int64(*f.Max))) {
			return nil, fmt.Sprintf("máximo %d", *f.Max)
		}
		return d.InexactFloat64(), ""
	case catalog.FieldDate:
		value := catalog.DateOnly(text)
		if _, ok := models.ParseDate(value); !ok {
			return nil, "fecha inválida"
		}
		return value, ""
	case catalog.FieldChoice:
		if !f.HasChoice(text) {
			return nil, "valor no permitido"
		}
		return text, ""
	default:
		if f.MaxLen > 0 && len([]rune(text)) > f.MaxLen {
			return nil, fmt.Sprintf("máximo %d caracteres", f.MaxLen)
		}
		return text, ""
	}
}
