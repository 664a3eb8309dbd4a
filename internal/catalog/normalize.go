package catalog

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/udistrital/gestion_ofertas_mid/models"
)

var validate = validator.New()

// FieldError reporta el primer campo que no supera la normalización.
type FieldError struct {
	Field  string
	Reason string
}

// Error implementa la interfaz error.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NormalizePayload valida y normaliza el cuerpo de creación/actualización. Descarta claves
// desconocidas, reservadas y contadores de solo lectura. fallbackStatus se usa cuando el
// payload no trae estado.
func (s *Schema) NormalizePayload(payload map[string]interface{}, fallbackStatus string) (models.Record, error) {
	out := make(models.Record, len(s.Fields)+1)
	for _, f := range s.Fields {
		value, err := normalizeField(f, payload[f.Key])
		if err != nil {
			return nil, err
		}
		out[f.Key] = value
	}

	status := strings.TrimSpace(models.ToString(payload[models.KeyStatus]))
	if status == "" {
		status = fallbackStatus
	}
	if status == "" {
		status = s.DefaultStatus
	}
	if !s.IsStatus(status) {
		return nil, &FieldError{Field: models.KeyStatus, Reason: "estado no soportado"}
	}
	out[models.KeyStatus] = status
	return out, nil
}

func normalizeField(f Field, raw interface{}) (interface{}, error) {
	switch f.Kind {
	case FieldList:
		return CleanLines(toLines(raw)), nil
	case FieldInt:
		return normalizeInt(f, raw)
	case FieldDecimal:
		return normalizeDecimal(f, raw)
	case FieldDate:
		value := DateOnly(models.ToString(raw))
		if value == "" {
			if f.Required {
				return nil, &FieldError{Field: f.Key, Reason: "requerido"}
			}
			return nil, nil
		}
		if _, ok := models.ParseDate(value); !ok {
			return nil, &FieldError{Field: f.Key, Reason: "fecha inválida"}
		}
		return value, nil
	default:
		value := strings.TrimSpace(models.ToString(raw))
		if err := validate.Var(value, textTag(f)); err != nil {
			if value == "" {
				return nil, &FieldError{Field: f.Key, Reason: "requerido"}
			}
			return nil, &FieldError{Field: f.Key, Reason: fmt.Sprintf("máximo %d caracteres", f.MaxLen)}
		}
		if f.Kind == FieldChoice && value != "" && !f.HasChoice(value) {
			return nil, &FieldError{Field: f.Key, Reason: "valor no permitido"}
		}
		return value, nil
	}
}

func textTag(f Field) string {
	tags := make([]string, 0, 2)
	if f.Required {
		tags = append(tags, "required")
	} else {
		tags = append(tags, "omitempty")
	}
	if f.MaxLen > 0 {
		tags = append(tags, fmt.Sprintf("max=%d", f.MaxLen))
	}
	return strings.Join(tags, ",")
}

func normalizeInt(f Field, raw interface{}) (interface{}, error) {
	text := strings.TrimSpace(models.ToString(raw))
	if text == "" {
		if f.Required {
			return nil, &FieldError{Field: f.Key, Reason: "requerido"}
		}
		if f.Default == "" {
			return nil, nil
		}
		text = f.Default
	}
	n, ok := models.ToInt(text)
	if !ok {
		return nil, &FieldError{Field: f.Key, Reason: "número inválido"}
	}
	if f.Min != nil && n < *f.Min {
		return nil, &FieldError{Field: f.Key, Reason: fmt.Sprintf("mínimo %d", *f.Min)}
	}
	if f.Max != nil && n > *f.Max {
		return nil, &FieldError{Field: f.Key, Reason: fmt.Sprintf("máximo %d", *f.Max)}
	}
	return n, nil
}

func normalizeDecimal(f Field, raw interface{}) (interface{}, error) {
	text := strings.TrimSpace(strings.ReplaceAll(models.ToString(raw), ",", "."))
	if text == "" {
		if f.Required {
			return nil, &FieldError{Field: f.Key, Reason: "requerido"}
		}
		return nil, nil
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return nil, &FieldError{Field: f.Key, Reason: "número inválido"}
	}
	if f.Min != nil && d.LessThan(decimal.NewFromInt(int64(*f.Min))) {
		return nil, &FieldError{Field: f.Key, Reason: fmt.Sprintf("mínimo %d", *f.Min)}
	}
	if f.Max != nil && d.GreaterThan(decimal.NewFromInt(int64(*f.Max))) {
		return nil, &FieldError{Field: f.Key, Reason: fmt.Sprintf("máximo %d", *f.Max)}
	}
	return d.InexactFloat64(), nil
}

// SplitLines separa un texto multilínea conservando las líneas vacías.
func SplitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// CleanLines recorta cada línea y descarta las vacías; nunca retorna nil.
func CleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if trimmed := strings.TrimSpace(l); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func toLines(raw interface{}) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, models.ToString(item))
		}
		return out
	case string:
		return SplitLines(v)
	default:
		return []string{models.ToString(v)}
	}
}
