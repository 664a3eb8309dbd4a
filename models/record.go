package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mohae/deepcopy"
)

// Claves reservadas presentes en todo registro administrado.
const (
	KeyID        = "id"
	KeyStatus    = "status"
	KeyOwner     = "owner_id"
	KeyCreatedAt = "created_at"
	KeyUpdatedAt = "updated_at"
)

// FlexID permite deserializar identificadores que pueden venir como número o string.
type FlexID string

// UnmarshalJSON soporta formatos heterogéneos en las respuestas del CRUD.
func (fi *FlexID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*fi = ""
		return nil
	}
	switch trimmed[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		if raw, ok := obj["Id"]; ok && raw != nil {
			return fi.UnmarshalJSON(raw)
		}
		if raw, ok := obj["id"]; ok && raw != nil {
			return fi.UnmarshalJSON(raw)
		}
		*fi = ""
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*fi = FlexID(strings.TrimSpace(s))
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return err
		}
		*fi = FlexID(n.String())
		return nil
	}
}

// String devuelve el valor nativo.
func (fi FlexID) String() string {
	return string(fi)
}

// Record representa una entidad (alternancia, empleo o formación) tal como viaja en JSON.
// El esquema de cada tipo define qué claves son válidas.
type Record map[string]interface{}

// ID retorna el identificador opaco del registro.
func (r Record) ID() string {
	return r.String(KeyID)
}

// Status retorna el estado actual.
func (r Record) Status() string {
	return r.String(KeyStatus)
}

// Owner retorna el profesional dueño del registro.
func (r Record) Owner() string {
	return r.String(KeyOwner)
}

// Has indica si la clave existe y no es nula.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// String convierte el valor de la clave a texto.
func (r Record) String(key string) string {
	return ToString(r[key])
}

// Int convierte el valor de la clave a entero; ausente o inválido vale 0.
func (r Record) Int(key string) int {
	n, _ := ToInt(r[key])
	return n
}

// Strings retorna el valor como secuencia ordenada de textos.
func (r Record) Strings(key string) []string {
	switch v := r[key].(type) {
	case nil:
		return nil
	case []string:
		return append([]string(nil), v...)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, ToString(item))
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return strings.Split(v, "\n")
	default:
		return []string{ToString(v)}
	}
}

// Time interpreta el valor como fecha (RFC3339 o AAAA-MM-DD).
func (r Record) Time(key string) (time.Time, bool) {
	switch v := r[key].(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	}
	return ParseDate(r.String(key))
}

// Clone retorna una copia profunda del registro.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	copied, ok := deepcopy.Copy(map[string]interface{}(r)).(map[string]interface{})
	if !ok {
		return Record{}
	}
	return Record(copied)
}

// ParseDate acepta RFC3339 o fecha simple.
func ParseDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return parsed, true
	}
	if parsed, err := time.Parse("2006-01-02", trimmed); err == nil {
		return parsed, true
	}
	if len(trimmed) >= 10 {
		if parsed, err := time.Parse("2006-01-02", trimmed[:10]); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// ToInt normaliza valores numéricos heterogéneos.
func ToInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case float32:
		return int(v), true
	case json.Number:
		if parsed, err := strconv.Atoi(v.String()); err == nil {
			return parsed, true
		}
		if parsed, err := v.Float64(); err == nil {
			return int(parsed), true
		}
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, false
		}
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

// ToString normaliza cualquier valor escalar a texto.
func ToString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case FlexID:
		return string(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.Itoa(int(v))
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}
