// Package admin implementa el flujo de gestión del lado cliente: filtros con debounce,
// coordinación de listado y estadísticas, renderizado paginado, formulario de edición y
// acciones por fila. Todo se parametriza con un *catalog.Schema.
package admin

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ErrNoIdentity indica una sesión sin token ni profesional.
var ErrNoIdentity = errors.New("admin: la sesión requiere token o profesional")

// Session es el contexto de autenticación que se crea en la raíz de la aplicación y se
// pasa explícitamente al cliente del API.
type Session struct {
	BaseURL       string `validate:"required,url"`
	Token         string
	ProfesionalID string
}

// NewSession valida y normaliza la sesión.
func NewSession(baseURL, token, profesionalID string) (Session, error) {
	s := Session{
		BaseURL:       strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		Token:         strings.TrimSpace(token),
		ProfesionalID: strings.TrimSpace(profesionalID),
	}
	if err := validate.Struct(s); err != nil {
		return Session{}, err
	}
	if s.Token == "" && s.ProfesionalID == "" {
		return Session{}, ErrNoIdentity
	}
	return s, nil
}
