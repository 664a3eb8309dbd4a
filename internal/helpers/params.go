package helpers

import (
	"fmt"
	"strings"

	"github.com/beego/beego/v2/server/web/context"
)

// ParamString extrae un parámetro de ruta obligatorio.
func ParamString(ctx *context.Context, name string) (string, error) {
	if ctx == nil {
		return "", fmt.Errorf("contexto nil")
	}
	raw := strings.TrimSpace(ctx.Input.Param(name))
	if raw == "" {
		return "", fmt.Errorf("parametro %s vacío", strings.TrimPrefix(name, ":"))
	}
	return raw, nil
}
