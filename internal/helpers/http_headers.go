package helpers

import (
	"strings"

	"github.com/beego/beego/v2/server/web/context"
	"github.com/google/uuid"
)

// HeaderRequestID correlaciona la petición entre clientes, MID y CRUD.
const HeaderRequestID = "X-Request-Id"

// RequestID retorna el identificador de correlación de la petición, generándolo si el
// cliente no lo envió. Siempre se devuelve en la respuesta.
func RequestID(ctx *context.Context) string {
	if ctx == nil {
		return ""
	}
	id := strings.TrimSpace(ctx.Input.Header(HeaderRequestID))
	if id == "" {
		id = strings.TrimSpace(ctx.Input.Header("X-Correlation-Id"))
	}
	if id == "" {
		id = uuid.NewString()
	}
	ctx.Output.Header(HeaderRequestID, id)
	return id
}
