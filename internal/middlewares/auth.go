package middlewares

import (
	"errors"
	"net/http"
	"sync"

	"github.com/beego/beego/v2/core/logs"
	beego "github.com/beego/beego/v2/server/web"
	"github.com/beego/beego/v2/server/web/context"

	internalhelpers "github.com/udistrital/gestion_ofertas_mid/internal/helpers"
	"github.com/udistrital/gestion_ofertas_mid/models/requestresponse"
)

var (
	authOnce sync.Once
)

// UseAuth registra el filtro de identidad sobre las rutas de gestión una sola vez.
// Con roles, además exige que el token traiga al menos uno.
func UseAuth(roles ...string) {
	authOnce.Do(func() {
		beego.InsertFilter("/*", beego.BeforeRouter, RequestIDFilter)
		beego.InsertFilter("/v1/gestion/*", beego.BeforeRouter, AuthFilter(roles...))
	})
}

// RequestIDFilter garantiza un X-Request-Id en cada respuesta.
func RequestIDFilter(ctx *context.Context) {
	internalhelpers.RequestID(ctx)
}

// AuthFilter resuelve el profesional que llama y corta la petición con 401/403 si no es posible.
func AuthFilter(roles ...string) beego.FilterFunc {
	return func(ctx *context.Context) {
		if ctx.Input.Method() == http.MethodOptions {
			return
		}
		if _, err := internalhelpers.ProfesionalID(ctx); err != nil {
			ctx.Input.SetData("auth_error", err)
			message := "identidad del profesional requerida"
			if !errors.Is(err, internalhelpers.ErrNoAuthHeader) {
				message = "token inválido: " + err.Error()
			}
			abort(ctx, http.StatusUnauthorized, message)
			return
		}
		if len(roles) > 0 {
			if _, err := internalhelpers.Claims(ctx); err == nil {
				if rerr := internalhelpers.RequireRole(ctx, roles...); rerr != nil {
					abort(ctx, http.StatusForbidden, "rol no autorizado")
				}
			}
		}
	}
}

func abort(ctx *context.Context, status int, message string) {
	ctx.Output.SetStatus(status)
	if err := ctx.Output.JSON(requestresponse.NewError(status, message, nil), false, false); err != nil {
		logs.Error("auth abort:", err)
	}
}
