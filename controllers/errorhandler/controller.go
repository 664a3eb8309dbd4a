package errorhandler

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/udistrital/gestion_ofertas_mid/models/requestresponse"

	"github.com/beego/beego/v2/core/logs"
	beego "github.com/beego/beego/v2/server/web"
	"github.com/beego/beego/v2/server/web/context"
)

// ErrorHandlerController se registra en el router para gestionar 404 y otros fallos.
type ErrorHandlerController struct {
	beego.Controller
}

// Error404 centraliza la respuesta cuando la ruta no existe.
func (c *ErrorHandlerController) Error404() {
	method := c.Ctx.Request.Method
	path := c.Ctx.Request.URL.Path
	status := http.StatusNotFound
	message := fmt.Sprintf("nomatch|%s|%s", method, path)

	c.Ctx.Output.SetStatus(status)
	c.Data["json"] = requestresponse.NewError(status, message, nil)
	_ = c.ServeJSON()
}

// Error405 responde cuando la ruta existe pero no el método.
func (c *ErrorHandlerController) Error405() {
	status := http.StatusMethodNotAllowed
	c.Ctx.Output.SetStatus(status)
	c.Data["json"] = requestresponse.NewError(status, "método no permitido: "+c.Ctx.Request.Method, nil)
	_ = c.ServeJSON()
}

// RecoverPanic se instala como BConfig.RecoverFunc y entrega una respuesta estándar ante pánicos.
func RecoverPanic(ctx *context.Context, cfg *beego.Config) {
	r := recover()
	if r == nil {
		return
	}
	if r == beego.ErrAbort {
		return
	}
	logs.Error("panic:", r)
	debug.PrintStack()

	status := http.StatusInternalServerError
	ctx.Output.SetStatus(status)
	_ = ctx.Output.JSON(requestresponse.NewError(status, panicMessage(cfg.AppName, ctx.Request.Method, ctx.Request.URL.String()), nil), false, false)
}

func panicMessage(appName, method, url string) string {
	if appName == "" {
		appName = "gestion_ofertas_mid"
	}
	message := fmt.Sprintf("Error service %s: An internal server error occurred.", appName)
	message += fmt.Sprintf(" Request Info: URL: %s, Method: %s", url, method)
	message += " Time: " + time.Now().UTC().Format(time.RFC3339)
	return message
}
