package controllers

import (
	"fmt"
	"net/http"
	"strings"

	rootcontrollers "github.com/udistrital/gestion_ofertas_mid/controllers"
	"github.com/udistrital/gestion_ofertas_mid/helpers"
	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
	internaldto "github.com/udistrital/gestion_ofertas_mid/internal/dto"
	internalhelpers "github.com/udistrital/gestion_ofertas_mid/internal/helpers"
	internalservices "github.com/udistrital/gestion_ofertas_mid/internal/services"
)

// GestionController expone la gestión de ofertas y formaciones del profesional. El tipo de
// entidad llega en la ruta (:kind = alternances | emplois | formations).
type GestionController struct {
	rootcontrollers.BaseController
}

// @Summary Listar registros del profesional
// @Description Búsqueda libre por título (q), un parámetro por dimensión de filtro ("all" = sin filtro) y paginación calculada en servidor.
// @Tags Gestion
// @Produce json
// @Param kind path string true "Tipo de entidad" Example(emplois)
// @Param q query string false "Texto de búsqueda"
// @Param page query int false "Página (1..n)"
// @Param size query int false "Tamaño de página (máx. 100)"
// @Success 200 {object} internaldto.APIResponseDTO
// @Failure 401 {object} internaldto.APIResponseDTO
// @Failure 404 {object} internaldto.APIResponseDTO
// GetListado lista los registros con filtros y paginación.
func (c *GestionController) GetListado() {
	schema, ok := c.requireSchema()
	if !ok {
		return
	}
	owner, ok := c.requireProfesional()
	if !ok {
		return
	}

	page, err := internalservices.Gestion().Listar(c.Ctx.Request.Context(), schema, owner, internalhelpers.ListQuery(c.Ctx, schema))
	if err != nil {
		c.respondError(err, "error listando registros")
		return
	}
	resp := internalhelpers.Ok(page)
	c.writeJSON(resp.Status, resp)
}

// @Summary Estadísticas del profesional
// @Tags Gestion
// @Produce json
// @Param kind path string true "Tipo de entidad" Example(formations)
// @Success 200 {object} internaldto.APIResponseDTO
// GetEstadisticas retorna los contadores agregados.
func (c *GestionController) GetEstadisticas() {
	schema, ok := c.requireSchema()
	if !ok {
		return
	}
	owner, ok := c.requireProfesional()
	if !ok {
		return
	}

	stats, err := internalservices.Gestion().Estadisticas(c.Ctx.Request.Context(), schema, owner)
	if err != nil {
		c.respondError(err, "error calculando estadísticas")
		return
	}
	resp := internalhelpers.Ok(stats)
	c.writeJSON(resp.Status, resp)
}

// @Summary Crear registro
// @Description Normaliza el payload según el esquema; estado por defecto draft.
// @Tags Gestion
// @Accept json
// @Produce json
// @Param kind path string true "Tipo de entidad"
// @Success 201 {object} internaldto.APIResponseDTO
// @Failure 400 {object} internaldto.APIResponseDTO
// PostCrear crea un registro del profesional.
func (c *GestionController) PostCrear() {
	schema, ok := c.requireSchema()
	if !ok {
		return
	}
	owner, ok := c.requireProfesional()
	if !ok {
		return
	}
	payload, ok := c.parsePayload()
	if !ok {
		return
	}

	rec, err := internalservices.Gestion().Crear(c.Ctx.Request.Context(), schema, owner, payload)
	if err != nil {
		c.respondError(err, "error creando registro")
		return
	}
	resp := internalhelpers.Created(rec)
	c.writeJSON(resp.Status, resp)
}

// GetById retorna el detalle de un registro propio.
func (c *GestionController) GetById() {
	schema, owner, id, ok := c.requireTarget()
	if !ok {
		return
	}

	rec, err := internalservices.Gestion().Obtener(c.Ctx.Request.Context(), schema, owner, id)
	if err != nil {
		c.respondError(err, "error consultando registro")
		return
	}
	resp := internalhelpers.Ok(rec)
	c.writeJSON(resp.Status, resp)
}

// @Summary Actualizar registro
// @Tags Gestion
// @Accept json
// @Produce json
// @Param kind path string true "Tipo de entidad"
// @Param id path string true "Id del registro"
// @Success 200 {object} internaldto.APIResponseDTO
// @Failure 400 {object} internaldto.APIResponseDTO
// @Failure 403 {object} internaldto.APIResponseDTO
// @Failure 404 {object} internaldto.APIResponseDTO
// PutActualizar reemplaza los campos editables del registro.
func (c *GestionController) PutActualizar() {
	schema, owner, id, ok := c.requireTarget()
	if !ok {
		return
	}
	payload, ok := c.parsePayload()
	if !ok {
		return
	}

	rec, err := internalservices.Gestion().Actualizar(c.Ctx.Request.Context(), schema, owner, id, payload)
	if err != nil {
		c.respondError(err, "error actualizando registro")
		return
	}
	resp := internalhelpers.Ok(rec)
	resp.Message = "Registro actualizado"
	c.writeJSON(resp.Status, resp)
}

// DeleteEliminar borra un registro propio.
func (c *GestionController) DeleteEliminar() {
	schema, owner, id, ok := c.requireTarget()
	if !ok {
		return
	}

	if err := internalservices.Gestion().Eliminar(c.Ctx.Request.Context(), schema, owner, id); err != nil {
		c.respondError(err, "error eliminando registro")
		return
	}
	resp := internalhelpers.Ok(nil)
	resp.Message = "Registro eliminado"
	c.writeJSON(resp.Status, resp)
}

// @Summary Cambiar estado
// @Description Body {"estado": "archived"}; el estado debe pertenecer a la enumeración del tipo.
// @Tags Gestion
// @Accept json
// @Produce json
// @Success 200 {object} internaldto.APIResponseDTO
// @Failure 400 {object} internaldto.APIResponseDTO
// PutEstado cambia el estado del registro sin pasar por el formulario.
func (c *GestionController) PutEstado() {
	schema, owner, id, ok := c.requireTarget()
	if !ok {
		return
	}
	var req internaldto.EstadoReq
	if err := c.ParseJSONBody(&req); err != nil {
		resp := internalhelpers.Fail(http.StatusBadRequest, "JSON inválido")
		c.writeJSON(resp.Status, resp)
		return
	}

	rec, err := internalservices.Gestion().CambiarEstado(c.Ctx.Request.Context(), schema, owner, id, req)
	if err != nil {
		c.respondError(err, "error cambiando estado")
		return
	}
	resp := internalhelpers.Ok(rec)
	resp.Message = "Estado actualizado"
	c.writeJSON(resp.Status, resp)
}

// @Summary Exportar registros
// @Tags Gestion
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (defecto) o pdf"
// GetExportar descarga todos los registros del profesional como adjunto.
func (c *GestionController) GetExportar() {
	schema, ok := c.requireSchema()
	if !ok {
		return
	}
	owner, ok := c.requireProfesional()
	if !ok {
		return
	}

	file, err := internalservices.Gestion().Exportar(c.Ctx.Request.Context(), schema, owner, c.GetString("format"))
	if err != nil {
		c.respondError(err, "error exportando registros")
		return
	}
	c.Ctx.Output.Header("Content-Type", file.ContentType)
	c.Ctx.Output.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	c.Ctx.Output.SetStatus(http.StatusOK)
	_ = c.Ctx.Output.Body(file.Body)
}

func (c *GestionController) requireSchema() (*catalog.Schema, bool) {
	kind := strings.TrimSpace(c.Ctx.Input.Param(":kind"))
	schema, ok := catalog.Lookup(kind)
	if !ok {
		c.respondError(helpers.NewAppError(http.StatusNotFound, "tipo de entidad desconocido: "+kind, nil), "tipo desconocido")
		return nil, false
	}
	return schema, true
}

func (c *GestionController) requireProfesional() (string, bool) {
	id, err := internalhelpers.ProfesionalID(c.Ctx)
	if err != nil {
		c.respondError(helpers.NewAppError(http.StatusUnauthorized, "identidad del profesional requerida", err), "no autorizado")
		return "", false
	}
	return id, true
}

func (c *GestionController) requireTarget() (*catalog.Schema, string, string, bool) {
	schema, ok := c.requireSchema()
	if !ok {
		return nil, "", "", false
	}
	owner, ok := c.requireProfesional()
	if !ok {
		return nil, "", "", false
	}
	id, err := internalhelpers.ParamString(c.Ctx, ":id")
	if err != nil {
		c.respondError(helpers.NewAppError(http.StatusBadRequest, "id inválido", err), "id inválido")
		return nil, "", "", false
	}
	return schema, owner, id, true
}

func (c *GestionController) parsePayload() (map[string]interface{}, bool) {
	var payload map[string]interface{}
	if err := c.ParseJSONBody(&payload); err != nil || payload == nil {
		resp := internalhelpers.Fail(http.StatusBadRequest, "JSON inválido")
		c.writeJSON(resp.Status, resp)
		return nil, false
	}
	return payload, true
}

func (c *GestionController) respondError(err error, fallback string) {
	appErr := helpers.AsAppError(err, fallback)
	resp := internalhelpers.Fail(appErr.Status, appErr.Message)
	c.writeJSON(resp.Status, resp)
}

func (c *GestionController) writeJSON(status int, payload internaldto.APIResponseDTO) {
	c.Ctx.Output.SetStatus(status)
	c.Data["json"] = payload
	_ = c.ServeJSON()
}
