package controllers

import (
	"net/http"
	"strings"

	rootcontrollers "github.com/udistrital/gestion_ofertas_mid/controllers"
	"github.com/udistrital/gestion_ofertas_mid/helpers"
	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
	internaldto "github.com/udistrital/gestion_ofertas_mid/internal/dto"
)

// CatalogosController expone los esquemas de entidad sin autenticación, para que los
// clientes construyan formularios, filtros y badges.
type CatalogosController struct {
	rootcontrollers.BaseController
}

// @Summary Listar esquemas
// @Tags Catalogos
// @Produce json
// @Success 200 {object} internaldto.APIResponseDTO
// GetEsquemas lista los tipos de entidad disponibles.
func (c *CatalogosController) GetEsquemas() {
	all := catalog.All()
	out := make([]internaldto.SchemaSummaryDTO, 0, len(all))
	for _, s := range all {
		out = append(out, internaldto.SchemaSummaryDTO{Kind: s.Kind, Path: s.Path, Label: s.Label})
	}
	c.RespondSuccess(http.StatusOK, "OK", out)
}

// GetEsquema retorna el descriptor completo de un tipo.
func (c *CatalogosController) GetEsquema() {
	kind := strings.TrimSpace(c.Ctx.Input.Param(":kind"))
	schema, ok := catalog.Lookup(kind)
	if !ok {
		c.RespondError(helpers.NewAppError(http.StatusNotFound, "tipo de entidad desconocido: "+kind, nil))
		return
	}
	c.RespondSuccess(http.StatusOK, "OK", schema)
}
