package routers

import (
	"github.com/udistrital/gestion_ofertas_mid/controllers/errorhandler"
	internalcontrollers "github.com/udistrital/gestion_ofertas_mid/internal/controllers"

	beego "github.com/beego/beego/v2/server/web"
)

func init() {
	// Manejador de errores
	beego.ErrorController(&errorhandler.ErrorHandlerController{})

	beego.Router("/v1/gestion/:kind", &internalcontrollers.GestionController{}, "get:GetListado;post:PostCrear")
	beego.Router("/v1/gestion/:kind/estadisticas", &internalcontrollers.GestionController{}, "get:GetEstadisticas")
	beego.Router("/v1/gestion/:kind/exportar", &internalcontrollers.GestionController{}, "get:GetExportar")
	beego.Router("/v1/gestion/:kind/:id/estado", &internalcontrollers.GestionController{}, "put:PutEstado")
	beego.Router("/v1/gestion/:kind/:id", &internalcontrollers.GestionController{}, "get:GetById;put:PutActualizar;delete:DeleteEliminar")

	beego.Router("/v1/catalogos/esquemas", &internalcontrollers.CatalogosController{}, "get:GetEsquemas")
	beego.Router("/v1/catalogos/esquemas/:kind", &internalcontrollers.CatalogosController{}, "get:GetEsquema")
}
