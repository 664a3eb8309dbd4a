package helpers

import (
	"net/http"

	internaldto "github.com/udistrital/gestion_ofertas_mid/internal/dto"
	"github.com/udistrital/gestion_ofertas_mid/models/requestresponse"
)

// Ok construye una respuesta estándar exitosa.
func Ok(data interface{}) internaldto.APIResponseDTO {
	return requestresponse.NewSuccess(http.StatusOK, "OK", data)
}

// Created construye la respuesta de un alta.
func Created(data interface{}) internaldto.APIResponseDTO {
	return requestresponse.NewSuccess(http.StatusCreated, "Registro creado", data)
}

// Fail construye una respuesta estándar de error.
func Fail(status int, message string) internaldto.APIResponseDTO {
	if status <= 0 {
		status = http.StatusInternalServerError
	}
	return requestresponse.NewError(status, message, nil)
}
