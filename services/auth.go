package services

// AddCRUDAuth agrega el header Authorization hacia el CRUD si el token está configurado.
func AddCRUDAuth(headers map[string]string, token string) map[string]string {
	if headers == nil {
		headers = make(map[string]string)
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return headers
}
