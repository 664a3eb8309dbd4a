package models

// Estados comunes de las entidades administradas. Cada tipo restringe el subconjunto válido.
const (
	EstadoBorrador   = "draft"
	EstadoActivo     = "active"
	EstadoArchivado  = "archived"
	EstadoPourvu     = "filled"
	EstadoCerrado    = "closed"
	EstadoFinalizado = "completed"
)

// FiltroTodos es el valor centinela que desactiva un filtro categórico.
const FiltroTodos = "all"
