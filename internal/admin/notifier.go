package admin

import (
	"errors"
	"strings"
	"sync"

	"github.com/udistrital/gestion_ofertas_mid/helpers"
)

// Level clasifica una notificación.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification es un mensaje transitorio para el usuario.
type Notification struct {
	Level   Level
	Message string
}

// Notifier recibe los resultados de las mutaciones.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapta una función a Notifier.
type NotifierFunc func(Notification)

// Notify implementa Notifier.
func (f NotifierFunc) Notify(n Notification) { f(n) }

type discard struct{}

func (discard) Notify(Notification) {}

// Recorder guarda las notificaciones recibidas.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify implementa Notifier.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

// All retorna una copia de lo recibido.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// ErrorMessage extrae el mensaje del servidor o retorna fallback.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var appErr *helpers.AppError
	if errors.As(err, &appErr) && strings.TrimSpace(appErr.Message) != "" {
		return appErr.Message
	}
	return fallback
}

func notifyFailure(n Notifier, err error, fallback string) {
	if n == nil {
		return
	}
	n.Notify(Notification{Level: LevelError, Message: ErrorMessage(err, fallback)})
}

func notifySuccess(n Notifier, message string) {
	if n == nil {
		return
	}
	n.Notify(Notification{Level: LevelSuccess, Message: message})
}
