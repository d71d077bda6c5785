// Package health реализует проверку доступности сервиса.
package health

import (
	"net/http"

	"github.com/go-chi/render"
)

// Status ответ проверки доступности.
type Status struct {
	Service string `json:"service" example:"user-service"`
	Status  string `json:"status" example:"ok"`
}

// Handler отвечает на GET /.
type Handler struct {
	service string
}

// New создает Handler для сервиса с именем service.
func New(service string) *Handler {
	return &Handler{service: service}
}

// ServeHTTP godoc
// @Summary Проверка доступности
// @Tags Health
// @Produce  json
// @Success 200 {object} Status
// @Router / [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, Status{Service: h.service, Status: "ok"})
}
