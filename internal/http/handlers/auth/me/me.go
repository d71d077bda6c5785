// Package me реализует HTTP-обработчик, возвращающий текущего пользователя.
package me

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/user-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/user-service/internal/http/response"
	"github.com/magabrotheeeer/user-service/internal/models"
)

// Handler отдаёт учётную запись владельца токена.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.UserRead}
// @Failure 400 {object} response.ErrorResponse "Учетная запись отключена"
// @Failure 401 {object} response.ErrorResponse "Токен не прошёл проверку"
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

	u, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		h.log.Error("no user in request context",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		response.WriteErrorMessage(w, r, http.StatusUnauthorized, response.MsgInvalidToken)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(models.NewUserRead(u)))
}
