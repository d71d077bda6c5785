// Package read реализует HTTP-обработчик чтения пользователя по id.
//
// Читать запись может только её владелец или суперпользователь. Право доступа
// проверяется до обращения к хранилищу, поэтому чужой id даёт 403, а не 404.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/user-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/user-service/internal/http/response"
	"github.com/magabrotheeeer/user-service/internal/lib/sl"
	"github.com/magabrotheeeer/user-service/internal/models"
	"github.com/magabrotheeeer/user-service/internal/services/auth"
)

// Handler обрабатывает запросы на получение пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает бизнес-логику чтения пользователя.
type Service interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Пользователь по id
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Success 200 {object} response.Response{data=models.UserRead}
// @Failure 401 {object} response.ErrorResponse "Токен не прошёл проверку"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /users/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	actor, _ := middlewarectx.UserFromContext(r.Context())
	if err := auth.Authorize(actor, id); err != nil {
		log.Info("access denied", slog.String("user_id", id))
		response.WriteError(w, r, err)
		return
	}

	u, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		log.Info("failed to read user", slog.String("user_id", id), sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(models.NewUserRead(u)))
}
