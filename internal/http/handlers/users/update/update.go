// Package update реализует HTTP-обработчик частичного обновления пользователя.
//
// Изменяются только переданные поля. Пароль хешируется сервисом. Флаг
// is_superuser через этот обработчик не меняется.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/user-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/user-service/internal/http/response"
	"github.com/magabrotheeeer/user-service/internal/lib/sl"
	"github.com/magabrotheeeer/user-service/internal/models"
	"github.com/magabrotheeeer/user-service/internal/services/auth"
)

// Handler обрабатывает запросы на обновление пользователя.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис учётных записей
	validate *validator.Validate // Валидатор тела запроса
}

// Service описывает бизнес-логику обновления.
type Service interface {
	Update(ctx context.Context, id string, in models.UserUpdate) (*models.User, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновление пользователя
// @Description Частичное обновление: отсутствующие поля не меняются.
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Param request body models.UserUpdate true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.UserRead}
// @Failure 400 {object} response.ErrorResponse "Email уже занят"
// @Failure 401 {object} response.ErrorResponse "Токен не прошёл проверку"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /users/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.update"

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

	var req models.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		response.WriteErrorMessage(w, r, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.WriteValidationError(w, r, err)
		return
	}

	u, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		log.Info("failed to update user", slog.String("user_id", id), sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("user updated", slog.String("user_id", id))
	render.JSON(w, r, response.StatusOKWithData(models.NewUserRead(u)))
}
