// Package create реализует HTTP-обработчик открытой регистрации пользователя.
//
// Новый пользователь всегда активен и не является суперпользователем.
// Повторный email даёт 400 без раскрытия подробностей хранилища.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/user-service/internal/http/response"
	"github.com/magabrotheeeer/user-service/internal/lib/sl"
	"github.com/magabrotheeeer/user-service/internal/models"
)

// Handler обрабатывает запросы на регистрацию.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику регистрации.
type Service interface {
	Register(ctx context.Context, in models.UserCreate) (*models.User, error)
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
// @Summary Регистрация пользователя
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body models.UserCreate true "Данные нового пользователя"
// @Success 201 {object} response.Response{data=models.UserRead}
// @Failure 400 {object} response.ErrorResponse "Email уже занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /users [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.UserCreate
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

	u, err := h.service.Register(r.Context(), req)
	if err != nil {
		log.Info("failed to register user", sl.Email(req.Email), sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("user created", slog.String("user_id", u.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(models.NewUserRead(u)))
}
