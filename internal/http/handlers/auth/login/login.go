// Package login реализует HTTP-обработчик входа по email и паролю.
//
// Принимает форму application/x-www-form-urlencoded с полями username и password
// (username содержит email) или тот же набор полей в JSON. При успехе
// возвращает токен доступа {access_token, token_type}.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/user-service/internal/http/response"
	"github.com/magabrotheeeer/user-service/internal/lib/apperr"
	"github.com/magabrotheeeer/user-service/internal/lib/sl"
)

// Request учетные данные для входа.
type Request struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse ответ с токеном доступа.
type TokenResponse struct {
	AccessToken string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType   string `json:"token_type" example:"bearer"`
}

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис аутентификации
	validate *validator.Validate // Валидатор для проверки входных данных
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
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
// @Summary Вход по email и паролю
// @Description Проверяет учетные данные и выдает bearer-токен. Поле username содержит email.
// @Tags Auth
// @Accept  x-www-form-urlencoded
// @Accept  json
// @Produce  json
// @Param username formData string true "Email пользователя"
// @Param password formData string true "Пароль"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} response.ErrorResponse "Учетная запись отключена"
// @Failure 401 {object} response.ErrorResponse "Неверный email или пароль"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много попыток"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	req, err := decode(r)
	if err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		response.WriteErrorMessage(w, r, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.WriteValidationError(w, r, err)
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Info("login failed", sl.Email(req.Username), sl.Err(err))
		if errors.Is(err, apperr.ErrUnauthenticated) {
			response.WriteErrorMessage(w, r, http.StatusUnauthorized, response.MsgInvalidCredentials)
			return
		}
		response.WriteError(w, r, err)
		return
	}

	log.Info("login success", sl.Email(req.Username))
	render.JSON(w, r, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func decode(r *http.Request) (Request, error) {
	var req Request
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Username = r.PostForm.Get("username")
	req.Password = r.PostForm.Get("password")
	return req, nil
}
