// Package list реализует HTTP-обработчик постраничного списка пользователей.
// Доступ только для суперпользователя, проверка выполняется middleware.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/user-service/internal/http/response"
	"github.com/magabrotheeeer/user-service/internal/lib/sl"
	"github.com/magabrotheeeer/user-service/internal/models"
)

const (
	// DefaultLimit размер страницы, если limit не передан.
	DefaultLimit = 100
	// MaxLimit наибольший допустимый размер страницы, совпадает с тегом lte в Query.
	MaxLimit = 1000
)

// Query параметры страницы.
type Query struct {
	Skip  int `validate:"gte=0"`
	Limit int `validate:"gte=1,lte=1000"`
}

// Page страница пользователей в ответе.
type Page struct {
	Count int               `json:"count" example:"1"`
	Users []models.UserRead `json:"users"`
}

// Handler обрабатывает запросы на получение списка пользователей.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику чтения списка.
type Service interface {
	List(ctx context.Context, skip, limit int) ([]*models.User, error)
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
// @Summary Список пользователей
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Param skip query int false "Сколько записей пропустить" default(0)
// @Param limit query int false "Размер страницы" default(100) maximum(1000)
// @Success 200 {object} response.Response{data=Page}
// @Failure 401 {object} response.ErrorResponse "Токен не прошёл проверку"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q, err := parseQuery(r)
	if err != nil {
		log.Info("failed to parse query", sl.Err(err))
		response.WriteErrorMessage(w, r, http.StatusUnprocessableEntity, "skip and limit must be integers")
		return
	}
	if err := h.validate.Struct(q); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.WriteValidationError(w, r, err)
		return
	}

	users, err := h.service.List(r.Context(), q.Skip, q.Limit)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Debug("users listed", slog.Int("count", len(users)))
	render.JSON(w, r, response.StatusOKWithData(Page{
		Count: len(users),
		Users: models.NewUserReadList(users),
	}))
}

func parseQuery(r *http.Request) (Query, error) {
	q := Query{Limit: DefaultLimit}
	values := r.URL.Query()
	if s := values.Get("skip"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return q, err
		}
		q.Skip = v
	}
	if s := values.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return q, err
		}
		q.Limit = v
	}
	return q, nil
}
