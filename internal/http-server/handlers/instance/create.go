package instance

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"zapdesk/entity"
	repository "zapdesk/internal/database"
	"zapdesk/internal/lib/api/response"
	"zapdesk/internal/lib/sl"
)

type CreateRequest struct {
	Name         string `json:"name" validate:"required"`
	InstanceName string `json:"instance_name" validate:"required"`
	ApiURL       string `json:"api_url" validate:"required,url"`
	ApiKey       string `json:"api_key"`
	PhoneNumber  string `json:"phone_number"`
}

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.instance")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid create request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		inst := &entity.Instance{
			Name:         req.Name,
			InstanceName: req.InstanceName,
			ApiURL:       req.ApiURL,
			ApiKey:       req.ApiKey,
			PhoneNumber:  req.PhoneNumber,
			Active:       true,
		}

		if err := handler.CreateInstance(inst); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error("Instance name already registered"))
				return
			}
			logger.Error("create instance", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to create instance"))
			return
		}
		logger.With(slog.String("instance", inst.InstanceName)).Info("instance created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(inst))
	}
}
