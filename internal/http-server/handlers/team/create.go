package team

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
	"zapdesk/internal/lib/api/response"
	"zapdesk/internal/lib/sl"
)

type CreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
	InstanceID  string `json:"instance_id" validate:"required"`
}

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.team")

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

		instanceID, err := primitive.ObjectIDFromHex(req.InstanceID)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid instance id"))
			return
		}

		team := &entity.Team{
			Name:        req.Name,
			Description: req.Description,
			Keywords:    req.Keywords,
			InstanceID:  instanceID,
			Active:      true,
		}

		if err := handler.CreateTeam(team); err != nil {
			logger.Error("create team", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to create team"))
			return
		}
		logger.With(slog.String("name", team.Name)).Info("team created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(team))
	}
}
