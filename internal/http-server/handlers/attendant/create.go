package attendant

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
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Role       string `json:"role" validate:"omitempty,oneof=manager agent"`
	InstanceID string `json:"instance_id" validate:"required"`
	TeamID     string `json:"team_id"`
}

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.attendant")

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

		role := req.Role
		if role == "" {
			role = entity.RoleAgent
		}

		att := &entity.Attendant{
			Name:       req.Name,
			Phone:      req.Phone,
			Email:      req.Email,
			Role:       role,
			InstanceID: instanceID,
			Active:     true,
		}
		if req.TeamID != "" {
			teamID, err := primitive.ObjectIDFromHex(req.TeamID)
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("Invalid team id"))
				return
			}
			att.TeamID = teamID
		}

		if err := handler.CreateAttendant(att); err != nil {
			logger.Error("create attendant", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to create attendant"))
			return
		}
		logger.With(slog.String("name", att.Name)).Info("attendant created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(att))
	}
}
