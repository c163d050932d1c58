package quickreply

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
	"zapdesk/internal/lib/api/response"
	"zapdesk/internal/lib/sl"
)

type CreateRequest struct {
	Title     string `json:"title" validate:"required"`
	Text      string `json:"text" validate:"required"`
	SortOrder int    `json:"sort_order"`
}

func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.quickreply"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		replies, err := handler.ListQuickReplies()
		if err != nil {
			logger.Error("list quick replies", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list quick replies"))
			return
		}

		render.JSON(w, r, response.Ok(replies))
	}
}

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.quickreply"),
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

		reply := &entity.QuickReply{
			Title:     req.Title,
			Text:      req.Text,
			SortOrder: req.SortOrder,
			Active:    true,
		}

		if err := handler.CreateQuickReply(reply); err != nil {
			logger.Error("create quick reply", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to create quick reply"))
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(reply))
	}
}

func Delete(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.quickreply"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid quick reply id"))
			return
		}

		found, err := handler.DeactivateQuickReply(id)
		if err != nil {
			logger.Error("deactivate quick reply", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to deactivate quick reply"))
			return
		}
		if !found {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("Quick reply not found"))
			return
		}

		render.JSON(w, r, response.Ok("Quick reply deactivated"))
	}
}
