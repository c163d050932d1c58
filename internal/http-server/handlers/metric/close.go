package metric

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
	"zapdesk/internal/lib/api/response"
	"zapdesk/internal/lib/sl"
)

// Resolve closes an open conversation as resolved. Closing is one-way, a
// second call reports conflict.
func Resolve(log *slog.Logger, handler Core) http.HandlerFunc {
	return closeAs(log, handler, entity.StatusResolved)
}

// Abandon closes an open conversation as abandoned.
func Abandon(log *slog.Logger, handler Core) http.HandlerFunc {
	return closeAs(log, handler, entity.StatusAbandoned)
}

func closeAs(log *slog.Logger, handler Core, status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.metric")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid conversation id"))
			return
		}

		closed, err := handler.CloseConversation(id, status)
		if err != nil {
			logger.Error("close conversation", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to close conversation"))
			return
		}
		if !closed {
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error("Conversation is not open"))
			return
		}
		logger.With(
			slog.String("id", id.Hex()),
			slog.String("status", status),
		).Info("conversation closed")

		render.JSON(w, r, response.Ok("Conversation "+status))
	}
}

type AssignRequest struct {
	AttendantID string `json:"attendant_id"`
}

// Assign hands an open conversation to an attendant.
func Assign(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.metric")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid conversation id"))
			return
		}

		var req AssignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		attendantID, err := primitive.ObjectIDFromHex(req.AttendantID)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid attendant id"))
			return
		}

		assigned, err := handler.AssignConversation(id, attendantID)
		if err != nil {
			logger.Error("assign conversation", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to assign conversation"))
			return
		}
		if !assigned {
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error("Conversation is not open"))
			return
		}
		logger.With(
			slog.String("id", id.Hex()),
			slog.String("attendant_id", attendantID.Hex()),
		).Info("conversation assigned")

		render.JSON(w, r, response.Ok("Conversation assigned"))
	}
}
