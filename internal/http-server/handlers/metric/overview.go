package metric

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/internal/lib/api/response"
	"zapdesk/internal/lib/sl"
)

// Overview reports the dashboard headline counters, optionally scoped by
// instance_id.
func Overview(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.metric")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var instanceID primitive.ObjectID
		if raw := r.URL.Query().Get("instance_id"); raw != "" {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("Invalid instance id"))
				return
			}
			instanceID = id
		}

		metrics, err := handler.Overview(instanceID)
		if err != nil {
			logger.Error("metrics overview", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to compute metrics"))
			return
		}

		render.JSON(w, r, response.Ok(metrics))
	}
}
