package instance

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/internal/lib/api/response"
	"zapdesk/internal/lib/sl"
)

// Delete deactivates an instance. Conversations and history stay in place.
func Delete(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.instance")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid instance id"))
			return
		}

		found, err := handler.DeactivateInstance(id)
		if err != nil {
			logger.Error("deactivate instance", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to deactivate instance"))
			return
		}
		if !found {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("Instance not found"))
			return
		}
		logger.With(slog.String("id", id.Hex())).Info("instance deactivated")

		render.JSON(w, r, response.Ok("Instance deactivated"))
	}
}
