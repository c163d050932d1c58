package attendant

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

func Delete(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.attendant")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid attendant id"))
			return
		}

		found, err := handler.DeactivateAttendant(id)
		if err != nil {
			logger.Error("deactivate attendant", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to deactivate attendant"))
			return
		}
		if !found {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("Attendant not found"))
			return
		}
		logger.With(slog.String("id", id.Hex())).Info("attendant deactivated")

		render.JSON(w, r, response.Ok("Attendant deactivated"))
	}
}
