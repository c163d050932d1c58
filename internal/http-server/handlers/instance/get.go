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

func Get(log *slog.Logger, handler Core) http.HandlerFunc {
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

		inst, err := handler.GetInstance(id)
		if err != nil {
			logger.Error("get instance", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to get instance"))
			return
		}
		if inst == nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("Instance not found"))
			return
		}

		render.JSON(w, r, response.Ok(inst))
	}
}
