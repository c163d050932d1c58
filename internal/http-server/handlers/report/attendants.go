package report

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/internal/lib/api/response"
	"zapdesk/internal/lib/period"
	"zapdesk/internal/lib/sl"
)

// Attendants returns per-attendant weekly rollups with their narratives.
// week is any YYYY-MM-DD date inside the wanted week; omitted means the
// latest aggregated week.
func Attendants(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.report")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q := r.URL.Query()

		var instanceID primitive.ObjectID
		if raw := q.Get("instance_id"); raw != "" {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("Invalid instance id"))
				return
			}
			instanceID = id
		}

		var week time.Time
		if raw := q.Get("week"); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("Invalid week, expected YYYY-MM-DD"))
				return
			}
			week = period.WeekStart(parsed)
		}

		rows, err := handler.AttendantSummaries(instanceID, week)
		if err != nil {
			logger.Error("attendant summaries", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to load summaries"))
			return
		}

		render.JSON(w, r, response.Ok(rows))
	}
}
