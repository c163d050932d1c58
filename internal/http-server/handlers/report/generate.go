package report

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/internal/lib/api/response"
	"zapdesk/internal/lib/sl"
)

type GenerateRequest struct {
	InstanceID string `json:"instance_id"`
	Days       int    `json:"days"`
}

// Generate kicks off the aggregation run and acknowledges immediately.
// Results land asynchronously; clients poll the summaries endpoint or
// listen for the report.ready notification.
func Generate(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.report")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		var instanceID primitive.ObjectID
		if req.InstanceID != "" {
			id, err := primitive.ObjectIDFromHex(req.InstanceID)
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("Invalid instance id"))
				return
			}
			instanceID = id
		}

		handler.GenerateReports(instanceID, req.Days)
		logger.With(slog.Int("days", req.Days)).Info("report generation started")

		render.Status(r, http.StatusAccepted)
		render.JSON(w, r, response.Ok("Report generation started"))
	}
}
