package webhook

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"zapdesk/entity"
	"zapdesk/internal/lib/api/response"
	"zapdesk/internal/lib/sl"
)

// Receive accepts one gateway delivery. Unrecognized events are accepted
// and dropped so the gateway never retries them.
func Receive(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.webhook")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		instanceName := chi.URLParam(r, "instance")

		var env entity.WebhookEnvelope
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			logger.Error("failed to decode webhook body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if instanceName == "" {
			instanceName = env.Instance
		}
		if instanceName == "" {
			logger.Error("webhook without instance scope")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Instance not specified"))
			return
		}

		logger = logger.With(
			slog.String("instance", instanceName),
			slog.String("event", env.Event),
		)

		if err := handler.HandleWebhook(instanceName, &env); err != nil {
			logger.Error("webhook processing", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Processing failed"))
			return
		}
		logger.Debug("webhook accepted")

		render.JSON(w, r, response.Ok("received"))
	}
}
