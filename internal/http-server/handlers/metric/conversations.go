package metric

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
	"zapdesk/internal/lib/api/response"
	"zapdesk/internal/lib/sl"
)

// Conversations lists recent threads newest-first. Filters: instance_id,
// status, attendant_id, group=true for group chats, limit (default 50).
func Conversations(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.metric")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q := r.URL.Query()

		var instanceID, attendantID primitive.ObjectID
		if raw := q.Get("instance_id"); raw != "" {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("Invalid instance id"))
				return
			}
			instanceID = id
		}
		if raw := q.Get("attendant_id"); raw != "" {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("Invalid attendant id"))
				return
			}
			attendantID = id
		}

		status := q.Get("status")
		switch status {
		case "", entity.StatusOpen, entity.StatusResolved, entity.StatusAbandoned:
		default:
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid status filter"))
			return
		}

		isGroup := q.Get("group") == "true"

		limit := int64(50)
		if raw := q.Get("limit"); raw != "" {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || n < 1 || n > 500 {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("Invalid limit"))
				return
			}
			limit = n
		}

		conversations, err := handler.RecentConversations(instanceID, status, attendantID, isGroup, limit)
		if err != nil {
			logger.Error("list conversations", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list conversations"))
			return
		}

		render.JSON(w, r, response.Ok(conversations))
	}
}

// Conversation returns one thread with its full message history.
func Conversation(log *slog.Logger, handler Core) http.HandlerFunc {
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

		conv, err := handler.GetConversation(id)
		if err != nil {
			logger.Error("get conversation", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to get conversation"))
			return
		}
		if conv == nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("Conversation not found"))
			return
		}

		messages, err := handler.ConversationMessages(id)
		if err != nil {
			logger.Error("get conversation messages", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to get messages"))
			return
		}

		var payload struct {
			Conversation *entity.Conversation `json:"conversation"`
			Messages     []entity.Message     `json:"messages"`
		}
		payload.Conversation = conv
		payload.Messages = messages

		render.JSON(w, r, response.Ok(payload))
	}
}
