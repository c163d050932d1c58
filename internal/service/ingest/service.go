package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
	repository "zapdesk/internal/database"
	"zapdesk/internal/lib/sl"
)

type Storage interface {
	GetInstanceByName(name string) (*entity.Instance, error)
	FindOpenConversation(instanceID primitive.ObjectID, contactPhone string) (*entity.Conversation, error)
	InsertConversation(conv *entity.Conversation) error
	TouchConversation(id primitive.ObjectID, direction string, at time.Time, contactName string) error
	SetFirstResponse(id primitive.ObjectID, at time.Time, seconds float64) (bool, error)
	FirstActiveAttendant(instanceID primitive.ObjectID) (*entity.Attendant, error)
	UpdateGroupProfile(instanceID primitive.ObjectID, contactPhone, subject, pictureURL string) error
	MessageExists(gatewayID string) (bool, error)
	InsertMessage(msg *entity.Message) error
	UpsertCallMessage(msg *entity.Message) (bool, error)
	MarkMessageDeleted(gatewayID string) error
}

// Router assigns a team to a freshly created conversation. Implementations
// run in the background; the resolver never waits on them.
type Router interface {
	RouteConversation(conversationID primitive.ObjectID)
}

type Publisher interface {
	Publish(event entity.Notification)
}

// Service turns raw gateway deliveries into conversations and messages.
type Service struct {
	db        Storage
	router    Router
	publisher Publisher
	log       *slog.Logger
}

func NewService(db Storage, logger *slog.Logger) *Service {
	return &Service{
		db:  db,
		log: logger.With(sl.Module("ingest")),
	}
}

func (s *Service) SetRouter(router Router) {
	s.router = router
}

func (s *Service) SetPublisher(publisher Publisher) {
	s.publisher = publisher
}

// HandleEnvelope dispatches one webhook delivery. Unknown event names and
// unknown instances are accepted and dropped; per-item failures inside a
// batch are logged and do not stop the remaining items.
func (s *Service) HandleEnvelope(instanceName string, env *entity.WebhookEnvelope) error {
	inst, err := s.db.GetInstanceByName(instanceName)
	if err != nil {
		return fmt.Errorf("lookup instance: %w", err)
	}
	if inst == nil {
		s.log.With(slog.String("instance", instanceName)).Warn("webhook for unknown instance")
		return nil
	}

	switch env.Event {
	case entity.EventMessagesUpsert:
		for _, item := range decodeItems[entity.MessageData](env.Data) {
			if err := s.processMessage(inst, &item); err != nil {
				s.log.With(
					slog.String("instance", instanceName),
					slog.String("gateway_id", item.Key.ID),
					sl.Err(err),
				).Error("processing message")
			}
		}
	case entity.EventMessagesUpdate:
		for _, item := range decodeItems[entity.MessageUpdate](env.Data) {
			if err := s.processMessageUpdate(&item); err != nil {
				s.log.With(slog.String("gateway_id", item.Key.ID), sl.Err(err)).Error("processing message update")
			}
		}
	case entity.EventGroupsUpsert, entity.EventGroupsUpdate:
		for _, item := range decodeItems[entity.GroupData](env.Data) {
			if err := s.processGroup(inst, &item); err != nil {
				s.log.With(slog.String("group", item.ID), sl.Err(err)).Error("processing group update")
			}
		}
	case entity.EventCall:
		for _, item := range decodeItems[entity.CallEventData](env.Data) {
			if err := s.processCallEvent(inst, &item); err != nil {
				s.log.With(slog.String("call_id", item.ID), sl.Err(err)).Error("processing call event")
			}
		}
	default:
		s.log.With(slog.String("event", env.Event)).Debug("ignoring event")
	}
	return nil
}

// decodeItems accepts the gateway's single-object or array form of the data
// field. Undecodable payloads yield nothing, never an error.
func decodeItems[T any](raw json.RawMessage) []T {
	if len(raw) == 0 {
		return nil
	}
	var list []T
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var one T
	if err := json.Unmarshal(raw, &one); err == nil {
		return []T{one}
	}
	return nil
}

func (s *Service) processMessage(inst *entity.Instance, data *entity.MessageData) error {
	gatewayID := data.Key.ID
	if gatewayID == "" {
		// No dedup key from the gateway; store under a synthetic one.
		gatewayID = "gen:" + uuid.NewString()
	}

	exists, err := s.db.MessageExists(gatewayID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	isGroup := IsGroupJid(data.Key.RemoteJid)
	outbound := data.Key.FromMe
	direction := entity.DirectionInbound
	if outbound {
		direction = entity.DirectionOutbound
	}

	timestamp := time.Now().UTC()
	if data.MessageTimestamp > 0 {
		timestamp = time.Unix(data.MessageTimestamp, 0).UTC()
	}

	msg := &entity.Message{
		GatewayID: gatewayID,
		Direction: direction,
		Type:      MessageType(data.Message),
		Content:   ExtractText(data.Message),
		Timestamp: timestamp,
	}

	contactName := ""
	if isGroup {
		if !outbound {
			if p := data.Key.Participant; p != "" {
				msg.SenderPhone = NormalizePhone(p)
			}
			msg.SenderName = data.PushName
		}
	} else if !outbound {
		contactName = data.PushName
	}

	if msg.Type == entity.TypeCall {
		log := data.Message.CallLogMessage
		msg.CallOutcome = LogOutcome(log.CallOutcome)
		msg.IsVideoCall = log.IsVideo
		if log.DurationSecs.Valid {
			secs := log.DurationSecs.Secs
			msg.CallDurationSecs = &secs
		}
		msg.Content = CallContent(msg.CallOutcome, msg.IsVideoCall, msg.CallDurationSecs)
	}

	contactPhone := NormalizePhone(data.Key.RemoteJid)

	conv, created, err := s.resolveConversation(inst, contactPhone, contactName, isGroup, outbound, timestamp)
	if err != nil {
		return err
	}
	if conv == nil {
		// Outbound with nothing open: nothing to attach to.
		s.log.With(
			slog.String("contact", contactPhone),
			slog.String("gateway_id", gatewayID),
		).Debug("outbound message without open conversation, dropped")
		return nil
	}

	msg.ConversationID = conv.ID
	if err := s.db.InsertMessage(msg); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil
		}
		return err
	}

	if err := s.db.TouchConversation(conv.ID, direction, timestamp, contactName); err != nil {
		return err
	}

	if outbound && !isGroup && msg.Type != entity.TypeCall && conv.FirstResponseAt == nil {
		seconds := timestamp.Sub(conv.OpenedAt).Seconds()
		if seconds < 0 {
			seconds = 0
		}
		if _, err := s.db.SetFirstResponse(conv.ID, timestamp, seconds); err != nil {
			return err
		}
	}

	if created {
		s.publish(entity.NotifyConversationNew, conv)
		if !isGroup && s.router != nil {
			s.router.RouteConversation(conv.ID)
		}
	}
	s.publish(entity.NotifyMessageNew, msg)
	return nil
}

// resolveConversation finds the open conversation for a contact, creating
// one only for inbound traffic. Returns nil without error when an outbound
// message has nothing to attach to.
func (s *Service) resolveConversation(inst *entity.Instance, contactPhone, contactName string, isGroup, outbound bool, at time.Time) (*entity.Conversation, bool, error) {
	conv, err := s.db.FindOpenConversation(inst.ID, contactPhone)
	if err != nil {
		return nil, false, err
	}
	if conv != nil {
		return conv, false, nil
	}
	if outbound {
		return nil, false, nil
	}

	conv = &entity.Conversation{
		ContactPhone:  contactPhone,
		ContactName:   contactName,
		InstanceID:    inst.ID,
		Status:        entity.StatusOpen,
		OpenedAt:      at,
		LastMessageAt: at,
		IsGroup:       isGroup,
	}

	if !isGroup {
		att, err := s.db.FirstActiveAttendant(inst.ID)
		if err != nil {
			return nil, false, err
		}
		if att != nil {
			conv.AttendantID = att.ID
		}
	}

	if err := s.db.InsertConversation(conv); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			// Lost the race; someone else opened it first.
			winner, ferr := s.db.FindOpenConversation(inst.ID, contactPhone)
			if ferr != nil {
				return nil, false, ferr
			}
			if winner == nil {
				return nil, false, fmt.Errorf("open conversation vanished after duplicate key")
			}
			return winner, false, nil
		}
		return nil, false, err
	}
	return conv, true, nil
}

func (s *Service) processCallEvent(inst *entity.Instance, data *entity.CallEventData) error {
	outcome, ok := LiveOutcome(data.Status)
	if !ok {
		s.log.With(slog.String("status", data.Status)).Debug("ignoring call status")
		return nil
	}

	peer := data.Peer()
	if peer == "" {
		return nil
	}
	contactPhone := NormalizePhone(peer)

	gatewayID := "call:" + data.ID
	if data.ID == "" {
		gatewayID = "call:" + uuid.NewString()
	}

	timestamp := time.Now().UTC()
	if data.Date > 0 {
		timestamp = time.Unix(data.Date, 0).UTC()
	}

	direction := entity.DirectionOutbound
	if data.Inbound() {
		direction = entity.DirectionInbound
	}

	conv, created, err := s.resolveConversation(inst, contactPhone, "", false, direction == entity.DirectionOutbound, timestamp)
	if err != nil {
		return err
	}
	if conv == nil {
		return nil
	}

	msg := &entity.Message{
		GatewayID:      gatewayID,
		ConversationID: conv.ID,
		Direction:      direction,
		Type:           entity.TypeCall,
		CallOutcome:    outcome,
		Content:        CallContent(outcome, data.IsVideo, nil),
		Timestamp:      timestamp,
		IsVideoCall:    data.IsVideo,
	}

	inserted, err := s.db.UpsertCallMessage(msg)
	if err != nil {
		return err
	}
	if inserted {
		if err := s.db.TouchConversation(conv.ID, direction, timestamp, ""); err != nil {
			return err
		}
		if created {
			s.publish(entity.NotifyConversationNew, conv)
		}
		s.publish(entity.NotifyMessageNew, msg)
		return nil
	}
	s.publish(entity.NotifyConversationUpdated, conv)
	return nil
}

func (s *Service) processMessageUpdate(update *entity.MessageUpdate) error {
	if update.Key.ID == "" || update.Update.Status != "DELETED" {
		return nil
	}
	return s.db.MarkMessageDeleted(update.Key.ID)
}

func (s *Service) processGroup(inst *entity.Instance, group *entity.GroupData) error {
	if group.ID == "" {
		return nil
	}
	subject := group.Subject
	if subject == "" {
		subject = group.Name
	}
	picture := group.PictureURL
	if picture == "" {
		picture = group.Picture
	}
	return s.db.UpdateGroupProfile(inst.ID, NormalizePhone(group.ID), subject, picture)
}

func (s *Service) publish(event string, data interface{}) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(entity.Notification{
		Event: event,
		Data:  data,
		At:    time.Now().UTC(),
	})
}
