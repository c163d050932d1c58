package core

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
	"zapdesk/internal/lib/sl"
	"zapdesk/internal/service/report"
)

type Repository interface {
	ListInstances() ([]entity.Instance, error)
	GetInstance(id primitive.ObjectID) (*entity.Instance, error)
	CreateInstance(inst *entity.Instance) error
	DeactivateInstance(id primitive.ObjectID) (bool, error)

	ListAttendants(instanceID primitive.ObjectID) ([]entity.Attendant, error)
	CreateAttendant(att *entity.Attendant) error
	DeactivateAttendant(id primitive.ObjectID) (bool, error)

	ListTeams(instanceID primitive.ObjectID) ([]entity.Team, error)
	CreateTeam(team *entity.Team) error
	DeactivateTeam(id primitive.ObjectID) (bool, error)

	ListQuickReplies() ([]entity.QuickReply, error)
	CreateQuickReply(reply *entity.QuickReply) error
	DeactivateQuickReply(id primitive.ObjectID) (bool, error)

	Overview(instanceID primitive.ObjectID) (*entity.OverviewMetrics, error)
	RecentConversations(instanceID primitive.ObjectID, status string, attendantID primitive.ObjectID, isGroup bool, limit int64) ([]entity.Conversation, error)
	GetConversation(id primitive.ObjectID) (*entity.Conversation, error)
	ConversationMessages(conversationID primitive.ObjectID) ([]entity.Message, error)
	CloseConversation(id primitive.ObjectID, status string, at time.Time) (bool, error)
	AssignAttendant(id, attendantID primitive.ObjectID) (bool, error)

	AttendantWeeks(instanceID primitive.ObjectID, week time.Time) ([]entity.AttendantWeek, error)
	LatestAttendantWeek(instanceID primitive.ObjectID) (time.Time, error)
}

type IngestService interface {
	HandleEnvelope(instanceName string, env *entity.WebhookEnvelope) error
}

type AnalysisService interface {
	AnalyzeAsync(id primitive.ObjectID)
}

type ReportService interface {
	GenerateAll(instanceID primitive.ObjectID, days int) (*report.RunResult, error)
}

type Publisher interface {
	Publish(event entity.Notification)
}

type Core struct {
	repo      Repository
	ingest    IngestService
	analysis  AnalysisService
	reports   ReportService
	publisher Publisher
	authKey   string
	log       *slog.Logger
}

func New(log *slog.Logger) *Core {
	return &Core{
		log: log.With(sl.Module("core")),
	}
}

func (c *Core) SetRepository(repo Repository) {
	c.repo = repo
}

func (c *Core) SetAuthKey(key string) {
	c.authKey = key
}

func (c *Core) SetIngestService(ingest IngestService) {
	c.ingest = ingest
}

func (c *Core) SetAnalysisService(analysis AnalysisService) {
	c.analysis = analysis
}

func (c *Core) SetReportService(reports ReportService) {
	c.reports = reports
}

func (c *Core) SetPublisher(publisher Publisher) {
	c.publisher = publisher
}

func (c *Core) AuthenticateKey(key string) error {
	if c.authKey == "" {
		return fmt.Errorf("api key not configured")
	}
	if subtle.ConstantTimeCompare([]byte(key), []byte(c.authKey)) != 1 {
		return fmt.Errorf("invalid api key")
	}
	return nil
}

func (c *Core) HandleWebhook(instanceName string, env *entity.WebhookEnvelope) error {
	if c.ingest == nil {
		return fmt.Errorf("ingest service not available")
	}
	return c.ingest.HandleEnvelope(instanceName, env)
}

func (c *Core) publish(event string, data interface{}) {
	if c.publisher == nil {
		return
	}
	c.publisher.Publish(entity.Notification{
		Event: event,
		Data:  data,
		At:    time.Now().UTC(),
	})
}
