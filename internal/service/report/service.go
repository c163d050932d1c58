package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
	"zapdesk/internal/lib/period"
	"zapdesk/internal/lib/sl"
)

type Storage interface {
	ConversationsOpenedSince(instanceID primitive.ObjectID, since time.Time) ([]entity.Conversation, error)
	GetAttendant(id primitive.ObjectID) (*entity.Attendant, error)

	ReplaceConversationFact(fact *entity.ConversationFact) error
	FactsForWeek(instanceID primitive.ObjectID, week time.Time, assignedOnly bool) ([]entity.ConversationFact, error)
	ReplaceContactAgentWeeks(instanceID primitive.ObjectID, week time.Time, rows []entity.ContactAgentWeek) error
	UpsertAttendantWeek(row *entity.AttendantWeek) error
	AttendantWeeks(instanceID primitive.ObjectID, week time.Time) ([]entity.AttendantWeek, error)
	SetAttendantWeekSummary(attendantID primitive.ObjectID, week time.Time, summary string, at time.Time) error
}

type Summarizer interface {
	Complete(ctx context.Context, systemMsg, userMsg string, maxTokens int) (string, error)
}

type Publisher interface {
	Publish(event entity.Notification)
}

// RunResult is what a full pipeline run reports back to the operator.
type RunResult struct {
	ConversationsProcessed int       `json:"conversations_processed"`
	ContactPairsProcessed  int       `json:"contact_pairs_processed"`
	AttendantsAggregated   int       `json:"attendants_aggregated"`
	AttendantsSummarized   int       `json:"attendants_summarized"`
	PeriodWeek             time.Time `json:"period_week"`
}

// Service runs the weekly aggregation pipeline: conversation snapshots,
// contact and attendant rollups, then one LLM narrative per attendant.
type Service struct {
	db        Storage
	llm       Summarizer
	publisher Publisher
	log       *slog.Logger
}

func NewService(db Storage, llm Summarizer, logger *slog.Logger) *Service {
	return &Service{
		db:  db,
		llm: llm,
		log: logger.With(sl.Module("report")),
	}
}

func (s *Service) SetPublisher(publisher Publisher) {
	s.publisher = publisher
}

// GenerateAll runs all four stages in order for one instance. The stages
// feed each other, so a stage failure stops the run; inside stage 4 each
// attendant fails independently.
func (s *Service) GenerateAll(instanceID primitive.ObjectID, days int) (*RunResult, error) {
	if days <= 0 {
		days = 7
	}
	week := period.WeekStart(time.Now().UTC())
	result := &RunResult{PeriodWeek: week}

	n, err := s.snapshotConversations(instanceID, days)
	if err != nil {
		return nil, fmt.Errorf("snapshot stage: %w", err)
	}
	result.ConversationsProcessed = n

	n, err = s.rollupContactWeeks(instanceID, week)
	if err != nil {
		return nil, fmt.Errorf("contact rollup stage: %w", err)
	}
	result.ContactPairsProcessed = n

	n, err = s.rollupAttendantWeeks(instanceID, week)
	if err != nil {
		return nil, fmt.Errorf("attendant rollup stage: %w", err)
	}
	result.AttendantsAggregated = n

	result.AttendantsSummarized = s.summarizeAttendants(instanceID, week)

	s.log.With(
		slog.Int("conversations", result.ConversationsProcessed),
		slog.Int("attendants", result.AttendantsAggregated),
		slog.Int("summarized", result.AttendantsSummarized),
	).Info("report pipeline finished")

	if s.publisher != nil {
		s.publisher.Publish(entity.Notification{
			Event: entity.NotifyReportReady,
			Data:  result,
			At:    time.Now().UTC(),
		})
	}
	return result, nil
}

// summarizeAttendants is stage 4. Failures are per attendant: a broken
// completion leaves that row's previous narrative in place and moves on.
func (s *Service) summarizeAttendants(instanceID primitive.ObjectID, week time.Time) int {
	rows, err := s.db.AttendantWeeks(instanceID, week)
	if err != nil {
		s.log.With(sl.Err(err)).Error("loading attendant weeks for summary")
		return 0
	}

	processed := 0
	for i := range rows {
		row := &rows[i]
		summary, err := s.summarize(row)
		if err != nil {
			s.log.With(
				slog.String("attendant", row.AttendantName),
				sl.Err(err),
			).Error("generating attendant summary")
			continue
		}
		if err := s.db.SetAttendantWeekSummary(row.AttendantID, week, summary, time.Now().UTC()); err != nil {
			s.log.With(slog.String("attendant", row.AttendantName), sl.Err(err)).Error("storing attendant summary")
			continue
		}
		processed++
	}
	return processed
}

func (s *Service) summarize(row *entity.AttendantWeek) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()
	return s.llm.Complete(ctx, reportSystemPrompt, buildReportPrompt(row), 700)
}
