package core

import (
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
	"zapdesk/internal/lib/sl"
)

// GenerateReports runs the aggregation pipeline in the background. The
// trigger caller only gets an acknowledgement; failures are logged and the
// next run picks the data up again.
func (c *Core) GenerateReports(instanceID primitive.ObjectID, days int) {
	if c.reports == nil {
		c.log.Error("report service not available")
		return
	}

	go func() {
		result, err := c.reports.GenerateAll(instanceID, days)
		if err != nil {
			c.log.With(sl.Err(err)).Error("report generation")
			return
		}
		c.log.With(
			slog.Int("conversations", result.ConversationsProcessed),
			slog.Int("attendants", result.AttendantsAggregated),
			slog.Int("summarized", result.AttendantsSummarized),
			slog.Time("week", result.PeriodWeek),
		).Info("report generation finished")
	}()
}

// AttendantSummaries lists weekly rollups. A zero week means the most
// recently aggregated one.
func (c *Core) AttendantSummaries(instanceID primitive.ObjectID, week time.Time) ([]entity.AttendantWeek, error) {
	if week.IsZero() {
		latest, err := c.repo.LatestAttendantWeek(instanceID)
		if err != nil {
			return nil, err
		}
		if latest.IsZero() {
			return []entity.AttendantWeek{}, nil
		}
		week = latest
	}
	return c.repo.AttendantWeeks(instanceID, week)
}
