package report

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
)

type Core interface {
	GenerateReports(instanceID primitive.ObjectID, days int)
	AttendantSummaries(instanceID primitive.ObjectID, week time.Time) ([]entity.AttendantWeek, error)
}
