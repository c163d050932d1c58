package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusOpen      = "open"
	StatusResolved  = "resolved"
	StatusAbandoned = "abandoned"
)

// Conversation is the unit-of-work thread between one contact and one
// instance. At most one conversation per (contact, instance) is "open" at a
// time; resolved and abandoned are terminal, a later inbound message opens a
// new conversation instead of reopening.
type Conversation struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ContactPhone string             `json:"contact_phone" bson:"contact_phone"`
	ContactName  string             `json:"contact_name,omitempty" bson:"contact_name,omitempty"`
	AttendantID  primitive.ObjectID `json:"attendant_id,omitempty" bson:"attendant_id,omitempty"`
	InstanceID   primitive.ObjectID `json:"instance_id" bson:"instance_id"`
	TeamID       primitive.ObjectID `json:"team_id,omitempty" bson:"team_id,omitempty"`
	Status       string             `json:"status" bson:"status"` // "open" | "resolved" | "abandoned"

	OpenedAt        time.Time  `json:"opened_at" bson:"opened_at"`
	FirstResponseAt *time.Time `json:"first_response_at,omitempty" bson:"first_response_at,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
	LastMessageAt   time.Time  `json:"last_message_at" bson:"last_message_at"`

	FirstResponseSeconds *float64 `json:"first_response_seconds,omitempty" bson:"first_response_seconds,omitempty"`

	InboundCount  int `json:"inbound_count" bson:"inbound_count"`
	OutboundCount int `json:"outbound_count" bson:"outbound_count"`

	IsGroup          bool               `json:"is_group" bson:"is_group"`
	ContactAvatarURL string             `json:"contact_avatar_url,omitempty" bson:"contact_avatar_url,omitempty"`
	ResponsibleID    primitive.ObjectID `json:"responsible_id,omitempty" bson:"responsible_id,omitempty"`
	ManagerID        primitive.ObjectID `json:"manager_id,omitempty" bson:"manager_id,omitempty"`
	GroupTags        []string           `json:"group_tags,omitempty" bson:"group_tags,omitempty"`

	AnalysisCategory     string     `json:"analysis_category,omitempty" bson:"analysis_category,omitempty"`
	AnalysisSentiment    string     `json:"analysis_sentiment,omitempty" bson:"analysis_sentiment,omitempty"`
	AnalysisSatisfaction int        `json:"analysis_satisfaction,omitempty" bson:"analysis_satisfaction,omitempty"`
	AnalysisSummary      string     `json:"analysis_summary,omitempty" bson:"analysis_summary,omitempty"`
	AnalyzedAt           *time.Time `json:"analysis_analyzed_at,omitempty" bson:"analysis_analyzed_at,omitempty"`
}
