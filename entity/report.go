package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConversationFact is one row per conversation inside the lookback window,
// the first aggregation layer. Rebuildable; replaced wholesale on every
// pipeline run, keyed by ConversationID.
type ConversationFact struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ConversationID primitive.ObjectID `json:"conversation_id" bson:"conversation_id"`
	AttendantID    primitive.ObjectID `json:"attendant_id,omitempty" bson:"attendant_id,omitempty"`
	AttendantName  string             `json:"attendant_name,omitempty" bson:"attendant_name,omitempty"`
	InstanceID     primitive.ObjectID `json:"instance_id" bson:"instance_id"`

	ContactPhone string `json:"contact_phone" bson:"contact_phone"`
	ContactName  string `json:"contact_name,omitempty" bson:"contact_name,omitempty"`

	Status               string     `json:"status" bson:"status"`
	OpenedAt             time.Time  `json:"opened_at" bson:"opened_at"`
	ResolvedAt           *time.Time `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
	FirstResponseSeconds *float64   `json:"first_response_seconds,omitempty" bson:"first_response_seconds,omitempty"`
	ResolutionSeconds    *float64   `json:"resolution_seconds,omitempty" bson:"resolution_seconds,omitempty"`

	InboundCount  int `json:"inbound_count" bson:"inbound_count"`
	OutboundCount int `json:"outbound_count" bson:"outbound_count"`

	AnalysisCategory     string `json:"analysis_category,omitempty" bson:"analysis_category,omitempty"`
	AnalysisSentiment    string `json:"analysis_sentiment,omitempty" bson:"analysis_sentiment,omitempty"`
	AnalysisSatisfaction int    `json:"analysis_satisfaction,omitempty" bson:"analysis_satisfaction,omitempty"`

	// Monday of the week OpenedAt falls in, UTC midnight.
	PeriodWeek time.Time `json:"period_week" bson:"period_week"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// ContactAgentWeek is the contact x attendant x week rollup. Fully
// recomputed per run; unique by (contact_phone, attendant_id, period_week).
type ContactAgentWeek struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ContactPhone string             `json:"contact_phone" bson:"contact_phone"`
	AttendantID  primitive.ObjectID `json:"attendant_id" bson:"attendant_id"`
	InstanceID   primitive.ObjectID `json:"instance_id" bson:"instance_id"`
	PeriodWeek   time.Time          `json:"period_week" bson:"period_week"`

	TotalConversations     int `json:"total_conversations" bson:"total_conversations"`
	ResolvedConversations  int `json:"resolved_conversations" bson:"resolved_conversations"`
	AbandonedConversations int `json:"abandoned_conversations" bson:"abandoned_conversations"`

	AvgResponseSeconds   *float64 `json:"avg_response_seconds,omitempty" bson:"avg_response_seconds,omitempty"`
	AvgResolutionSeconds *float64 `json:"avg_resolution_seconds,omitempty" bson:"avg_resolution_seconds,omitempty"`
	TotalMessagesIn      int      `json:"total_messages_in" bson:"total_messages_in"`
	TotalMessagesOut     int      `json:"total_messages_out" bson:"total_messages_out"`
	AvgSatisfaction      *float64 `json:"avg_satisfaction,omitempty" bson:"avg_satisfaction,omitempty"`

	DominantCategory  string `json:"dominant_category,omitempty" bson:"dominant_category,omitempty"`
	DominantSentiment string `json:"dominant_sentiment,omitempty" bson:"dominant_sentiment,omitempty"`

	LastUpdated time.Time `json:"last_updated" bson:"last_updated"`
}

// AttendantWeek is the attendant x week rollup. Numeric fields are
// recomputed per run; LLMSummary and GeneratedAt survive reruns until the
// summarization stage regenerates them. Unique by (attendant_id, period_week).
type AttendantWeek struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AttendantID   primitive.ObjectID `json:"attendant_id" bson:"attendant_id"`
	AttendantName string             `json:"attendant_name" bson:"attendant_name"`
	Role          string             `json:"role,omitempty" bson:"role,omitempty"`
	InstanceID    primitive.ObjectID `json:"instance_id" bson:"instance_id"`
	PeriodWeek    time.Time          `json:"period_week" bson:"period_week"`

	TotalConversations     int     `json:"total_conversations" bson:"total_conversations"`
	ResolvedConversations  int     `json:"resolved_conversations" bson:"resolved_conversations"`
	AbandonedConversations int     `json:"abandoned_conversations" bson:"abandoned_conversations"`
	ResolutionRate         float64 `json:"resolution_rate" bson:"resolution_rate"`

	AvgFirstResponseSeconds *float64 `json:"avg_first_response_seconds,omitempty" bson:"avg_first_response_seconds,omitempty"`
	AvgResolutionSeconds    *float64 `json:"avg_resolution_seconds,omitempty" bson:"avg_resolution_seconds,omitempty"`
	TotalMessagesSent       int      `json:"total_messages_sent" bson:"total_messages_sent"`
	TotalMessagesReceived   int      `json:"total_messages_received" bson:"total_messages_received"`
	AvgSatisfaction         *float64 `json:"avg_satisfaction,omitempty" bson:"avg_satisfaction,omitempty"`

	Sla5MinRate  float64 `json:"sla_5min_rate" bson:"sla_5min_rate"`
	Sla15MinRate float64 `json:"sla_15min_rate" bson:"sla_15min_rate"`
	Sla30MinRate float64 `json:"sla_30min_rate" bson:"sla_30min_rate"`

	// Ordered key->count objects serialized as JSON text.
	TopCategories string `json:"top_categories,omitempty" bson:"top_categories,omitempty"`
	TopSentiments string `json:"top_sentiments,omitempty" bson:"top_sentiments,omitempty"`

	LLMSummary  string     `json:"llm_summary,omitempty" bson:"llm_summary,omitempty"`
	GeneratedAt *time.Time `json:"generated_at,omitempty" bson:"generated_at,omitempty"`
	LastUpdated time.Time  `json:"last_updated" bson:"last_updated"`
}
