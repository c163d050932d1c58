package entity

// OverviewMetrics is the dashboard headline block.
type OverviewMetrics struct {
	TotalConversations      int64    `json:"total_conversations"`
	OpenConversations       int64    `json:"open_conversations"`
	ResolvedConversations   int64    `json:"resolved_conversations"`
	AbandonedConversations  int64    `json:"abandoned_conversations"`
	AvgFirstResponseSeconds *float64 `json:"avg_first_response_seconds,omitempty"`
	ResolutionRate          float64  `json:"resolution_rate"`
	TotalMessagesToday      int64    `json:"total_messages_today"`
	TotalConversationsToday int64    `json:"total_conversations_today"`
}
