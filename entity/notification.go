package entity

import "time"

// Live-update event names pushed to WebSocket clients (and mirrored to the
// broker when configured).
const (
	NotifyConversationNew      = "conversation.new"
	NotifyConversationUpdated  = "conversation.updated"
	NotifyConversationResolved = "conversation.resolved"
	NotifyConversationAssigned = "conversation.assigned"
	NotifyMessageNew           = "message.new"
	NotifyReportReady          = "report.ready"
)

// Notification is the envelope fanned out to subscribers. Data is whatever
// the producing service considers useful; consumers must tolerate extra
// fields.
type Notification struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
	At    time.Time   `json:"at"`
}
