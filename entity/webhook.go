package entity

import "encoding/json"

// Gateway event names we act on. Anything else is accepted and ignored.
const (
	EventMessagesUpsert = "messages.upsert"
	EventMessagesUpdate = "messages.update"
	EventGroupsUpsert   = "groups.upsert"
	EventGroupsUpdate   = "groups.update"
	EventCall           = "call"
)

// WebhookEnvelope is one gateway delivery. Data may be a single object or
// an array depending on the event, so it stays raw until dispatch.
type WebhookEnvelope struct {
	Event    string          `json:"event"`
	Instance string          `json:"instance"`
	Data     json.RawMessage `json:"data"`
	Sender   string          `json:"sender,omitempty"`
	DateTime string          `json:"date_time,omitempty"`
}

// MessageKey identifies a gateway message. ID is globally unique and serves
// as the dedup key.
type MessageKey struct {
	RemoteJid   string `json:"remoteJid"`
	FromMe      bool   `json:"fromMe"`
	ID          string `json:"id"`
	Participant string `json:"participant,omitempty"`
}

// MessageContent is the type-tagged union of recognized message kinds.
// Exactly one variant is expected to be present; the normalizer picks the
// first match in priority order and never inspects unknown keys.
type MessageContent struct {
	Conversation        *string          `json:"conversation,omitempty"`
	ExtendedTextMessage *ExtendedText    `json:"extendedTextMessage,omitempty"`
	ImageMessage        json.RawMessage  `json:"imageMessage,omitempty"`
	VideoMessage        json.RawMessage  `json:"videoMessage,omitempty"`
	AudioMessage        json.RawMessage  `json:"audioMessage,omitempty"`
	PttMessage          json.RawMessage  `json:"pttMessage,omitempty"`
	DocumentMessage     json.RawMessage  `json:"documentMessage,omitempty"`
	StickerMessage      json.RawMessage  `json:"stickerMessage,omitempty"`
	LocationMessage     json.RawMessage  `json:"locationMessage,omitempty"`
	CallLogMessage      *CallLogMessage  `json:"callLogMessage,omitempty"`
}

type ExtendedText struct {
	Text string `json:"text"`
}

// MessageData is one messages.upsert item.
type MessageData struct {
	Key              MessageKey      `json:"key"`
	Message          *MessageContent `json:"message,omitempty"`
	MessageTimestamp int64           `json:"messageTimestamp,omitempty"`
	PushName         string          `json:"pushName,omitempty"`
}

// MessageUpdate is one messages.update item. Only a DELETED status is acted
// on (soft-delete flag on the stored message).
type MessageUpdate struct {
	Key    MessageKey `json:"key"`
	Update struct {
		Status string `json:"status"`
	} `json:"update"`
}

// GroupData is one groups.upsert / groups.update item.
type GroupData struct {
	ID         string `json:"id"`
	Subject    string `json:"subject,omitempty"`
	Name       string `json:"name,omitempty"`
	PictureURL string `json:"pictureUrl,omitempty"`
	Picture    string `json:"picture,omitempty"`
}
