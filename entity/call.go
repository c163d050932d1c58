package entity

import "encoding/json"

// Call outcomes, shared by terminal call-log messages and live call signals.
const (
	CallConnected         = "Connected"
	CallMissed            = "Missed"
	CallFailed            = "Failed"
	CallRejected          = "Rejected"
	CallAcceptedElsewhere = "AcceptedElsewhere"
	CallOngoing           = "Ongoing"
	CallSilencedDnd       = "SilencedDnd"
	CallSilencedUnknown   = "SilencedUnknown"
	CallIncoming          = "Incoming"
	CallRinging           = "Ringing"
)

// Live call-signal states as the gateway reports them.
const (
	CallStateOffer   = "offer"
	CallStateRinging = "ringing"
	CallStateAccept  = "accept"
	CallStateReject  = "reject"
	CallStateTimeout = "timeout"
	CallStateFailed  = "failed"
)

// CallLogMessage is the terminal call record embedded in a message payload.
type CallLogMessage struct {
	IsVideo      bool        `json:"isVideo,omitempty"`
	CallOutcome  string      `json:"callOutcome,omitempty"`
	DurationSecs FlexSeconds `json:"durationSecs,omitempty"`
}

// CallEventData is the body of a live "call" signaling event. The gateway
// is inconsistent about field names across versions, so both spellings of
// the peer and direction fields are accepted.
type CallEventData struct {
	ID         string `json:"id"`
	From       string `json:"from,omitempty"`
	ChatID     string `json:"chatId,omitempty"`
	Status     string `json:"status"`
	IsVideo    bool   `json:"isVideo,omitempty"`
	IsIncoming *bool  `json:"isIncoming,omitempty"`
	FromMe     *bool  `json:"fromMe,omitempty"`
	Date       int64  `json:"date,omitempty"`
}

// Peer returns whichever peer address the gateway supplied.
func (c CallEventData) Peer() string {
	if c.From != "" {
		return c.From
	}
	return c.ChatID
}

// Inbound reports whether the call was received rather than placed. The
// isIncoming flag wins when present, otherwise fromMe is inverted; an
// unmarked call is treated as inbound.
func (c CallEventData) Inbound() bool {
	if c.IsIncoming != nil {
		return *c.IsIncoming
	}
	if c.FromMe != nil {
		return !*c.FromMe
	}
	return true
}

// FlexSeconds decodes a duration that may arrive as a bare integer or as a
// Long-style {low, high} pair. Unparseable input decodes to "not present".
type FlexSeconds struct {
	Secs  int
	Valid bool
}

func (f *FlexSeconds) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		if n >= 0 {
			f.Secs, f.Valid = int(n), true
		}
		return nil
	}

	var pair struct {
		Low  int64 `json:"low"`
		High int64 `json:"high"`
	}
	if err := json.Unmarshal(data, &pair); err == nil {
		// Mask low to 32 bits: Long encoders emit it signed, and sign
		// extension would corrupt the combined value.
		secs := pair.High<<32 | (pair.Low & 0xFFFFFFFF)
		if secs >= 0 {
			f.Secs, f.Valid = int(secs), true
		}
		return nil
	}

	// Defensive: garbage durations are dropped, not fatal.
	return nil
}

func (f FlexSeconds) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Secs)
}
